// internal/domain/models/ltitype.go
package models

// LTIType is a preconfigured LTI tool type. Activities point at it through
// LTIActivity.TypeID.
type LTIType struct {
	ID      int64  `bson:"_id" json:"id"`
	Name    string `bson:"name" json:"name"`
	BaseURL string `bson:"base_url,omitempty" json:"base_url,omitempty"`
}
