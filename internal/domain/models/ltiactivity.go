// internal/domain/models/ltiactivity.go
package models

// LTIActivity is one LTI activity placed in a course.
//
// CourseModuleID is the stable activity reference used for the view and
// delete links. TypeID is the tool type the activity was configured with;
// 0 means the activity was set up by hand (no preconfigured tool).
type LTIActivity struct {
	CourseModuleID int64  `bson:"_id" json:"cmid"`
	CourseID       int64  `bson:"course_id" json:"course_id"`
	CourseName     string `bson:"course_name" json:"course_name"`
	Name           string `bson:"name" json:"name"`
	TypeID         int64  `bson:"type_id" json:"type_id"`
	ToolURL        string `bson:"tool_url,omitempty" json:"tool_url,omitempty"`
	Visible        bool   `bson:"visible" json:"visible"`
}
