// internal/app/features/ltiusage/templates.go
package ltiusage

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "ltiusage",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
