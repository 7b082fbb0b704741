// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/ltiusage/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/templates"
	nav "github.com/dalemusser/waffle/pantry/httpnav"
)

func viewer(r *http.Request) (signed bool, role, name string) {
	u, signed := auth.CurrentUser(r)
	if signed && u != nil {
		return true, u.Role, u.Name
	}
	return false, "", ""
}

// RenderUnauthorized shows a friendly "sign in required" page.
// Signing in happens in the LMS, which launches the report with a token.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	signed, role, name := viewer(r)
	if backURL == "" {
		backURL = nav.ResolveBackURL(r, "/")
	}

	data := pageData{
		Title:      "Sign in required",
		IsLoggedIn: signed,
		Role:       role,
		UserName:   name,
		Message:    "Please open the report from your LMS to sign in.",
		BackURL:    backURL,
	}

	w.WriteHeader(http.StatusUnauthorized)
	templates.Render(w, r, "error_unauthorized", data)
}

// RenderForbidden shows a friendly access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	signed, role, name := viewer(r)
	if backURL == "" {
		backURL = nav.ResolveBackURL(r, "/")
	}

	data := pageData{
		Title:      "Access denied",
		IsLoggedIn: signed,
		Role:       role,
		UserName:   name,
		Message:    msg,
		BackURL:    backURL,
	}

	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_forbidden", data)
}

// RenderNotFound shows a "not found" page with a message.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	signed, role, name := viewer(r)
	if backURL == "" {
		backURL = nav.ResolveBackURL(r, "/")
	}

	data := pageData{
		Title:      "Not found",
		IsLoggedIn: signed,
		Role:       role,
		UserName:   name,
		Message:    msg,
		BackURL:    backURL,
	}

	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "error_not_found", data)
}

// RenderServerError shows a "something went wrong" page. errorID, when
// set, is shown so the user can quote it.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, errorID, backURL string) {
	signed, role, name := viewer(r)
	if backURL == "" {
		backURL = nav.ResolveBackURL(r, "/")
	}
	if msg == "" {
		msg = "Something went wrong."
	}

	data := pageData{
		Title:      "Server error",
		IsLoggedIn: signed,
		Role:       role,
		UserName:   name,
		Message:    msg,
		ErrorID:    errorID,
		BackURL:    backURL,
	}

	w.WriteHeader(http.StatusInternalServerError)
	templates.Render(w, r, "error_server", data)
}
