package httpx

import (
	"net/http"

	"github.com/parlo-app/parlo-ui-api/internal/http/ui/viewmodel"
)

// MeHandler returns the identity snapshot the UI hydrates its permission
// context from. The snapshot is advisory: conditional rendering reads it,
// while every privileged operation re-checks permissions server-side.
// GET /api/me.
func MeHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		// The gate admits only authenticated requests to /api/; reaching
		// this without a session means the handler was mounted outside it.
		WriteJSON(w, http.StatusUnauthorized, map[string]any{"error": "authentication_required"})
		return
	}

	view := viewmodel.NewPermissionView(sess)
	WriteJSON(w, http.StatusOK, map[string]any{
		"userId":      sess.UserID,
		"email":       sess.Email,
		"permissions": view.List(),
		"expiresAt":   sess.ExpiresAt,
	})
}
