package handlers

import (
	"encoding/json"
	"net/http"

	"video-library/internal/catalog"
	"video-library/internal/logging"
)

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "video_library_session"

type passwordRequest struct {
	Password string `json:"password"`
}

type authResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

// CheckAuth reports whether setup is needed and whether the caller
// holds a valid session.
func (h *Handlers) CheckAuth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authenticated := false
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		authenticated = h.store.ValidateSession(ctx, cookie.Value)
	}

	writeJSON(w, map[string]bool{
		"needsSetup":    !h.store.HasUser(ctx),
		"authenticated": authenticated,
	})
}

// Setup creates the admin password. Allowed exactly once.
func (h *Handlers) Setup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.store.HasUser(ctx) {
		writeJSONError(w, "setup already completed", http.StatusForbidden)
		return
	}

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 6 {
		writeJSONError(w, "password must be at least 6 characters", http.StatusBadRequest)
		return
	}
	if len(req.Password) > 72 {
		// bcrypt truncates beyond 72 bytes.
		writeJSONError(w, "password must not exceed 72 characters", http.StatusBadRequest)
		return
	}

	if err := h.store.CreateUser(ctx, req.Password); err != nil {
		logging.Error("Failed to create admin account: %v", err)
		writeJSONError(w, "failed to create account", http.StatusInternalServerError)
		return
	}

	logging.Info("Admin password configured")
	writeJSON(w, authResponse{Success: true, Message: "password configured"})
}

// Login validates the password and issues a session cookie.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.store.ValidatePassword(ctx, req.Password); err != nil {
		logging.Warn("Failed login attempt")
		writeJSONError(w, "invalid password", http.StatusUnauthorized)
		return
	}

	session, err := h.store.CreateSession(ctx)
	if err != nil {
		logging.Error("Failed to create session: %v", err)
		writeJSONError(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	writeJSON(w, authResponse{
		Success:   true,
		ExpiresIn: int(catalog.SessionDuration.Seconds()),
	})
}

// Logout invalidates the current session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.store.DeleteSession(ctx, cookie.Value); err != nil {
			logging.Warn("Failed to delete session: %v", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	writeJSON(w, authResponse{Success: true})
}

// AuthMiddleware gates the API behind a valid session. Until the admin
// password exists everything is open so setup can happen at all.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if !h.store.HasUser(ctx) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || !h.store.ValidateSession(ctx, cookie.Value) {
			writeJSONError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
