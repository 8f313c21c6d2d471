package httpadapter

import (
	"encoding/json"
	"net/http"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	CSRF   string `json:"csrf_token"`
}

func (rt *Router) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	user, err := rt.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	claims, err := rt.sessions.Issue(w, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		UserID: user.ID,
		Name:   user.Name,
		Role:   string(user.Role),
		CSRF:   claims.CSRF,
	})
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	user, err := rt.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	claims, err := rt.sessions.Issue(w, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		UserID: user.ID,
		Name:   user.Name,
		Role:   string(user.Role),
		CSRF:   claims.CSRF,
	})
}

func (rt *Router) logout(w http.ResponseWriter, _ *http.Request) {
	rt.sessions.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (rt *Router) me(w http.ResponseWriter, r *http.Request) {
	user, err := rt.auth.GetUser(r.Context(), callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// csrfToken serves the token baked into the current session. A caller without
// a session gets an anonymous one, so the token can be fetched before login.
func (rt *Router) csrfToken(w http.ResponseWriter, r *http.Request) {
	claims, err := rt.sessions.FromRequest(r)
	if err != nil {
		claims, err = rt.sessions.IssueAnonymous(w)
		if err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"csrf_token": claims.CSRF})
}
