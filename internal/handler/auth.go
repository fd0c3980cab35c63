package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/adventureworks/storefront/internal/domain/identity"
)

// subjectKey is the context key for the authenticated subject id.
type subjectKey struct{}

// subjectFromContext extracts the authenticated subject id, empty when the
// request was not authenticated.
func subjectFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(subjectKey{}).(string); ok {
		return id
	}
	return ""
}

// requireAuth verifies the Bearer token and stores the subject id in the
// request context.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, kindAuthError, "missing bearer token")
			return
		}

		subject, err := h.identity.Verify(r.Context(), token)
		if err != nil {
			h.respondError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey{}, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(u *identity.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

// signup handles POST /api/auth/signup.
func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, "invalid JSON body")
		return
	}

	u, token, err := h.identity.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserResponse(u)})
}

// signin handles POST /api/auth/signin.
func (h *Handler) signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, "invalid JSON body")
		return
	}

	u, token, err := h.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: toUserResponse(u)})
}

// me handles GET /api/me.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.identity.GetByID(r.Context(), subjectFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}
