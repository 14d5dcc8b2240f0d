package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"storefront-api/internal/user"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type userView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserView(u user.User) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, "invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, codeValidationError, "username, email and password are required")
		return
	}

	token, u, err := h.UserSvc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusCreated, authResponse{Token: token, User: toUserView(u)}, "user registered successfully")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, codeValidationError, "username and password are required")
		return
	}

	token, u, err := h.UserSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, authResponse{Token: token, User: toUserView(u)}, "login successful")
}
