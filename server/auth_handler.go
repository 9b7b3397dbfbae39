package server

import (
	"net/http"

	"MusicFlow/core/auth"
	"MusicFlow/logger"
)

// sessionResponse is the body of a successful register or login.
type sessionResponse struct {
	Message string `json:"message"`
	auth.Session
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterHandler creates an account and returns {message, token, user}.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, r, err, "Registration failed")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	session, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		logger.Warn("[Register] registration rejected", logger.String("email", req.Email), logger.ErrorField(err))
		writeErr(w, r, err, "Registration failed")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Message: "User registered successfully", Session: *session})
}

// LoginHandler checks credentials and returns {message, token, user}.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, r, err, "Login failed")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		logger.Warn("[Login] login failed", logger.String("email", req.Email))
		writeErr(w, r, err, "Login failed")
		return
	}
	logger.Info("[Login] login succeeded", logger.String("userId", session.User.ID))
	writeJSON(w, http.StatusOK, sessionResponse{Message: "Login successful", Session: *session})
}
