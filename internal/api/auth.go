package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/labshaker/internal/auth"
	"github.com/erazemk/labshaker/internal/model"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	JWTSecret string
}

type loginRequest struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Login handles POST /api/auth/login. The caller picks a role; there are no
// passwords.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !model.ValidRole(req.Role) {
		jsonError(w, http.StatusBadRequest, "role must be admin or user")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, req.Role, strings.TrimSpace(req.Name))
	if err != nil {
		slog.Error("generating token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("logged in", "role", req.Role, "remote", r.RemoteAddr)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, Role: req.Role})
}

// Enums handles GET /api/enums.
func Enums(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, model.EnumOptions())
}
