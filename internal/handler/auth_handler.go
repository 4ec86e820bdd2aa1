package handler

import (
	"net/http"

	"coworking-reservation-server/internal/domain"
	"coworking-reservation-server/internal/service"
	"coworking-reservation-server/pkg/response"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Created(w, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	loginResp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Success(w, loginResp)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshTokenRequest
	if !decode(w, r, &req) {
		return
	}

	tokenResp, err := h.authService.RefreshToken(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Success(w, tokenResp)
}
