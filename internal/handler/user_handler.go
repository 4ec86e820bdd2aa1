package handler

import (
	"net/http"

	"coworking-reservation-server/internal/middleware"
	"coworking-reservation-server/internal/service"
	"coworking-reservation-server/pkg/response"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), middleware.GetUserID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Success(w, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Success(w, users)
}

func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == middleware.GetUserID(r) {
		response.BadRequest(w, "Cannot deactivate your own account")
		return
	}

	if err := h.userService.Deactivate(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, "User deactivated")
}
