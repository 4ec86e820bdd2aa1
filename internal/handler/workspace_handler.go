package handler

import (
	"net/http"

	"coworking-reservation-server/internal/domain"
	"coworking-reservation-server/internal/service"
	"coworking-reservation-server/pkg/response"

	"github.com/gorilla/mux"
)

type WorkspaceHandler struct {
	workspaceService   *service.WorkspaceService
	reservationService *service.ReservationService
}

func NewWorkspaceHandler(workspaceService *service.WorkspaceService, reservationService *service.ReservationService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService:   workspaceService,
		reservationService: reservationService,
	}
}

func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateWorkspaceRequest
	if !decode(w, r, &req) {
		return
	}

	workspace, err := h.workspaceService.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Created(w, workspace)
}

func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaces, err := h.workspaceService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Success(w, workspaces)
}

func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	workspace, err := h.workspaceService.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Success(w, workspace)
}

func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.workspaceService.Deactivate(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, "Workspace deactivated")
}

// Reservations lists the active bookings of one workspace.
func (h *WorkspaceHandler) Reservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.reservationService.FindReservationsByWorkspace(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Success(w, domain.NewReservationResponses(reservations))
}
