package handler

import (
	"net/http"
	"strings"
	"time"

	"coworking-reservation-server/internal/domain"
	"coworking-reservation-server/internal/middleware"
	"coworking-reservation-server/internal/service"
	"coworking-reservation-server/pkg/response"

	"github.com/gorilla/mux"
)

type ReservationHandler struct {
	reservationService *service.ReservationService
	userService        *service.UserService
}

func NewReservationHandler(reservationService *service.ReservationService, userService *service.UserService) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
		userService:        userService,
	}
}

// Create books a workspace for the caller. The customer name defaults to the
// caller's full name when the body leaves it out.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateReservationRequest
	if !decode(w, r, &req) {
		return
	}

	userID := middleware.GetUserID(r)
	name := strings.TrimSpace(req.CustomerName)
	if name == "" && userID != "" {
		if user, err := h.userService.GetByID(r.Context(), userID); err == nil {
			name = user.FullName()
		}
	}

	in := service.CreateReservationInput{
		WorkspaceID:  req.WorkspaceID,
		CustomerID:   userID,
		CustomerName: name,
		Start:        derefTime(req.StartDateTime),
		End:          derefTime(req.EndDateTime),
	}

	res, err := h.reservationService.CreateReservation(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Created(w, domain.NewReservationResponse(res))
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	res, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	response.Success(w, domain.NewReservationResponse(res))
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	res, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	if err := h.reservationService.CancelReservation(r.Context(), res.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, "Reservation cancelled")
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.reservationService.ListReservations(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Success(w, domain.NewReservationResponses(reservations))
}

func (h *ReservationHandler) Mine(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.reservationService.FindReservationsByCustomerID(r.Context(), middleware.GetUserID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Success(w, domain.NewReservationResponses(reservations))
}

func (h *ReservationHandler) ByCustomer(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.reservationService.FindReservationsByCustomer(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Success(w, domain.NewReservationResponses(reservations))
}

// loadOwned fetches the reservation in the path and checks the caller may see
// it: admins see everything, customers only their own bookings.
func (h *ReservationHandler) loadOwned(w http.ResponseWriter, r *http.Request) (*domain.Reservation, bool) {
	res, err := h.reservationService.GetReservation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}

	if middleware.GetRole(r) != domain.RoleAdmin && res.UserID != middleware.GetUserID(r) {
		writeServiceError(w, r, service.ErrAccessDenied)
		return nil, false
	}
	return res, true
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
