package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/service"
)

// ReservationHandler exposes the reservation endpoints used by admins
// and assistants.
type ReservationHandler struct {
	Reservations *service.ReservationService
}

func NewReservationHandler(s *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Reservations: s}
}

type createReservationReq struct {
	UserID    uint64 `json:"user_id"`
	SpaceID   uint64 `json:"space_id"`
	EventName string `json:"event_name"`
	Date      string `json:"date"`       // YYYY-MM-DD
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
}

type updateReservationReq struct {
	UserID    uint64 `json:"user_id"`
	SpaceID   uint64 `json:"space_id"`
	EventName string `json:"event_name"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}

// List handles GET /v1/reservations.  Admins see every reservation,
// assistants only their own.
func (h *ReservationHandler) List(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.List(ctx, p)
	if err != nil {
		return writeServiceError(c, err, "reservation not found")
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/reservations/:id with user and space expanded.
func (h *ReservationHandler) Get(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.Get(ctx, p, id)
	if err != nil {
		return writeServiceError(c, err, "reservation not found")
	}
	return c.JSON(http.StatusOK, res)
}

// Create handles POST /v1/reservations.  Any status in the body is
// ignored; new reservations always start PENDING.
func (h *ReservationHandler) Create(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.Create(ctx, p, service.CreateReservationInput{
		UserID:    req.UserID,
		SpaceID:   req.SpaceID,
		EventName: req.EventName,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return writeServiceError(c, err, "reservation not found")
	}
	return c.JSON(http.StatusCreated, res)
}

// Update handles PUT /v1/reservations/:id with full replacement
// semantics and availability re-checked when the slot moved.
func (h *ReservationHandler) Update(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.Update(ctx, p, id, service.UpdateReservationInput{
		UserID:    req.UserID,
		SpaceID:   req.SpaceID,
		EventName: req.EventName,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    req.Status,
	})
	if err != nil {
		return writeServiceError(c, err, "reservation not found")
	}
	return c.JSON(http.StatusOK, res)
}

// Delete handles DELETE /v1/reservations/:id.  The delete is hard;
// canceled history is kept by flipping status instead, which is the
// caller's choice via Update.
func (h *ReservationHandler) Delete(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Reservations.Delete(ctx, p, id); err != nil {
		return writeServiceError(c, err, "reservation not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reservation deleted successfully."})
}

// Statuses handles GET /v1/reservations/status, listing the values a
// reservation may hold.  Registered before the :id route so the path
// segment is not parsed as an identifier.
func (h *ReservationHandler) Statuses(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"statuses": h.Reservations.Statuses()})
}
