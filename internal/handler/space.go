package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/service"
)

// SpaceHandler exposes the space catalog endpoints.  The router
// mounts every route, reads included, behind the admin role gate.
type SpaceHandler struct {
	Spaces *service.SpaceService
}

func NewSpaceHandler(s *service.SpaceService) *SpaceHandler {
	return &SpaceHandler{Spaces: s}
}

type spaceReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Capacity    int32   `json:"capacity"`
	TypeID      uint64  `json:"type_id"`
	Photos      *string `json:"photos"`
	Status      *bool   `json:"status"`
}

// List handles GET /v1/spaces.
func (h *SpaceHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	spaces, err := h.Spaces.List(ctx)
	if err != nil {
		return writeServiceError(c, err, "space not found")
	}
	return c.JSON(http.StatusOK, spaces)
}

// Get handles GET /v1/spaces/:id.
func (h *SpaceHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	space, err := h.Spaces.Get(ctx, id)
	if err != nil {
		return writeServiceError(c, err, "space not found")
	}
	return c.JSON(http.StatusOK, space)
}

// Create handles POST /v1/spaces.
func (h *SpaceHandler) Create(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req spaceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	space, err := h.Spaces.Create(ctx, p, service.CreateSpaceInput{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		TypeID:      req.TypeID,
		Photos:      req.Photos,
	})
	if err != nil {
		return writeServiceError(c, err, "space not found")
	}
	return c.JSON(http.StatusCreated, space)
}

// Update handles PUT /v1/spaces/:id with full replacement semantics.
func (h *SpaceHandler) Update(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req spaceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	space, err := h.Spaces.Update(ctx, p, id, service.UpdateSpaceInput{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		TypeID:      req.TypeID,
		Photos:      req.Photos,
		Status:      req.Status,
	})
	if err != nil {
		return writeServiceError(c, err, "space not found")
	}
	return c.JSON(http.StatusOK, space)
}

// Delete handles DELETE /v1/spaces/:id.  Reservations for the space
// are removed in the same transaction.
func (h *SpaceHandler) Delete(c echo.Context) error {
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

	if err := h.Spaces.Delete(ctx, p, id); err != nil {
		return writeServiceError(c, err, "space not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Space and its reservations deleted successfully."})
}
