package handler

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/repository"
)

// TypeHandler manages the space type catalog.  Types are simple
// lookup rows, so the handler talks to the repository directly.
type TypeHandler struct {
	Types *repository.TypeRepo
}

func NewTypeHandler(t *repository.TypeRepo) *TypeHandler {
	return &TypeHandler{Types: t}
}

type typeReq struct {
	Name string `json:"name"`
}

// List handles GET /v1/types.
func (h *TypeHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	types, err := h.Types.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, types)
}

// Get handles GET /v1/types/:id.
func (h *TypeHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Types.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrTypeNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, t)
}

// Create handles POST /v1/types.
func (h *TypeHandler) Create(c echo.Context) error {
	var req typeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > 255 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"errors": map[string][]string{"name": {"The name field is required."}},
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t := &model.SpaceType{Name: name}
	if err := h.Types.Create(ctx, t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create type failed"})
	}
	return c.JSON(http.StatusCreated, t)
}

// Update handles PUT /v1/types/:id.
func (h *TypeHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req typeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > 255 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"errors": map[string][]string{"name": {"The name field is required."}},
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t := &model.SpaceType{ID: id, Name: name}
	if err := h.Types.Update(ctx, t); err != nil {
		if err == repository.ErrTypeNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update type failed"})
	}
	return c.JSON(http.StatusOK, t)
}
