package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/middleware"
	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/service"
)

// pathID parses the :id route parameter as an unsigned integer.
func pathID(c echo.Context) (uint64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// principal returns the authenticated caller; the JWT middleware has
// already rejected requests without one, so a miss here is a wiring
// bug and is answered with 401.
func principal(c echo.Context) (model.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	return p, ok
}

// writeServiceError translates service-layer errors into the JSON
// shapes the API promises: 422 with a per-field errors map for
// validation and conflicts, 404 for missing records, 500 otherwise.
func writeServiceError(c echo.Context, err error, notFoundMsg string) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": ve.Fields})
	}
	var ce *service.ConflictError
	if errors.As(err, &ce) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": ce.AsFieldErrors()})
	}
	if errors.Is(err, service.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFoundMsg})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
