package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/utils"
)

const testSecret = "test-secret"

func doRequest(t *testing.T, mw []echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func bearerFor(t *testing.T, userID uint64, role model.Role) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, userID, role, 15)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func TestJWTAuthSetsPrincipal(t *testing.T) {
	e := echo.New()
	var got model.Principal
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		p, ok := CurrentPrincipal(c)
		require.True(t, ok)
		got = p
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", bearerFor(t, 7, model.RoleAssistant))
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), got.UserID)
	assert.Equal(t, model.RoleAssistant, got.Role)
}

func TestJWTAuthRejectsBadTokens(t *testing.T) {
	mw := []echo.MiddlewareFunc{JWTAuth(testSecret)}

	rec := doRequest(t, mw, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, mw, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Signed with a different secret.
	tok, err := utils.NewAccessToken("other-secret", 1, model.RoleAdmin, 15)
	require.NoError(t, err)
	rec = doRequest(t, mw, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	adminOnly := []echo.MiddlewareFunc{JWTAuth(testSecret), RequireRole(model.RoleAdmin)}

	rec := doRequest(t, adminOnly, bearerFor(t, 1, model.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, adminOnly, bearerFor(t, 2, model.RoleAssistant))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, adminOnly, bearerFor(t, 3, model.RoleClient))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	both := []echo.MiddlewareFunc{JWTAuth(testSecret), RequireRole(model.RoleAdmin, model.RoleAssistant)}
	rec = doRequest(t, both, bearerFor(t, 2, model.RoleAssistant))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleWithoutPrincipal(t *testing.T) {
	rec := doRequest(t, []echo.MiddlewareFunc{RequireRole(model.RoleAdmin)}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
