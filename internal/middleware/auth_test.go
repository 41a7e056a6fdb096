package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"books-storefront/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdmin struct {
	service.AdminService
	unlocked bool
}

func (s *stubAdmin) Unlocked() bool { return s.unlocked }

func TestRequireAdmin(t *testing.T) {
	admin := &stubAdmin{}
	e := echo.New()
	called := false
	h := RequireAdmin(admin)(func(c echo.Context) error {
		called = true
		assert.Equal(t, true, c.Get(AdminKey))
		return c.NoContent(http.StatusNoContent)
	})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil), httptest.NewRecorder())
	err := h(c)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
	assert.Equal(t, "Please sign in as admin.", service.Message(err))
	assert.False(t, called)

	admin.unlocked = true
	rec := httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil), rec)
	require.NoError(t, h(c))
	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
