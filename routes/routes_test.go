package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maryland-pharmacy/controllers"
	"maryland-pharmacy/middleware"
	"maryland-pharmacy/utils"
)

// testRouter builds the real route table with blank controllers. The guard
// rejects every request below before any handler (and its store) is reached,
// so no database is needed to exercise the audience isolation of the routes.
func testRouter(issuer *utils.TokenIssuer) *mux.Router {
	router := mux.NewRouter()
	guard := middleware.NewAuthGuard(issuer, nil)
	RegisterRoutes(router, guard,
		&controllers.UserController{Issuer: issuer},
		&controllers.ProductController{},
		&controllers.OrderController{},
		&controllers.AdminController{Issuer: issuer},
		&controllers.SettingsController{},
	)
	return router
}

func TestClientTokenRejectedByAdminEndpoints(t *testing.T) {
	issuer := utils.NewTokenIssuer("client-secret", "admin-secret")
	router := testRouter(issuer)

	clientToken, err := issuer.Generate(utils.AudienceClient, "abc", "c@example.com", "client")
	require.NoError(t, err)

	adminEndpoints := []struct{ method, path string }{
		{http.MethodGet, "/api/orders"},
		{http.MethodPut, "/api/orders/64f0c2a7e4b0aa0001234567/status"},
		{http.MethodGet, "/api/admin/stats"},
		{http.MethodPost, "/api/products"},
		{http.MethodPut, "/api/settings"},
	}
	for _, ep := range adminEndpoints {
		req := httptest.NewRequest(ep.method, ep.path, nil)
		req.Header.Set("Authorization", "Bearer "+clientToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", ep.method, ep.path)
	}
}

func TestAdminTokenRejectedByClientEndpoints(t *testing.T) {
	issuer := utils.NewTokenIssuer("client-secret", "admin-secret")
	router := testRouter(issuer)

	adminToken, err := issuer.Generate(utils.AudienceAdmin, "", "a@example.com", "admin")
	require.NoError(t, err)

	clientEndpoints := []struct{ method, path string }{
		{http.MethodPost, "/api/orders"},
		{http.MethodGet, "/api/orders/myorders"},
		{http.MethodGet, "/api/users/profile"},
	}
	for _, ep := range clientEndpoints {
		req := httptest.NewRequest(ep.method, ep.path, nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", ep.method, ep.path)
	}
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	issuer := utils.NewTokenIssuer("client-secret", "admin-secret")
	router := testRouter(issuer)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Not Found - /api/nope")
}
