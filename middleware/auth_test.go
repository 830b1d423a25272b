package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maryland-pharmacy/utils"
)

func adminGuardHandler(t *testing.T, issuer *utils.TokenIssuer) http.Handler {
	t.Helper()
	guard := NewAuthGuard(issuer, nil)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return guard.Require(utils.AudienceAdmin)(inner)
}

func TestAdminGuardRejectsMissingHeader(t *testing.T) {
	issuer := utils.NewTokenIssuer("client-secret", "admin-secret")
	handler := adminGuardHandler(t, issuer)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminGuardRejectsMalformedHeader(t *testing.T) {
	issuer := utils.NewTokenIssuer("client-secret", "admin-secret")
	handler := adminGuardHandler(t, issuer)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminGuardRejectsClientToken(t *testing.T) {
	issuer := utils.NewTokenIssuer("client-secret", "admin-secret")
	handler := adminGuardHandler(t, issuer)

	clientToken, err := issuer.Generate(utils.AudienceClient, "abc", "c@example.com", "client")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+clientToken)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminGuardRejectsMissingRoleClaim(t *testing.T) {
	issuer := utils.NewTokenIssuer("client-secret", "admin-secret")
	handler := adminGuardHandler(t, issuer)

	// Structurally valid admin-audience token without the role claim.
	token, err := issuer.Generate(utils.AudienceAdmin, "", "a@example.com", "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminGuardAcceptsAdminToken(t *testing.T) {
	issuer := utils.NewTokenIssuer("client-secret", "admin-secret")
	handler := adminGuardHandler(t, issuer)

	token, err := issuer.Generate(utils.AudienceAdmin, "", "a@example.com", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClaimsFromEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := ClaimsFrom(req.Context())
	assert.False(t, ok)
	_, ok = UserFrom(req.Context())
	assert.False(t, ok)
}
