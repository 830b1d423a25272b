package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maryland-pharmacy/utils"
)

func newAdminTestController() *AdminController {
	return &AdminController{
		Issuer:     utils.NewTokenIssuer("client-secret", "admin-secret"),
		AdminEmail: "admin@marylandpharmacy.com",
		AdminPass:  "super-secret",
	}
}

func adminLoginRequest(t *testing.T, email, password string) *http.Request {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader(body))
}

func TestAdminLogin(t *testing.T) {
	ac := newAdminTestController()

	w := httptest.NewRecorder()
	ac.Login(w, adminLoginRequest(t, "admin@marylandpharmacy.com", "super-secret"))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "admin", resp["role"])

	// The minted token verifies under the admin audience with the role claim.
	claims, err := ac.Issuer.Parse(utils.AudienceAdmin, resp["token"])
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	ac := newAdminTestController()

	for _, tc := range []struct{ email, password string }{
		{"admin@marylandpharmacy.com", "wrong"},
		{"other@example.com", "super-secret"},
		{"", ""},
	} {
		w := httptest.NewRecorder()
		ac.Login(w, adminLoginRequest(t, tc.email, tc.password))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestAdminLoginRejectsWhenUnconfigured(t *testing.T) {
	ac := newAdminTestController()
	ac.AdminEmail = ""
	ac.AdminPass = ""

	w := httptest.NewRecorder()
	ac.Login(w, adminLoginRequest(t, "", ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSalesWindows(t *testing.T) {
	now := time.Date(2026, time.August, 30, 15, 4, 5, 0, time.UTC)
	startOfMonth, startOfYear := salesWindows(now)

	assert.Equal(t, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), startOfMonth)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), startOfYear)
}
