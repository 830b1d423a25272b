package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"maryland-pharmacy/middleware"
	"maryland-pharmacy/models"
	"maryland-pharmacy/utils"
)

func newUserTestController() *UserController {
	log := logrus.New()
	log.SetOutput(bytes.NewBuffer(nil))
	return &UserController{
		Issuer:    utils.NewTokenIssuer("client-secret", "admin-secret"),
		Log:       log,
		ClientURL: "http://localhost:5173",
	}
}

func requestAs(user *models.User, method, path string, body []byte) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, user))
}

func TestAuthResponseCarriesClientToken(t *testing.T) {
	uc := newUserTestController()
	user := &models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Sara",
		Email: "sara@example.com",
		Role:  "client",
	}

	resp, err := uc.authResponseFor(user)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.ID)

	claims, err := uc.Issuer.Parse(utils.AudienceClient, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "sara@example.com", claims.Email)
}

func TestGetProfileOmitsSecrets(t *testing.T) {
	uc := newUserTestController()
	user := &models.User{
		ID:       primitive.NewObjectID(),
		Name:     "Sara",
		Email:    "sara@example.com",
		Password: "$2a$10$hash",
	}

	w := httptest.NewRecorder()
	uc.GetProfile(w, requestAs(user, http.MethodGet, "/api/users/profile", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "$2a$10$hash")
	assert.Contains(t, w.Body.String(), "sara@example.com")
}

func TestUpdateProfilePasswordRequiresOld(t *testing.T) {
	uc := newUserTestController()
	user := &models.User{ID: primitive.NewObjectID(), Password: "$2a$10$hash"}

	body, _ := json.Marshal(map[string]string{"password": "new-password"})
	w := httptest.NewRecorder()
	uc.UpdateProfile(w, requestAs(user, http.MethodPut, "/api/users/profile", body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Old password is required")
}

func TestUpdateAddressUnknownID(t *testing.T) {
	uc := newUserTestController()
	user := &models.User{
		ID: primitive.NewObjectID(),
		Addresses: []models.Address{
			{ID: primitive.NewObjectID(), Street: "12 Fouad St", City: "Alexandria"},
		},
	}

	body, _ := json.Marshal(map[string]string{"street": "1 New St"})
	req := requestAs(user, http.MethodPut, "/api/users/address/"+primitive.NewObjectID().Hex(), body)
	req = mux.SetURLVars(req, map[string]string{"id": primitive.NewObjectID().Hex()})

	w := httptest.NewRecorder()
	uc.UpdateAddress(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteAddressRejectsBadID(t *testing.T) {
	uc := newUserTestController()
	user := &models.User{ID: primitive.NewObjectID()}

	req := requestAs(user, http.MethodDelete, "/api/users/address/nope", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "nope"})

	w := httptest.NewRecorder()
	uc.DeleteAddress(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
