package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maryland-pharmacy/models"
)

func TestCapNotificationEmails(t *testing.T) {
	emails, err := capNotificationEmails([]string{
		"a@example.com", "b@example.com", "c@example.com", "d@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, emails)
}

func TestCapNotificationEmailsRejectsMalformed(t *testing.T) {
	_, err := capNotificationEmails([]string{"a@example.com", "not-an-email"})
	assert.Error(t, err)

	_, err = capNotificationEmails([]string{""})
	assert.Error(t, err)
}

func TestCapNotificationEmailsNilPassthrough(t *testing.T) {
	emails, err := capNotificationEmails(nil)
	require.NoError(t, err)
	assert.Nil(t, emails)
}

func TestUpdateSettingsCapsRecipients(t *testing.T) {
	svc := &stubSettings{setting: models.Setting{DeliveryFee: 30}}
	sc := NewSettingsController(svc)

	fee := 45.0
	body, _ := json.Marshal(map[string]interface{}{
		"deliveryFee":        fee,
		"notificationEmails": []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com"},
	})
	req := httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewReader(body))
	w := httptest.NewRecorder()
	sc.UpdateSettings(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 45.0, svc.setting.DeliveryFee)
	assert.Len(t, svc.setting.NotificationEmails, models.MaxNotificationEmails)
}

func TestUpdateSettingsRejectsMalformedEmail(t *testing.T) {
	svc := &stubSettings{setting: models.Setting{DeliveryFee: 30}}
	sc := NewSettingsController(svc)

	body, _ := json.Marshal(map[string]interface{}{
		"deliveryFee":        50,
		"notificationEmails": []string{"broken"},
	})
	req := httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewReader(body))
	w := httptest.NewRecorder()
	sc.UpdateSettings(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	// The stored settings stay untouched.
	assert.Equal(t, 30.0, svc.setting.DeliveryFee)
}

func TestGetSettingsReturnsSingleton(t *testing.T) {
	svc := &stubSettings{setting: models.Setting{DeliveryFee: 30, NotificationEmails: []string{}}}
	sc := NewSettingsController(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	w := httptest.NewRecorder()
	sc.GetSettings(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got models.Setting
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 30.0, got.DeliveryFee)
}
