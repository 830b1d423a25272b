package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"maryland-pharmacy/models"
	"maryland-pharmacy/services"
)

// SettingsController exposes the configuration singleton: public read for
// the checkout page, admin write.
type SettingsController struct {
	Settings services.SettingsService
}

// NewSettingsController creates the settings controller.
func NewSettingsController(settings services.SettingsService) *SettingsController {
	return &SettingsController{Settings: settings}
}

// GetSettings handles GET /api/settings, creating defaults on first read.
func (sc *SettingsController) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	setting, err := sc.Settings.Get(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	respondJSON(w, http.StatusOK, setting)
}

// capNotificationEmails validates each address and truncates the list to the
// configured maximum. A nil list means "leave stored value untouched".
func capNotificationEmails(emails []string) ([]string, error) {
	if emails == nil {
		return nil, nil
	}
	for _, addr := range emails {
		if _, err := mail.ParseAddress(addr); err != nil {
			return nil, fmt.Errorf("invalid notification email %q", addr)
		}
	}
	if len(emails) > models.MaxNotificationEmails {
		emails = emails[:models.MaxNotificationEmails]
	}
	return emails, nil
}

// UpdateSettings handles PUT /api/settings (admin).
func (sc *SettingsController) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeliveryFee        *float64 `json:"deliveryFee"`
		NotificationEmails []string `json:"notificationEmails"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	emails, err := capNotificationEmails(req.NotificationEmails)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	updated, err := sc.Settings.Update(ctx, services.SettingsUpdate{
		DeliveryFee:        req.DeliveryFee,
		NotificationEmails: emails,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Update failed")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}
