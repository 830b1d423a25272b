package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"maryland-pharmacy/models"
	"maryland-pharmacy/utils"
)

// AdminController handles the environment-credential admin login and the
// dashboard aggregation. There is exactly one administrator identity per
// deployment and it is not stored in the account collection.
type AdminController struct {
	Orders     *mongo.Collection
	Issuer     *utils.TokenIssuer
	AdminEmail string
	AdminPass  string
}

// NewAdminController creates the admin controller.
func NewAdminController(db *mongo.Database, issuer *utils.TokenIssuer, adminEmail, adminPass string) *AdminController {
	return &AdminController{
		Orders:     db.Collection("orders"),
		Issuer:     issuer,
		AdminEmail: adminEmail,
		AdminPass:  adminPass,
	}
}

// Login handles POST /api/admin/login by comparing against the configured
// credential pair and minting a short-lived admin token.
func (ac *AdminController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if ac.AdminEmail == "" || creds.Email != ac.AdminEmail || creds.Password != ac.AdminPass {
		respondError(w, http.StatusUnauthorized, "Unauthorized: Invalid Admin Credentials")
		return
	}

	token, err := ac.Issuer.Generate(utils.AudienceAdmin, "", creds.Email, "admin")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"email": ac.AdminEmail,
		"role":  "admin",
		"token": token,
	})
}

// dashboardStats is the GET /api/admin/stats payload.
type dashboardStats struct {
	TotalSales   float64 `json:"totalSales"`
	MonthlySales float64 `json:"monthlySales"`
	YearlySales  float64 `json:"yearlySales"`
	TotalOrders  int64   `json:"totalOrders"`
}

// salesWindows returns the calendar month and year starts for the stats
// aggregation windows.
func salesWindows(now time.Time) (startOfMonth, startOfYear time.Time) {
	startOfMonth = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfYear = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	return
}

// GetStats handles GET /api/admin/stats. Everything is recomputed from the
// order collection on every call; there is no cache to invalidate.
func (ac *AdminController) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	startOfMonth, startOfYear := salesWindows(time.Now())

	totalSales, err := ac.sumDelivered(ctx, nil)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching financial data")
		return
	}
	monthlySales, err := ac.sumDelivered(ctx, &startOfMonth)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching financial data")
		return
	}
	yearlySales, err := ac.sumDelivered(ctx, &startOfYear)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching financial data")
		return
	}
	totalOrders, err := ac.Orders.CountDocuments(ctx, bson.D{})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching financial data")
		return
	}

	respondJSON(w, http.StatusOK, dashboardStats{
		TotalSales:   totalSales,
		MonthlySales: monthlySales,
		YearlySales:  yearlySales,
		TotalOrders:  totalOrders,
	})
}

// sumDelivered aggregates totalAmount over Delivered orders, optionally
// restricted to orders created at or after since.
func (ac *AdminController) sumDelivered(ctx context.Context, since *time.Time) (float64, error) {
	match := bson.D{{Key: "status", Value: models.OrderStatusDelivered}}
	if since != nil {
		match = append(match, bson.E{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: *since}}})
	}
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$totalAmount"}}},
		}}},
	}

	cursor, err := ac.Orders.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}
