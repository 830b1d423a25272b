package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"maryland-pharmacy/controllers"
	"maryland-pharmacy/middleware"
	"maryland-pharmacy/utils"
)

// RegisterRoutes sets up the full API surface. Subrouters scope the two auth
// guards; method mismatches fall through, so the same path can carry a
// client-guarded POST and an admin-guarded GET.
func RegisterRoutes(
	router *mux.Router,
	guard *middleware.AuthGuard,
	userController *controllers.UserController,
	productController *controllers.ProductController,
	orderController *controllers.OrderController,
	adminController *controllers.AdminController,
	settingsController *controllers.SettingsController,
) {
	api := router.PathPrefix("/api").Subrouter()

	// Public auth routes
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/signup", userController.Signup).Methods(http.MethodPost)
	auth.HandleFunc("/login", userController.Login).Methods(http.MethodPost)
	auth.HandleFunc("/forget-password", userController.ForgetPassword).Methods(http.MethodPost)
	auth.HandleFunc("/reset-password/{resettoken}", userController.ResetPassword).Methods(http.MethodPut)

	// Client profile and address book
	users := api.PathPrefix("/users").Subrouter()
	users.Use(guard.Require(utils.AudienceClient))
	users.HandleFunc("/profile", userController.GetProfile).Methods(http.MethodGet)
	users.HandleFunc("/profile", userController.UpdateProfile).Methods(http.MethodPut)
	users.HandleFunc("/address", userController.AddAddress).Methods(http.MethodPost)
	users.HandleFunc("/address/{id}", userController.UpdateAddress).Methods(http.MethodPut)
	users.HandleFunc("/address/{id}", userController.DeleteAddress).Methods(http.MethodDelete)

	// Public catalog
	api.HandleFunc("/products", productController.GetProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", productController.GetProductByID).Methods(http.MethodGet)

	// Admin catalog management
	adminProducts := api.PathPrefix("/products").Subrouter()
	adminProducts.Use(guard.Require(utils.AudienceAdmin))
	adminProducts.HandleFunc("", productController.CreateProduct).Methods(http.MethodPost)
	adminProducts.HandleFunc("/{id}", productController.UpdateProduct).Methods(http.MethodPut)
	adminProducts.HandleFunc("/{id}", productController.DeleteProduct).Methods(http.MethodDelete)

	// Client order routes
	clientOrders := api.PathPrefix("/orders").Subrouter()
	clientOrders.Use(guard.Require(utils.AudienceClient))
	clientOrders.HandleFunc("", orderController.CreateOrder).Methods(http.MethodPost)
	clientOrders.HandleFunc("/myorders", orderController.GetMyOrders).Methods(http.MethodGet)
	clientOrders.HandleFunc("/{id}", orderController.GetOrderByID).Methods(http.MethodGet)

	// Admin order routes
	adminOrders := api.PathPrefix("/orders").Subrouter()
	adminOrders.Use(guard.Require(utils.AudienceAdmin))
	adminOrders.HandleFunc("", orderController.GetOrders).Methods(http.MethodGet)
	adminOrders.HandleFunc("/{id}/status", orderController.UpdateOrderStatus).Methods(http.MethodPut)

	// Admin dashboard
	api.HandleFunc("/admin/login", adminController.Login).Methods(http.MethodPost)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(guard.Require(utils.AudienceAdmin))
	admin.HandleFunc("/stats", adminController.GetStats).Methods(http.MethodGet)

	// Settings: public read (checkout needs the delivery fee), admin write
	api.HandleFunc("/settings", settingsController.GetSettings).Methods(http.MethodGet)
	adminSettings := api.PathPrefix("/settings").Subrouter()
	adminSettings.Use(guard.Require(utils.AudienceAdmin))
	adminSettings.HandleFunc("", settingsController.UpdateSettings).Methods(http.MethodPut)

	router.NotFoundHandler = http.HandlerFunc(controllers.NotFoundHandler)
}
