package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"maryland-pharmacy/config"
	"maryland-pharmacy/controllers"
	"maryland-pharmacy/middleware"
	"maryland-pharmacy/routes"
	"maryland-pharmacy/services"
	"maryland-pharmacy/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := logrus.New()
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	controllers.Production = cfg.IsProduction()

	// Connect to MongoDB
	client, err := utils.ConnectDB(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Error("error disconnecting from MongoDB")
		}
	}()
	db := client.Database(cfg.MongoDB)
	if err := utils.EnsureIndexes(context.Background(), db); err != nil {
		log.WithError(err).Fatal("failed to create indexes")
	}

	// Shared collaborators
	issuer := utils.NewTokenIssuer(cfg.JWTSecret, cfg.AdminJWTSecret)
	emailService := utils.NewEmailService(cfg.SendGridAPIKey, cfg.EmailSender)
	settingsService := services.NewSettingsService(db)
	catalog := services.NewProductCatalog(db)
	guard := middleware.NewAuthGuard(issuer, db.Collection("users"))

	// Controllers
	userController := controllers.NewUserController(db, emailService, issuer, log, cfg.ClientURL)
	productController := controllers.NewProductController(db)
	orderController := controllers.NewOrderController(db, catalog, settingsService, emailService, log, cfg.ClientURL, cfg.NotifyEmail)
	adminController := controllers.NewAdminController(db, issuer, cfg.AdminEmail, cfg.AdminPass)
	settingsController := controllers.NewSettingsController(settingsService)

	router := mux.NewRouter()
	router.Use(middleware.CORS)
	router.Use(middleware.RequestLogger(log))
	routes.RegisterRoutes(router, guard, userController, productController, orderController, adminController, settingsController)

	log.WithFields(logrus.Fields{
		"port": cfg.Port,
		"mode": cfg.Environment,
	}).Info("Maryland Pharmacy server is running")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
