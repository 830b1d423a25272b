package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"maryland-pharmacy/models"
)

// ProductController serves the public catalog and the admin CRUD surface.
type ProductController struct {
	Products *mongo.Collection
}

// NewProductController creates the catalog controller.
func NewProductController(db *mongo.Database) *ProductController {
	return &ProductController{Products: db.Collection("products")}
}

// GetProducts handles GET /api/products. Maryland-flagged products sort
// first, then newest.
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "isMaryland", Value: -1},
		{Key: "createdAt", Value: -1},
	})
	cursor, err := pc.Products.Find(ctx, bson.D{}, opts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

// GetProductByID handles GET /api/products/{id}.
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var product models.Product
	if err := pc.Products.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/products (admin).
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if product.Image == "" {
		product.Image = models.DefaultProductImage
	}
	now := time.Now()
	product.ID = primitive.NilObjectID
	product.CreatedAt = now
	product.UpdatedAt = now

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := pc.Products.InsertOne(ctx, product)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Product creation failed: "+err.Error())
		return
	}
	product.ID = res.InsertedID.(primitive.ObjectID)
	respondJSON(w, http.StatusCreated, product)
}

// updateProductRequest accepts partial bodies; pointer fields distinguish
// "absent" from zero so stock and the Maryland flag can be set to their zero
// values explicitly.
type updateProductRequest struct {
	Title       *string  `json:"title"`
	Image       *string  `json:"image"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	IsMaryland  *bool    `json:"isMaryland"`
}

// UpdateProduct handles PUT /api/products/{id} (admin).
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Image != nil && *req.Image != "" {
		set["image"] = *req.Image
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.Stock != nil {
		set["stock"] = *req.Stock
	}
	if req.IsMaryland != nil {
		set["isMaryland"] = *req.IsMaryland
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var updated models.Product
	err = pc.Products.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, findAfter()).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Update failed: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteProduct handles DELETE /api/products/{id} (admin).
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := pc.Products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if res.DeletedCount == 0 {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Product removed"})
}
