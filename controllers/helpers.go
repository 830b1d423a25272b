package controllers

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"go.mongodb.org/mongo-driver/mongo/options"
)

// Production controls whether 500 bodies include a stack trace. Set once at
// startup, mirroring the NODE_ENV gate of the error middleware it replaces.
var Production = false

type errorBody struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	body := errorBody{Message: message}
	if status >= http.StatusInternalServerError && !Production {
		body.Stack = string(debug.Stack())
	}
	respondJSON(w, status, body)
}

// findAfter asks FindOneAndUpdate to return the post-update document.
func findAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// NotFoundHandler answers requests to routes that do not exist.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "Not Found - "+r.URL.Path)
}
