package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gorilla/mux"

	"maryland-pharmacy/models"
	"maryland-pharmacy/utils"
)

// Key type for context values.
type contextKey string

const (
	ClaimsContextKey = contextKey("claims")
	UserContextKey   = contextKey("user")
)

// AuthGuard verifies bearer tokens. One guard serves both audiences; the
// audience passed to Require selects the signing secret and role requirement.
type AuthGuard struct {
	Issuer *utils.TokenIssuer
	Users  *mongo.Collection
}

// NewAuthGuard creates a guard backed by the account store for client
// identity resolution. Admin tokens carry no stored identity.
func NewAuthGuard(issuer *utils.TokenIssuer, users *mongo.Collection) *AuthGuard {
	return &AuthGuard{Issuer: issuer, Users: users}
}

// Require returns middleware enforcing a valid token for the audience. Client
// tokens additionally resolve the user document into the request context;
// admin tokens additionally require the admin role claim.
func (g *AuthGuard) Require(aud utils.Audience) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, http.StatusUnauthorized, "Access Denied: No token provided.")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeAuthError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			claims, err := g.Issuer.Parse(aud, parts[1])
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Session expired or invalid. Please login again.")
				return
			}

			if aud == utils.AudienceAdmin && claims.Role != "admin" {
				writeAuthError(w, http.StatusForbidden, "Access Denied: You do not have administrative privileges.")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)

			if aud == utils.AudienceClient {
				userID, err := primitive.ObjectIDFromHex(claims.UserID)
				if err != nil {
					writeAuthError(w, http.StatusUnauthorized, "Invalid token")
					return
				}
				dbCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				var user models.User
				if err := g.Users.FindOne(dbCtx, bson.M{"_id": userID}).Decode(&user); err != nil {
					writeAuthError(w, http.StatusUnauthorized, "User not found")
					return
				}
				ctx = context.WithValue(ctx, UserContextKey, &user)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom extracts the resolved client identity placed by the client guard.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok
}

// ClaimsFrom extracts the verified token claims.
func ClaimsFrom(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*utils.Claims)
	return claims, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
