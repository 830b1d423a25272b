package controllers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"maryland-pharmacy/middleware"
	"maryland-pharmacy/models"
	"maryland-pharmacy/utils"
)

const resetTokenTTL = 10 * time.Minute

// UserController handles client accounts: signup, login, password reset,
// profile and the address book.
type UserController struct {
	Users     *mongo.Collection
	Email     *utils.EmailService
	Issuer    *utils.TokenIssuer
	Log       *logrus.Logger
	ClientURL string
}

// NewUserController creates the account controller.
func NewUserController(db *mongo.Database, email *utils.EmailService, issuer *utils.TokenIssuer, log *logrus.Logger, clientURL string) *UserController {
	return &UserController{
		Users:     db.Collection("users"),
		Email:     email,
		Issuer:    issuer,
		Log:       log,
		ClientURL: clientURL,
	}
}

// authResponse is the profile+token payload returned by signup, login and
// profile updates.
type authResponse struct {
	ID        primitive.ObjectID `json:"_id"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	Phone     string             `json:"phone"`
	Role      string             `json:"role"`
	Addresses []models.Address   `json:"addresses"`
	Token     string             `json:"token"`
}

func (uc *UserController) authResponseFor(user *models.User) (authResponse, error) {
	token, err := uc.Issuer.Generate(utils.AudienceClient, user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return authResponse{}, err
	}
	return authResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		Addresses: user.Addresses,
		Token:     token,
	}, nil
}

// Signup handles POST /api/auth/signup. The first address submitted with the
// form becomes the default entry of the address book.
func (uc *UserController) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Phone     string `json:"phone"`
		Street    string `json:"street"`
		AptNumber string `json:"aptNumber"`
		City      string `json:"city"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "Invalid user data")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	count, err := uc.Users.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if count > 0 {
		respondError(w, http.StatusBadRequest, "User already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	city := req.City
	if city == "" {
		city = "Alexandria"
	}
	now := time.Now()
	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Phone:    req.Phone,
		Role:     "client",
		Addresses: []models.Address{{
			ID:        primitive.NewObjectID(),
			Street:    req.Street,
			City:      city,
			AptNumber: req.AptNumber,
			Phone:     req.Phone,
			IsDefault: true,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := uc.Users.InsertOne(ctx, user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	user.ID = res.InsertedID.(primitive.ObjectID)

	resp, err := uc.authResponseFor(&user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := uc.Users.FindOne(ctx, bson.M{"email": creds.Email}).Decode(&user)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	resp, err := uc.authResponseFor(&user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// ForgetPassword handles POST /api/auth/forget-password: stores the SHA-256
// of a fresh single-use token and emails the raw token as a reset link. The
// stored token is rolled back when the email cannot be sent.
func (uc *UserController) ForgetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := uc.Users.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user); err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	resetToken := hex.EncodeToString(raw)
	hashed := sha256.Sum256([]byte(resetToken))

	_, err := uc.Users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"resetPasswordToken":  hex.EncodeToString(hashed[:]),
		"resetPasswordExpire": time.Now().Add(resetTokenTTL),
	}})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	resetURL := uc.ClientURL + "/reset-password/" + resetToken
	msg := utils.EmailMessage{
		To:      []string{user.Email},
		Subject: "Password Reset Request",
		Body:    `<p style="font-size: 16px; margin-bottom: 20px;">You have requested a password reset for your Maryland Pharmacy account. Please click the button below to set a new password.</p>`,
		CTAText: "Reset My Password",
		CTAURL:  resetURL,
	}
	if err := uc.Email.Send(msg); err != nil {
		uc.Log.WithError(err).Error("password reset email failed")
		// Undo the stored token so the failed email leaves no live token.
		_, _ = uc.Users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$unset": bson.M{
			"resetPasswordToken":  "",
			"resetPasswordExpire": "",
		}})
		respondError(w, http.StatusInternalServerError, "Email could not be sent")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": "Email sent successfully"})
}

// ResetPassword handles PUT /api/auth/reset-password/{resettoken}.
func (uc *UserController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	hashed := sha256.Sum256([]byte(mux.Vars(r)["resettoken"]))

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := uc.Users.FindOne(ctx, bson.M{
		"resetPasswordToken":  hex.EncodeToString(hashed[:]),
		"resetPasswordExpire": bson.M{"$gt": time.Now()},
	}).Decode(&user)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid or Expired Token")
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	_, err = uc.Users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set":   bson.M{"password": string(newHash), "updatedAt": time.Now()},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := uc.Issuer.Generate(utils.AudienceClient, user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Password Updated Successfully",
		"token":   token,
	})
}

// GetProfile handles GET /api/users/profile.
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/users/profile. A password change requires
// the old password.
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Name        string           `json:"name"`
		Email       string           `json:"email"`
		Phone       string           `json:"phone"`
		Addresses   []models.Address `json:"addresses"`
		Password    string           `json:"password"`
		OldPassword string           `json:"oldPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Email != "" {
		set["email"] = req.Email
	}
	if req.Phone != "" {
		set["phone"] = req.Phone
	}
	if req.Addresses != nil {
		for i := range req.Addresses {
			if req.Addresses[i].ID.IsZero() {
				req.Addresses[i].ID = primitive.NewObjectID()
			}
		}
		set["addresses"] = req.Addresses
	}

	if req.Password != "" {
		if req.OldPassword == "" {
			respondError(w, http.StatusBadRequest, "Old password is required to set a new one")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)) != nil {
			respondError(w, http.StatusUnauthorized, "Invalid old password")
			return
		}
		newHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Error hashing password")
			return
		}
		set["password"] = string(newHash)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var updated models.User
	err := uc.Users.FindOneAndUpdate(ctx, bson.M{"_id": user.ID}, bson.M{"$set": set},
		findAfter()).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Server error while updating profile")
		return
	}

	resp, err := uc.authResponseFor(&updated)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// AddAddress handles POST /api/users/address.
func (uc *UserController) AddAddress(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var addr models.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	addr.ID = primitive.NewObjectID()

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var updated models.User
	err := uc.Users.FindOneAndUpdate(ctx, bson.M{"_id": user.ID},
		bson.M{"$push": bson.M{"addresses": addr}}, findAfter()).Decode(&updated)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error adding address")
		return
	}
	respondJSON(w, http.StatusCreated, updated.Addresses)
}

// UpdateAddress handles PUT /api/users/address/{id}.
func (uc *UserController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	addrID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid address ID")
		return
	}

	var req models.Address
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	found := false
	addresses := user.Addresses
	for i := range addresses {
		if addresses[i].ID != addrID {
			continue
		}
		found = true
		if req.Street != "" {
			addresses[i].Street = req.Street
		}
		if req.City != "" {
			addresses[i].City = req.City
		}
		if req.AptNumber != "" {
			addresses[i].AptNumber = req.AptNumber
		}
		if req.Phone != "" {
			addresses[i].Phone = req.Phone
		}
	}
	if !found {
		respondError(w, http.StatusNotFound, "Address not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	_, err = uc.Users.UpdateOne(ctx, bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"addresses": addresses, "updatedAt": time.Now()}})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error updating address")
		return
	}
	respondJSON(w, http.StatusOK, addresses)
}

// DeleteAddress handles DELETE /api/users/address/{id}.
func (uc *UserController) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	addrID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid address ID")
		return
	}

	remaining := make([]models.Address, 0, len(user.Addresses))
	for _, addr := range user.Addresses {
		if addr.ID != addrID {
			remaining = append(remaining, addr)
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	_, err = uc.Users.UpdateOne(ctx, bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"addresses": remaining, "updatedAt": time.Now()}})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error deleting address")
		return
	}
	respondJSON(w, http.StatusOK, remaining)
}
