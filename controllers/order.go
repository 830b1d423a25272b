package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"maryland-pharmacy/middleware"
	"maryland-pharmacy/models"
	"maryland-pharmacy/services"
	"maryland-pharmacy/utils"
)

// FreeDeliveryThreshold waives the delivery fee once the items subtotal
// exceeds it.
const FreeDeliveryThreshold = 500

// OrderController runs the order workflow and serves order reads.
type OrderController struct {
	Orders   services.OrderStore
	Users    *mongo.Collection
	Catalog  services.ProductCatalog
	Settings services.SettingsService
	Email    *utils.EmailService
	Log      *logrus.Logger

	// ClientURL is embedded in the dashboard link of notification emails;
	// NotifyEmail is the fallback recipient when settings hold none.
	ClientURL   string
	NotifyEmail string
}

// NewOrderController wires the workflow's collaborators.
func NewOrderController(db *mongo.Database, catalog services.ProductCatalog, settings services.SettingsService, email *utils.EmailService, log *logrus.Logger, clientURL, notifyEmail string) *OrderController {
	return &OrderController{
		Orders:      services.NewOrderStore(db),
		Users:       db.Collection("users"),
		Catalog:     catalog,
		Settings:    settings,
		Email:       email,
		Log:         log,
		ClientURL:   clientURL,
		NotifyEmail: notifyEmail,
	}
}

// orderLineInput is one submitted cart line. Only the product reference and
// quantity are read; client-side prices are never trusted.
type orderLineInput struct {
	Product  string `json:"product"`
	LegacyID string `json:"_id"`
	Quantity int    `json:"quantity"`
}

type shippingAddressInput struct {
	Street    string `json:"street"`
	City      string `json:"city"`
	AptNumber string `json:"aptNumber"`
	Phone     string `json:"phone"`
}

type createOrderRequest struct {
	OrderItems      []orderLineInput     `json:"orderItems"`
	ShippingAddress shippingAddressInput `json:"shippingAddress"`
	PaymentMethod   string               `json:"paymentMethod"`
	TransactionID   string               `json:"transactionId"`
}

// CreateOrder handles POST /api/orders: re-price against the live catalog,
// persist the immutable order, decrement stock, dispatch the notification.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.OrderItems) == 0 {
		respondError(w, http.StatusBadRequest, "No order items")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Fee and notification recipients are read once, at order time.
	baseFee := float64(models.DefaultDeliveryFee)
	var recipients []string
	setting, err := oc.Settings.Get(ctx)
	if err != nil {
		oc.Log.WithError(err).Warn("settings unavailable, using default delivery fee")
	} else {
		baseFee = setting.DeliveryFee
		recipients = setting.NotificationEmails
	}

	items, itemsPrice := resolveOrderItems(ctx, oc.Catalog, req.OrderItems)
	if len(items) == 0 {
		respondError(w, http.StatusBadRequest, "No valid products found")
		return
	}

	deliveryFee := computeDeliveryFee(itemsPrice, baseFee)
	method := normalizePaymentMethod(req.PaymentMethod)
	now := time.Now()

	order := models.Order{
		User:            user.ID,
		OrderItems:      items,
		ShippingAddress: buildShippingAddress(req.ShippingAddress, user),
		PaymentMethod:   method,
		PaymentResult:   newPaymentResult(method, req.TransactionID, user.Email, now),
		ItemsPrice:      itemsPrice,
		DeliveryFee:     deliveryFee,
		TotalAmount:     itemsPrice + deliveryFee,
		Status:          models.OrderStatusNew,
		IsPaid:          false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Single commit point. Stock decrement and notification follow it
	// strictly; neither is wrapped in a transaction with it.
	orderID, err := oc.Orders.Insert(ctx, order)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Order Failed: "+err.Error())
		return
	}
	order.ID = orderID

	for _, item := range items {
		if err := oc.Catalog.DecrementStock(ctx, item.Product, item.Qty); err != nil {
			// The order is already committed; log for reconciliation.
			oc.Log.WithFields(logrus.Fields{
				"order":   order.ID.Hex(),
				"product": item.Product.Hex(),
				"qty":     item.Qty,
			}).WithError(err).Warn("stock decrement failed after order commit")
		}
	}

	// Best-effort, fire-and-forget: order success never depends on mail.
	go oc.notifyNewOrder(order, user, recipients)

	respondJSON(w, http.StatusCreated, order)
}

// resolveOrderItems re-fetches every submitted line against the live catalog
// and freezes name, image and price into the order snapshot. Lines whose
// product no longer resolves are silently dropped; quantity defaults to 1.
func resolveOrderItems(ctx context.Context, catalog services.ProductCatalog, lines []orderLineInput) ([]models.OrderItem, float64) {
	items := make([]models.OrderItem, 0, len(lines))
	itemsPrice := 0.0
	for _, line := range lines {
		ref := line.Product
		if ref == "" {
			ref = line.LegacyID
		}
		id, err := primitive.ObjectIDFromHex(ref)
		if err != nil {
			continue
		}
		product, err := catalog.FindByID(ctx, id)
		if err != nil {
			continue
		}
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		itemsPrice += product.Price * float64(qty)
		items = append(items, models.OrderItem{
			Product: product.ID,
			Name:    product.Title,
			Image:   product.Image,
			Price:   product.Price,
			Qty:     qty,
		})
	}
	return items, itemsPrice
}

func computeDeliveryFee(itemsPrice, baseFee float64) float64 {
	if itemsPrice > FreeDeliveryThreshold {
		return 0
	}
	return baseFee
}

// normalizePaymentMethod maps anything outside the three manual rails to
// Cash on Delivery.
func normalizePaymentMethod(method string) string {
	switch method {
	case models.PaymentCashOnDelivery, models.PaymentInstaPay, models.PaymentVodafoneCash:
		return method
	default:
		return models.PaymentCashOnDelivery
	}
}

// newPaymentResult records the pending manual verification state. All three
// rails start unpaid; the transaction note (or a placeholder) is kept for the
// admin to reconcile.
func newPaymentResult(method, transactionNote, payerEmail string, now time.Time) models.PaymentResult {
	note := strings.TrimSpace(transactionNote)
	if note == "" {
		if method == models.PaymentCashOnDelivery {
			note = "Pending"
		} else {
			note = "See WhatsApp"
		}
	}
	return models.PaymentResult{
		ID:           note,
		Status:       "pending",
		UpdateTime:   now,
		EmailAddress: payerEmail,
	}
}

func buildShippingAddress(in shippingAddressInput, user *models.User) models.ShippingAddress {
	addr := models.ShippingAddress{
		Street: in.Street,
		City:   in.City,
		Phone:  in.Phone,
	}
	if addr.Street == "" {
		addr.Street = "Unknown Street"
	}
	if addr.City == "" {
		addr.City = "Alexandria"
	}
	if addr.Phone == "" {
		addr.Phone = user.Phone
	}
	if addr.Phone == "" {
		addr.Phone = "0000000000"
	}
	return addr
}

// notifyNewOrder dispatches the admin alert for a freshly placed order.
// Every failure is logged and swallowed.
func (oc *OrderController) notifyNewOrder(order models.Order, user *models.User, recipients []string) {
	if len(recipients) == 0 {
		if oc.NotifyEmail == "" {
			oc.Log.Warn("no admin emails configured for notifications")
			return
		}
		recipients = []string{oc.NotifyEmail}
	}

	msg := utils.EmailMessage{
		To:      recipients,
		Subject: fmt.Sprintf("New Order Alert! #%s", order.ID.Hex()),
		Body:    orderNotificationBody(order, user),
		CTAText: "View in Dashboard",
		CTAURL:  oc.ClientURL + "/management-panel",
	}
	if err := oc.Email.Send(msg); err != nil {
		oc.Log.WithField("order", order.ID.Hex()).WithError(err).Warn("failed to send order notification")
		return
	}
	oc.Log.WithFields(logrus.Fields{
		"order":      order.ID.Hex(),
		"recipients": strings.Join(recipients, ", "),
	}).Info("order notification sent")
}

// orderNotificationBody renders the HTML fragment placed inside the
// letterhead: order id, customer, total, item list and shipping block.
func orderNotificationBody(order models.Order, user *models.User) string {
	var itemsList strings.Builder
	for _, item := range order.OrderItems {
		itemsList.WriteString(fmt.Sprintf(
			`<li style="margin-bottom: 5px;"><strong>%s</strong> (x%d) - %.0f EGP</li>`,
			item.Name, item.Qty, item.Price,
		))
	}

	return fmt.Sprintf(`
      <h2 style="color: #DC2626;">New Order Received!</h2>
      <p><strong>Order ID:</strong> %s</p>
      <p><strong>Customer:</strong> %s (%s)</p>
      <p><strong>Total Amount:</strong> <span style="font-size: 18px; font-weight: bold;">%.0f EGP</span></p>
      <hr style="border: 0; border-top: 1px solid #eee; margin: 20px 0;">
      <h3 style="color: #0F172A;">Order Items:</h3>
      <ul style="color: #334155;">%s</ul>
      <h3 style="color: #0F172A;">Shipping Details:</h3>
      <p style="color: #334155;">%s, %s<br><strong>Phone:</strong> %s</p>`,
		order.ID.Hex(), user.Name, user.Email, order.TotalAmount,
		itemsList.String(),
		order.ShippingAddress.Street, order.ShippingAddress.City, order.ShippingAddress.Phone,
	)
}

// GetOrders handles GET /api/orders (admin): every order, newest first, with
// the owning user's contact fields attached.
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orders, err := oc.Orders.FindAll(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching orders")
		return
	}

	users, err := oc.lookupUsers(ctx, orders)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching orders")
		return
	}

	populated := make([]models.PopulatedOrder, 0, len(orders))
	for _, order := range orders {
		populated = append(populated, models.PopulatedOrder{Order: order, UserInfo: users[order.User]})
	}
	respondJSON(w, http.StatusOK, populated)
}

// lookupUsers batch-fetches the contact summary of every order owner.
func (oc *OrderController) lookupUsers(ctx context.Context, orders []models.Order) (map[primitive.ObjectID]models.UserSummary, error) {
	ids := make([]primitive.ObjectID, 0, len(orders))
	seen := make(map[primitive.ObjectID]bool, len(orders))
	for _, order := range orders {
		if !seen[order.User] {
			seen[order.User] = true
			ids = append(ids, order.User)
		}
	}

	summaries := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	cursor, err := oc.Users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.UserSummary
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		summaries[u.ID] = u
	}
	return summaries, nil
}

// GetMyOrders handles GET /api/orders/myorders for the authenticated client.
func (oc *OrderController) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orders, err := oc.Orders.FindByUser(ctx, user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching your orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// GetOrderByID handles GET /api/orders/{id} with the owner populated.
func (oc *OrderController) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.Orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "Order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	var owner models.UserSummary
	// Best effort; an order with a deleted owner still renders.
	_ = oc.Users.FindOne(ctx, bson.M{"_id": order.User}).Decode(&owner)

	respondJSON(w, http.StatusOK, models.PopulatedOrder{Order: order, UserInfo: owner})
}

// validateStatusTransition is the closed transition table: an order moves
// one way out of New into Delivered or Cancelled, nothing else.
func validateStatusTransition(current, requested string) error {
	if current != models.OrderStatusNew {
		return fmt.Errorf("order is already %s", current)
	}
	if requested != models.OrderStatusDelivered && requested != models.OrderStatusCancelled {
		return fmt.Errorf("unknown target status %q", requested)
	}
	return nil
}

// UpdateOrderStatus handles PUT /api/orders/{id}/status (admin). Delivering
// an order stamps deliveredAt and settles the manual payment.
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.Orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "Order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Error updating order status")
		return
	}

	if err := validateStatusTransition(order.Status, req.Status); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid status transition: "+err.Error())
		return
	}

	updated, err := oc.Orders.ApplyUpdate(ctx, orderID, statusUpdateFields(req.Status, time.Now()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error updating order status")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// statusUpdateFields builds the field set of a status transition. Delivering
// stamps deliveredAt and settles the manual payment; any other target touches
// only the status itself.
func statusUpdateFields(status string, now time.Time) bson.M {
	set := bson.M{"status": status, "updatedAt": now}
	if status == models.OrderStatusDelivered {
		set["deliveredAt"] = now
		set["isPaid"] = true
		set["paidAt"] = now
		set["paymentResult.status"] = "completed"
		set["paymentResult.updateTime"] = now
	}
	return set
}
