package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Mailer sends the order lifecycle emails
type Mailer interface {
	SendOrderConfirmationEmail(toEmail string, order models.Order) error
	SendOrderStatusEmail(toEmail string, order models.Order) error
}

// OrderController handles order-related requests
type OrderController struct {
	Store  store.Store
	Mailer Mailer
	Log    *zap.SugaredLogger
}

// NewOrderController creates a new OrderController
func NewOrderController(s store.Store, mailer Mailer, log *zap.SugaredLogger) *OrderController {
	return &OrderController{Store: s, Mailer: mailer, Log: log}
}

// BuyerView is the buyer reference resolved to its name
type BuyerView struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Name string             `bson:"name" json:"name"`
}

// OrderView is an order with its product and buyer references resolved
type OrderView struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Products      []models.Product   `bson:"products" json:"products"`
	Buyer         BuyerView          `bson:"buyer" json:"buyer"`
	Status        string             `bson:"status" json:"status"`
	TotalAmount   float64            `bson:"total_amount" json:"total_amount"`
	PaymentMethod string             `bson:"payment_method" json:"payment_method"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// CreateOrder places an order for everything in the user's cart. Stock is
// checked for every line before the first deduction; the per-product
// deductions themselves are not transactional.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondJSON(w, http.StatusUnauthorized, utils.Failure("Unauthorized"))
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, utils.Failure("Unauthorized"))
		return
	}

	// The body is optional; no payment method means cash on delivery
	var req struct {
		PaymentMethod string `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Invalid input"))
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "cod"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var cart models.Cart
	err = oc.Store.FindOne(ctx, models.CartCollection, store.Where(store.Filter{"user_id": userID}), &cart)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Cart is empty"))
			return
		}
		oc.Log.Errorw("order create: cart lookup failed", "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Failed to create order").With("error", err.Error()))
		return
	}
	if len(cart.Items) == 0 {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Cart is empty"))
		return
	}

	// Check stock for every line before touching anything
	totalAmount := 0.0
	productRefs := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		var product models.Product
		err := oc.Store.FindByID(ctx, models.ProductCollection, item.ProductID, store.Query{}.Select("-photo"), &product)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondJSON(w, http.StatusNotFound, utils.Failure(fmt.Sprintf("Product with ID %s not found", item.ProductID.Hex())))
				return
			}
			oc.Log.Errorw("order create: product lookup failed", "product_id", item.ProductID.Hex(), "error", err)
			utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Failed to create order").With("error", err.Error()))
			return
		}
		if product.Quantity < item.Quantity {
			utils.RespondJSON(w, http.StatusBadRequest, utils.Failure(fmt.Sprintf("Insufficient stock for product: %s", product.Name)))
			return
		}
		totalAmount += product.Price * float64(item.Quantity)
		productRefs = append(productRefs, product.ID)
	}

	// Deduct stock per product
	for _, item := range cart.Items {
		err := oc.Store.UpdateByID(ctx, models.ProductCollection, item.ProductID, store.Update{
			Inc: map[string]any{"quantity": -item.Quantity},
		})
		if err != nil {
			oc.Log.Errorw("order create: stock deduction failed", "product_id", item.ProductID.Hex(), "error", err)
			utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Failed to update product stock").With("error", err.Error()))
			return
		}
	}

	now := time.Now()
	order := models.Order{
		Products:      productRefs,
		Buyer:         userID,
		Status:        models.StatusNotProcess,
		TotalAmount:   totalAmount,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	id, err := oc.Store.InsertOne(ctx, models.OrderCollection, order)
	if err != nil {
		oc.Log.Errorw("order create: insert failed", "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Failed to create order").With("error", err.Error()))
		return
	}
	order.ID = id

	// Clear the cart
	if err := oc.Store.DeleteOne(ctx, models.CartCollection, store.Filter{"user_id": userID}); err != nil {
		oc.Log.Errorw("order create: cart clear failed", "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Failed to clear cart").With("error", err.Error()))
		return
	}

	// Confirmation email goes out in the background
	var buyer models.User
	if err := oc.Store.FindByID(ctx, models.UserCollection, userID, store.Query{}, &buyer); err != nil {
		oc.Log.Errorw("order create: buyer lookup failed", "user_id", claims.UserID, "error", err)
	} else {
		go func(email string, order models.Order) {
			if err := oc.Mailer.SendOrderConfirmationEmail(email, order); err != nil {
				oc.Log.Errorw("order confirmation email failed", "email", email, "error", err)
			}
		}(buyer.Email, order)
	}

	utils.RespondJSON(w, http.StatusCreated, utils.Success("Order Placed Successfully").With("order", order))
}

// GetMyOrders lists the signed-in user's orders with the product and buyer
// references resolved
func (oc *OrderController) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondJSON(w, http.StatusUnauthorized, utils.Failure("Unauthorized"))
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, utils.Failure("Unauthorized"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	q := store.Where(store.Filter{"buyer": userID}).
		PopulateRef("products", models.ProductCollection, "-photo").
		PopulateRef("buyer", models.UserCollection, "name")

	orders := []OrderView{}
	if err := oc.Store.Find(ctx, models.OrderCollection, q, &orders); err != nil {
		oc.Log.Errorw("order list failed", "user_id", claims.UserID, "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error While Getting Orders").With("error", err.Error()))
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Success("User Orders").With("orders", orders))
}

// GetAllOrders lists every order, newest first
func (oc *OrderController) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	q := store.Where(nil).
		PopulateRef("products", models.ProductCollection, "-photo").
		PopulateRef("buyer", models.UserCollection, "name").
		SortBy("created_at", true)

	orders := []OrderView{}
	if err := oc.Store.Find(ctx, models.OrderCollection, q, &orders); err != nil {
		oc.Log.Errorw("all orders failed", "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error While Getting Orders").With("error", err.Error()))
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Success("All Orders").With("orders", orders))
}

// UpdateOrderStatus sets the fulfillment status of an order and notifies
// the buyer in the background
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["orderId"])
	if err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Invalid order ID"))
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Invalid input"))
		return
	}
	if !models.ValidStatus(req.Status) {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Invalid status"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var order models.Order
	err = oc.Store.FindByIDAndUpdate(ctx, models.OrderCollection, orderID, store.Update{
		Set: map[string]any{"status": req.Status, "updated_at": time.Now()},
	}, store.Query{}, &order)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondJSON(w, http.StatusNotFound, utils.Failure("Order not found"))
			return
		}
		oc.Log.Errorw("order status update failed", "order_id", orderID.Hex(), "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error While Updating Order").With("error", err.Error()))
		return
	}

	var buyer models.User
	if err := oc.Store.FindByID(ctx, models.UserCollection, order.Buyer, store.Query{}, &buyer); err != nil {
		oc.Log.Errorw("order status: buyer lookup failed", "order_id", orderID.Hex(), "error", err)
	} else {
		go func(email string, order models.Order) {
			if err := oc.Mailer.SendOrderStatusEmail(email, order); err != nil {
				oc.Log.Errorw("order status email failed", "email", email, "error", err)
			}
		}(buyer.Email, order)
	}

	utils.RespondJSON(w, http.StatusOK, utils.Success("Order Status Updated").With("order", order))
}
