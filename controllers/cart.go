package controllers

import (
	"context"
	"encoding/json"
	"errors"
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

// CartController handles cart-related requests
type CartController struct {
	Store store.Store
	Log   *zap.SugaredLogger
}

// NewCartController creates a new CartController
func NewCartController(s store.Store, log *zap.SugaredLogger) *CartController {
	return &CartController{Store: s, Log: log}
}

// AddToCart adds a product to the signed-in user's cart. Adding a product
// already in the cart raises its quantity instead of duplicating the line.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
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

	var item models.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Invalid input"))
		return
	}
	if item.ProductID.IsZero() {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Product ID is required"))
		return
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Only existing products can be added
	var product models.Product
	err = cc.Store.FindByID(ctx, models.ProductCollection, item.ProductID, store.Query{}.Select("_id"), &product)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondJSON(w, http.StatusNotFound, utils.Failure("Product not found"))
			return
		}
		cc.Log.Errorw("cart add: product lookup failed", "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error updating cart").With("error", err.Error()))
		return
	}

	var cart models.Cart
	err = cc.Store.FindOne(ctx, models.CartCollection, store.Where(store.Filter{"user_id": userID}), &cart)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			cc.Log.Errorw("cart add: cart lookup failed", "error", err)
			utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error updating cart").With("error", err.Error()))
			return
		}

		// First item starts a new cart
		cart = models.Cart{UserID: userID, Items: []models.CartItem{item}}
		id, err := cc.Store.InsertOne(ctx, models.CartCollection, cart)
		if err != nil {
			cc.Log.Errorw("cart add: insert failed", "error", err)
			utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error creating cart").With("error", err.Error()))
			return
		}
		cart.ID = id

		utils.RespondJSON(w, http.StatusOK, utils.Success("Item added to cart").With("cart", cart))
		return
	}

	updated := false
	for i, existing := range cart.Items {
		if existing.ProductID == item.ProductID {
			cart.Items[i].Quantity += item.Quantity
			updated = true
			break
		}
	}
	if !updated {
		cart.Items = append(cart.Items, item)
	}

	err = cc.Store.UpdateByID(ctx, models.CartCollection, cart.ID, store.Update{
		Set: map[string]any{"items": cart.Items},
	})
	if err != nil {
		cc.Log.Errorw("cart add: update failed", "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error updating cart").With("error", err.Error()))
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Success("Item added to cart").With("cart", cart))
}

// GetCart retrieves the user's cart along with the referenced products,
// minus their photo bytes. A user without a cart gets an empty one.
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cart models.Cart
	err = cc.Store.FindOne(ctx, models.CartCollection, store.Where(store.Filter{"user_id": userID}), &cart)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			empty := models.Cart{UserID: userID, Items: []models.CartItem{}}
			utils.RespondJSON(w, http.StatusOK, utils.Success("Cart is empty").With("cart", empty).With("products", []models.Product{}))
			return
		}
		cc.Log.Errorw("cart get failed", "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error getting cart").With("error", err.Error()))
		return
	}

	ids := make(store.In, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	products := []models.Product{}
	if len(ids) > 0 {
		q := store.Where(store.Filter{"_id": ids}).Select("-photo")
		if err := cc.Store.Find(ctx, models.ProductCollection, q, &products); err != nil {
			cc.Log.Errorw("cart get: product lookup failed", "error", err)
			utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error getting cart").With("error", err.Error()))
			return
		}
	}

	utils.RespondJSON(w, http.StatusOK, utils.Success("User Cart").With("cart", cart).With("products", products))
}

// RemoveFromCart removes a product from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
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

	productID, err := primitive.ObjectIDFromHex(mux.Vars(r)["productId"])
	if err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Invalid product ID"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cart models.Cart
	err = cc.Store.FindOne(ctx, models.CartCollection, store.Where(store.Filter{"user_id": userID}), &cart)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondJSON(w, http.StatusNotFound, utils.Failure("Cart not found"))
			return
		}
		cc.Log.Errorw("cart remove: cart lookup failed", "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error updating cart").With("error", err.Error()))
		return
	}

	updatedItems := []models.CartItem{}
	for _, item := range cart.Items {
		if item.ProductID != productID {
			updatedItems = append(updatedItems, item)
		}
	}

	err = cc.Store.UpdateByID(ctx, models.CartCollection, cart.ID, store.Update{
		Set: map[string]any{"items": updatedItems},
	})
	if err != nil {
		cc.Log.Errorw("cart remove: update failed", "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error updating cart").With("error", err.Error()))
		return
	}
	cart.Items = updatedItems

	utils.RespondJSON(w, http.StatusOK, utils.Success("Item removed from cart").With("cart", cart))
}
