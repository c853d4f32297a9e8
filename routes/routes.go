// routes/routes.go
package routes

import (
	"net/http"

	"go-storefront/controllers"
	"go-storefront/middleware"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all the routes for the application under /api/v1
func RegisterRoutes(
	router *mux.Router,
	auth *middleware.AuthMiddleware,
	userController *controllers.UserController,
	categoryController *controllers.CategoryController,
	productController *controllers.ProductController,
	cartController *controllers.CartController,
	orderController *controllers.OrderController,
) {
	api := router.PathPrefix("/api/v1").Subrouter()

	signed := func(h http.HandlerFunc) http.Handler {
		return auth.RequireSignIn(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return auth.RequireSignIn(auth.IsAdmin(h))
	}

	// Auth routes
	authRouter := api.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", userController.Register).Methods("POST")
	authRouter.HandleFunc("/login", userController.Login).Methods("POST")
	authRouter.HandleFunc("/forgot-password", userController.ForgotPassword).Methods("POST")
	authRouter.Handle("/profile", signed(userController.UpdateProfile)).Methods("PUT")
	authRouter.Handle("/user-auth", signed(userController.UserAuth)).Methods("GET")
	authRouter.Handle("/admin-auth", admin(userController.AdminAuth)).Methods("GET")
	authRouter.Handle("/orders", signed(orderController.GetMyOrders)).Methods("GET")
	authRouter.Handle("/all-orders", admin(orderController.GetAllOrders)).Methods("GET")
	authRouter.Handle("/order-status/{orderId}", admin(orderController.UpdateOrderStatus)).Methods("PUT")

	// Category routes
	category := api.PathPrefix("/category").Subrouter()
	category.Handle("/create-category", admin(categoryController.CreateCategory)).Methods("POST")
	category.Handle("/update-category/{id}", admin(categoryController.UpdateCategory)).Methods("PUT")
	category.HandleFunc("/get-category", categoryController.GetCategories).Methods("GET")
	category.HandleFunc("/single-category/{slug}", categoryController.GetCategoryBySlug).Methods("GET")
	category.Handle("/delete-category/{id}", admin(categoryController.DeleteCategory)).Methods("DELETE")

	// Product routes
	product := api.PathPrefix("/product").Subrouter()
	product.Handle("/create-product", admin(productController.CreateProduct)).Methods("POST")
	product.Handle("/update-product/{pid}", admin(productController.UpdateProduct)).Methods("PUT")
	product.HandleFunc("/get-product", productController.GetProducts).Methods("GET")
	product.HandleFunc("/get-product/{slug}", productController.GetProductBySlug).Methods("GET")
	product.HandleFunc("/product-photo/{pid}", productController.ProductPhoto).Methods("GET")
	product.Handle("/delete-product/{pid}", admin(productController.DeleteProduct)).Methods("DELETE")
	product.HandleFunc("/product-filters", productController.FilterProducts).Methods("POST")
	product.HandleFunc("/product-count", productController.ProductCount).Methods("GET")
	product.HandleFunc("/product-list/{page}", productController.ProductList).Methods("GET")
	product.HandleFunc("/search/{keyword}", productController.SearchProducts).Methods("GET")
	product.HandleFunc("/related-product/{pid}/{cid}", productController.RelatedProducts).Methods("GET")
	product.HandleFunc("/product-category/{slug}", productController.ProductsByCategory).Methods("GET")

	// Cart routes
	cart := api.PathPrefix("/cart").Subrouter()
	cart.Handle("", signed(cartController.AddToCart)).Methods("POST")
	cart.Handle("", signed(cartController.GetCart)).Methods("GET")
	cart.Handle("/{productId}", signed(cartController.RemoveFromCart)).Methods("DELETE")

	// Order routes
	order := api.PathPrefix("/order").Subrouter()
	order.Handle("/create", signed(orderController.CreateOrder)).Methods("POST")
}
