package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"
	"go-storefront/validate"

	"github.com/gorilla/mux"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProductController handles catalog requests
type ProductController struct {
	Store store.Store
	Log   *zap.SugaredLogger
}

// NewProductController creates a new ProductController
func NewProductController(s store.Store, log *zap.SugaredLogger) *ProductController {
	return &ProductController{Store: s, Log: log}
}

// ProductView is a product with its category reference resolved. The photo
// bytes never ride along; clients fetch them from the photo endpoint.
type ProductView struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    *models.Category   `bson:"category" json:"category"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Shipping    bool               `bson:"shipping" json:"shipping"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// productForm holds the parsed multipart fields shared by create and update
type productForm struct {
	Name        string
	Description string
	Price       float64
	Category    primitive.ObjectID
	Quantity    int
	Shipping    bool
	Photo       *models.Photo
}

// parseProductForm reads and validates the multipart product form. On
// failure it returns a nil form with the status and message to respond with.
func parseProductForm(r *http.Request) (*productForm, int, string) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, http.StatusBadRequest, "Failed to parse multipart form"
	}

	name := r.FormValue("name")
	description := r.FormValue("description")
	priceStr := r.FormValue("price")
	categoryStr := r.FormValue("category")
	quantityStr := r.FormValue("quantity")

	res := validate.Required(
		validate.Field{Value: name, Message: "Name is Required"},
		validate.Field{Value: description, Message: "Description is Required"},
		validate.Field{Value: priceStr, Message: "Price is Required"},
		validate.Field{Value: categoryStr, Message: "Category is Required"},
		validate.Field{Value: quantityStr, Message: "Quantity is Required"},
	)
	if !res.OK() {
		return nil, http.StatusInternalServerError, res.First()
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return nil, http.StatusBadRequest, "Invalid price"
	}
	quantity, err := strconv.Atoi(quantityStr)
	if err != nil {
		return nil, http.StatusBadRequest, "Invalid quantity"
	}
	categoryID, err := primitive.ObjectIDFromHex(categoryStr)
	if err != nil {
		return nil, http.StatusBadRequest, "Invalid category ID"
	}
	shipping, _ := strconv.ParseBool(r.FormValue("shipping"))

	form := &productForm{
		Name:        name,
		Description: description,
		Price:       price,
		Category:    categoryID,
		Quantity:    quantity,
		Shipping:    shipping,
	}

	file, header, err := r.FormFile("photo")
	switch {
	case err == nil:
		defer file.Close()
		if header.Size > models.MaxPhotoBytes {
			return nil, http.StatusInternalServerError, "Photo is required and should be less than 1mb"
		}
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, http.StatusInternalServerError, "Failed to read photo"
		}
		form.Photo = &models.Photo{Data: data, ContentType: header.Header.Get("Content-Type")}
	case errors.Is(err, http.ErrMissingFile):
		// Photo is optional
	default:
		return nil, http.StatusBadRequest, "Invalid photo upload"
	}

	return form, 0, ""
}

// CreateProduct creates a product from a multipart form, with an optional
// embedded photo
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	form, status, msg := parseProductForm(r)
	if form == nil {
		utils.RespondJSON(w, status, utils.Failure(msg))
		return
	}

	now := time.Now()
	product := models.Product{
		Name:        form.Name,
		Slug:        slug.Make(form.Name),
		Description: form.Description,
		Price:       form.Price,
		Category:    form.Category,
		Quantity:    form.Quantity,
		Shipping:    form.Shipping,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if form.Photo != nil {
		product.Photo = *form.Photo
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := pc.Store.InsertOne(ctx, models.ProductCollection, product)
	if err != nil {
		pc.Log.Errorw("product create failed", "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error in creating product").With("error", err.Error()))
		return
	}
	product.ID = id

	utils.RespondJSON(w, http.StatusCreated, utils.Success("Product Created Successfully").With("products", product))
}

// UpdateProduct replaces the editable fields of a product. A new photo
// overwrites the stored one; without a photo part the old bytes stay.
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["pid"])
	if err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Invalid product ID"))
		return
	}

	form, status, msg := parseProductForm(r)
	if form == nil {
		utils.RespondJSON(w, status, utils.Failure(msg))
		return
	}

	set := map[string]any{
		"name":        form.Name,
		"slug":        slug.Make(form.Name),
		"description": form.Description,
		"price":       form.Price,
		"category":    form.Category,
		"quantity":    form.Quantity,
		"shipping":    form.Shipping,
		"updated_at":  time.Now(),
	}
	if form.Photo != nil {
		set["photo"] = *form.Photo
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var updated models.Product
	err = pc.Store.FindByIDAndUpdate(ctx, models.ProductCollection, id, store.Update{Set: set}, store.Query{}.Select("-photo"), &updated)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondJSON(w, http.StatusNotFound, utils.Failure("Product not found"))
			return
		}
		pc.Log.Errorw("product update failed", "product_id", id.Hex(), "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error in updating product").With("error", err.Error()))
		return
	}

	utils.RespondJSON(w, http.StatusCreated, utils.Success("Product Updated Successfully").With("products", updated))
}

// GetProducts lists the most recently created products, capped at 12
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q := store.Where(nil).
		Select("-photo").
		PopulateRef("category", models.CategoryCollection).
		SortBy("created_at", true).
		Limit(12)

	products := []ProductView{}
	if err := pc.Store.Find(ctx, models.ProductCollection, q, &products); err != nil {
		pc.Log.Errorw("product list failed", "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error in getting products").With("error", err.Error()))
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Success("All Products").With("products", products).With("countTotal", len(products)))
}

// GetProductBySlug fetches one product by its slug with the category
// resolved. An unknown slug still answers with a success envelope and a
// null product.
func (pc *ProductController) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q := store.Where(store.Filter{"slug": mux.Vars(r)["slug"]}).
		Select("-photo").
		PopulateRef("category", models.CategoryCollection)

	var product ProductView
	err := pc.Store.FindOne(ctx, models.ProductCollection, q, &product)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondJSON(w, http.StatusOK, utils.Success("Single Product Fetched").With("product", nil))
			return
		}
		pc.Log.Errorw("product get failed", "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error while getting single product").With("error", err.Error()))
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Success("Single Product Fetched").With("product", product))
}

// ProductPhoto streams the stored photo bytes with their content type
func (pc *ProductController) ProductPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["pid"])
	if err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Invalid product ID"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var product models.Product
	err = pc.Store.FindByID(ctx, models.ProductCollection, id, store.Query{}.Select("photo"), &product)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondJSON(w, http.StatusNotFound, utils.Failure("Product not found"))
			return
		}
		pc.Log.Errorw("product photo failed", "product_id", id.Hex(), "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error while getting photo").With("error", err.Error()))
		return
	}
	if len(product.Photo.Data) == 0 {
		utils.RespondJSON(w, http.StatusNotFound, utils.Failure("Photo not found"))
		return
	}

	w.Header().Set("Content-Type", product.Photo.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(product.Photo.Data)
}

// DeleteProduct removes a product by id
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["pid"])
	if err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Invalid product ID"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pc.Store.FindByIDAndDelete(ctx, models.ProductCollection, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondJSON(w, http.StatusNotFound, utils.Failure("Product not found"))
			return
		}
		pc.Log.Errorw("product delete failed", "product_id", id.Hex(), "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error while deleting product").With("error", err.Error()))
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Success("Product Deleted successfully"))
}

// FilterProducts returns products matching the checked categories and the
// price range, combined conjunctively
func (pc *ProductController) FilterProducts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Checked []string  `json:"checked"`
		Radio   []float64 `json:"radio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Invalid input"))
		return
	}

	filter := store.Filter{}
	if len(req.Checked) > 0 {
		ids := make(store.In, 0, len(req.Checked))
		for _, c := range req.Checked {
			id, err := primitive.ObjectIDFromHex(c)
			if err != nil {
				utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Invalid category ID"))
				return
			}
			ids = append(ids, id)
		}
		filter["category"] = ids
	}
	if len(req.Radio) >= 2 {
		filter["price"] = store.Range{Min: req.Radio[0], Max: req.Radio[1]}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	products := []models.Product{}
	if err := pc.Store.Find(ctx, models.ProductCollection, store.Where(filter).Select("-photo"), &products); err != nil {
		pc.Log.Errorw("product filter failed", "error", err)
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Error While Filtering Products").With("error", err.Error()))
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Success("Filtered Products").With("products", products))
}

// ProductCount reports the total product count used by the pagination widget
func (pc *ProductController) ProductCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	total, err := pc.Store.EstimatedCount(ctx, models.ProductCollection)
	if err != nil {
		pc.Log.Errorw("product count failed", "error", err)
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Error in product count").With("error", err.Error()))
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Success("Product count").With("total", total))
}

// ProductList returns one fixed-size page of products, newest first. An
// absent or malformed page number falls back to the first page.
func (pc *ProductController) ProductList(w http.ResponseWriter, r *http.Request) {
	const perPage = 6

	page, err := strconv.Atoi(mux.Vars(r)["page"])
	if err != nil || page < 1 {
		page = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q := store.Where(nil).
		Select("-photo").
		Skip(int64((page - 1) * perPage)).
		Limit(perPage).
		SortBy("created_at", true)

	products := []models.Product{}
	if err := pc.Store.Find(ctx, models.ProductCollection, q, &products); err != nil {
		pc.Log.Errorw("product page failed", "page", page, "error", err)
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Error in product list").With("error", err.Error()))
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Success("Products List").With("products", products))
}

// SearchProducts matches the keyword against product names and
// descriptions, case-insensitively. The response body is the bare result
// array, which the storefront search page consumes directly.
func (pc *ProductController) SearchProducts(w http.ResponseWriter, r *http.Request) {
	keyword := mux.Vars(r)["keyword"]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := store.AnyOf(
		store.Filter{"name": store.Regex{Pattern: keyword}},
		store.Filter{"description": store.Regex{Pattern: keyword}},
	)

	results := []models.Product{}
	if err := pc.Store.Find(ctx, models.ProductCollection, store.Where(filter).Select("-photo"), &results); err != nil {
		pc.Log.Errorw("product search failed", "keyword", keyword, "error", err)
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Error In Search Product API").With("error", err.Error()))
		return
	}

	utils.RespondJSON(w, http.StatusOK, results)
}

// RelatedProducts lists up to three other products from the same category
func (pc *ProductController) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	pid, err := primitive.ObjectIDFromHex(mux.Vars(r)["pid"])
	if err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Invalid product ID"))
		return
	}
	cid, err := primitive.ObjectIDFromHex(mux.Vars(r)["cid"])
	if err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Invalid category ID"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q := store.Where(store.Filter{
		"category": cid,
		"_id":      store.Ne{Value: pid},
	}).
		Select("-photo").
		PopulateRef("category", models.CategoryCollection).
		Limit(3)

	products := []ProductView{}
	if err := pc.Store.Find(ctx, models.ProductCollection, q, &products); err != nil {
		pc.Log.Errorw("related products failed", "product_id", pid.Hex(), "error", err)
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Error while getting related products").With("error", err.Error()))
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Success("Related Products").With("products", products))
}

// ProductsByCategory lists the products of the category with the given
// slug. An unknown slug answers with a null category and no products.
func (pc *ProductController) ProductsByCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var category models.Category
	err := pc.Store.FindOne(ctx, models.CategoryCollection, store.Where(store.Filter{"slug": mux.Vars(r)["slug"]}), &category)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondJSON(w, http.StatusOK, utils.Success("Products by category").With("category", nil).With("products", []ProductView{}))
			return
		}
		pc.Log.Errorw("category products failed", "error", err)
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Error While Getting products").With("error", err.Error()))
		return
	}

	q := store.Where(store.Filter{"category": category.ID}).
		Select("-photo").
		PopulateRef("category", models.CategoryCollection)

	products := []ProductView{}
	if err := pc.Store.Find(ctx, models.ProductCollection, q, &products); err != nil {
		pc.Log.Errorw("category products failed", "category_id", category.ID.Hex(), "error", err)
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Error While Getting products").With("error", err.Error()))
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Success("Products by category").With("category", category).With("products", products))
}
