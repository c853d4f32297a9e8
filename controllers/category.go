package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/gorilla/mux"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CategoryController handles category management requests
type CategoryController struct {
	Store store.Store
	Log   *zap.SugaredLogger
}

// NewCategoryController creates a new CategoryController
func NewCategoryController(s store.Store, log *zap.SugaredLogger) *CategoryController {
	return &CategoryController{Store: s, Log: log}
}

// CreateCategory creates a category with a slug derived from its name
func (cc *CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Invalid input"))
		return
	}
	if req.Name == "" {
		utils.RespondJSON(w, http.StatusUnauthorized, utils.Failure("Name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Duplicate names are reported, not created twice
	var existing models.Category
	err := cc.Store.FindOne(ctx, models.CategoryCollection, store.Where(store.Filter{"name": req.Name}), &existing)
	if err == nil {
		utils.RespondJSON(w, http.StatusOK, utils.Success("Category already exists"))
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		cc.Log.Errorw("category create: lookup failed", "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error in Category").With("error", err.Error()))
		return
	}

	category := models.Category{
		Name: req.Name,
		Slug: slug.Make(req.Name),
	}
	id, err := cc.Store.InsertOne(ctx, models.CategoryCollection, category)
	if err != nil {
		cc.Log.Errorw("category create: insert failed", "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error in Category").With("error", err.Error()))
		return
	}
	category.ID = id

	utils.RespondJSON(w, http.StatusCreated, utils.Success("new category created").With("category", category))
}

// UpdateCategory renames a category and refreshes its slug
func (cc *CategoryController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Invalid category ID"))
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Invalid input"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var category models.Category
	err = cc.Store.FindByIDAndUpdate(ctx, models.CategoryCollection, id, store.Update{
		Set: map[string]any{"name": req.Name, "slug": slug.Make(req.Name)},
	}, store.Query{}, &category)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondJSON(w, http.StatusNotFound, utils.Failure("Category not found"))
			return
		}
		cc.Log.Errorw("category update failed", "category_id", id.Hex(), "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error while updating category").With("error", err.Error()))
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Success("Category Updated Successfully").With("category", category))
}

// GetCategories lists all categories
func (cc *CategoryController) GetCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	categories := []models.Category{}
	if err := cc.Store.Find(ctx, models.CategoryCollection, store.Query{}, &categories); err != nil {
		cc.Log.Errorw("category list failed", "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error while getting all categories").With("error", err.Error()))
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Success("All Categories List").With("category", categories))
}

// GetCategoryBySlug fetches a single category. A missing slug still answers
// with a success envelope and a null category.
func (cc *CategoryController) GetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var category models.Category
	err := cc.Store.FindOne(ctx, models.CategoryCollection, store.Where(store.Filter{"slug": mux.Vars(r)["slug"]}), &category)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondJSON(w, http.StatusOK, utils.Success("Get Single Category Successfully").With("category", nil))
			return
		}
		cc.Log.Errorw("category get failed", "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("Error While getting Single Category").With("error", err.Error()))
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Success("Get Single Category Successfully").With("category", category))
}

// DeleteCategory removes a category by id
func (cc *CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, utils.Failure("Invalid category ID"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cc.Store.FindByIDAndDelete(ctx, models.CategoryCollection, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondJSON(w, http.StatusNotFound, utils.Failure("Category not found"))
			return
		}
		cc.Log.Errorw("category delete failed", "category_id", id.Hex(), "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, utils.Failure("error while deleting category").With("error", err.Error()))
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Success("Category Deleted Successfully"))
}
