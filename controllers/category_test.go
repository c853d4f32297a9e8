package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-storefront/models"
	"go-storefront/store"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func muxVars(req *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(req, vars)
}

func TestCreateCategoryMissingName(t *testing.T) {
	cc := NewCategoryController(&fakeStore{}, testLogger())

	rec := httptest.NewRecorder()
	cc.CreateCategory(rec, postJSON(t, "/api/v1/category/create-category", map[string]string{}))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, false, env["success"])
	require.Equal(t, "Name is required", env["message"])
}

func TestCreateCategoryAlreadyExists(t *testing.T) {
	st := &fakeStore{
		FindOneFn: func(ctx context.Context, collection string, q store.Query, out any) error {
			require.Equal(t, models.CategoryCollection, collection)
			require.Equal(t, "Books", q.Filter["name"])
			*out.(*models.Category) = models.Category{ID: primitive.NewObjectID(), Name: "Books", Slug: "books"}
			return nil
		},
	}
	cc := NewCategoryController(st, testLogger())

	rec := httptest.NewRecorder()
	cc.CreateCategory(rec, postJSON(t, "/api/v1/category/create-category", map[string]string{"name": "Books"}))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, true, env["success"])
	require.Equal(t, "Category already exists", env["message"])
}

func TestCreateCategorySuccess(t *testing.T) {
	id := primitive.NewObjectID()
	var inserted models.Category
	st := &fakeStore{
		InsertOneFn: func(ctx context.Context, collection string, doc any) (primitive.ObjectID, error) {
			inserted = doc.(models.Category)
			return id, nil
		},
	}
	cc := NewCategoryController(st, testLogger())

	rec := httptest.NewRecorder()
	cc.CreateCategory(rec, postJSON(t, "/api/v1/category/create-category", map[string]string{"name": "Summer Sale"}))

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, true, env["success"])

	require.Equal(t, "Summer Sale", inserted.Name)
	require.Equal(t, "summer-sale", inserted.Slug)

	category := env["category"].(map[string]any)
	require.Equal(t, id.Hex(), category["id"])
}

func TestUpdateCategoryRefreshesSlug(t *testing.T) {
	id := primitive.NewObjectID()

	var set map[string]any
	st := &fakeStore{
		FindByIDAndUpdateFn: func(ctx context.Context, collection string, gotID primitive.ObjectID, u store.Update, q store.Query, out any) error {
			require.Equal(t, id, gotID)
			set = u.Set
			*out.(*models.Category) = models.Category{ID: id, Name: "Electronics", Slug: "electronics"}
			return nil
		},
	}
	cc := NewCategoryController(st, testLogger())

	req := muxVars(postJSON(t, "/api/v1/category/update-category/"+id.Hex(), map[string]string{"name": "Electronics"}),
		map[string]string{"id": id.Hex()})
	rec := httptest.NewRecorder()
	cc.UpdateCategory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Category Updated Successfully", decodeEnvelope(t, rec)["message"])
	require.Equal(t, "Electronics", set["name"])
	require.Equal(t, "electronics", set["slug"])
}

func TestUpdateCategoryInvalidID(t *testing.T) {
	cc := NewCategoryController(&fakeStore{}, testLogger())

	req := muxVars(postJSON(t, "/api/v1/category/update-category/nope", map[string]string{"name": "X"}),
		map[string]string{"id": "nope"})
	rec := httptest.NewRecorder()
	cc.UpdateCategory(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateCategoryUnknownID(t *testing.T) {
	cc := NewCategoryController(&fakeStore{}, testLogger())

	id := primitive.NewObjectID()
	req := muxVars(postJSON(t, "/api/v1/category/update-category/"+id.Hex(), map[string]string{"name": "X"}),
		map[string]string{"id": id.Hex()})
	rec := httptest.NewRecorder()
	cc.UpdateCategory(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Category not found", decodeEnvelope(t, rec)["message"])
}

func TestGetCategories(t *testing.T) {
	st := &fakeStore{
		FindFn: func(ctx context.Context, collection string, q store.Query, out any) error {
			*out.(*[]models.Category) = []models.Category{
				{ID: primitive.NewObjectID(), Name: "Books", Slug: "books"},
				{ID: primitive.NewObjectID(), Name: "Games", Slug: "games"},
			}
			return nil
		},
	}
	cc := NewCategoryController(st, testLogger())

	rec := httptest.NewRecorder()
	cc.GetCategories(rec, httptest.NewRequest(http.MethodGet, "/api/v1/category/get-category", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, true, env["success"])
	require.Len(t, env["category"], 2)
}

func TestGetCategoryBySlugMissingAnswersNull(t *testing.T) {
	cc := NewCategoryController(&fakeStore{}, testLogger())

	req := muxVars(httptest.NewRequest(http.MethodGet, "/api/v1/category/single-category/ghost", nil),
		map[string]string{"slug": "ghost"})
	rec := httptest.NewRecorder()
	cc.GetCategoryBySlug(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, true, env["success"])
	require.Nil(t, env["category"])
}

func TestGetCategoryBySlugFound(t *testing.T) {
	st := &fakeStore{
		FindOneFn: func(ctx context.Context, collection string, q store.Query, out any) error {
			require.Equal(t, models.CategoryCollection, collection)
			require.Equal(t, "books", q.Filter["slug"])
			*out.(*models.Category) = models.Category{ID: primitive.NewObjectID(), Name: "Books", Slug: "books"}
			return nil
		},
	}
	cc := NewCategoryController(st, testLogger())

	req := muxVars(httptest.NewRequest(http.MethodGet, "/api/v1/category/single-category/books", nil),
		map[string]string{"slug": "books"})
	rec := httptest.NewRecorder()
	cc.GetCategoryBySlug(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, true, env["success"])
	category := env["category"].(map[string]any)
	require.Equal(t, "Books", category["name"])
}

func TestDeleteCategoryNotFound(t *testing.T) {
	st := &fakeStore{
		FindByIDAndDeleteFn: func(ctx context.Context, collection string, id primitive.ObjectID) error {
			return store.ErrNotFound
		},
	}
	cc := NewCategoryController(st, testLogger())

	id := primitive.NewObjectID()
	req := muxVars(httptest.NewRequest(http.MethodDelete, "/api/v1/category/delete-category/"+id.Hex(), nil),
		map[string]string{"id": id.Hex()})
	rec := httptest.NewRecorder()
	cc.DeleteCategory(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Category not found", decodeEnvelope(t, rec)["message"])
}

func TestDeleteCategorySuccess(t *testing.T) {
	deleted := false
	st := &fakeStore{
		FindByIDAndDeleteFn: func(ctx context.Context, collection string, id primitive.ObjectID) error {
			require.Equal(t, models.CategoryCollection, collection)
			deleted = true
			return nil
		},
	}
	cc := NewCategoryController(st, testLogger())

	id := primitive.NewObjectID()
	req := muxVars(httptest.NewRequest(http.MethodDelete, "/api/v1/category/delete-category/"+id.Hex(), nil),
		map[string]string{"id": id.Hex()})
	rec := httptest.NewRecorder()
	cc.DeleteCategory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, deleted)
	require.Equal(t, "Category Deleted Successfully", decodeEnvelope(t, rec)["message"])
}
