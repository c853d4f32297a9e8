package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var testSecret = []byte("test-secret")

// roleStore serves a single canned user for the admin lookup.
type roleStore struct {
	store.Store
	user models.User
	err  error
}

func (s roleStore) FindByID(ctx context.Context, collection string, id primitive.ObjectID, q store.Query, out any) error {
	if s.err != nil {
		return s.err
	}
	*out.(*models.User) = s.user
	return nil
}

func newTestAuth(s store.Store) *AuthMiddleware {
	return NewAuthMiddleware(testSecret, s, zap.NewNop().Sugar())
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func recordNext(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireSignInMissingHeader(t *testing.T) {
	var called bool
	handler := newTestAuth(roleStore{}).RequireSignIn(recordNext(&called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.False(t, called)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Authorization header missing", decodeBody(t, rec)["message"])
}

func TestRequireSignInMalformedHeader(t *testing.T) {
	handler := newTestAuth(roleStore{}).RequireSignIn(recordNext(new(bool)))

	for _, header := range []string{"Bearer", "Token abc", "Bearer abc def"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Invalid Authorization header format", decodeBody(t, rec)["message"])
	}
}

func TestRequireSignInRejectsBadToken(t *testing.T) {
	handler := newTestAuth(roleStore{}).RequireSignIn(recordNext(new(bool)))

	otherSecret, err := utils.GenerateJWT([]byte("someone-else"), primitive.NewObjectID().Hex(), time.Hour)
	require.NoError(t, err)

	for _, token := range []string{"garbage", otherSecret} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Invalid or expired token", decodeBody(t, rec)["message"])
	}
}

func TestRequireSignInAttachesClaims(t *testing.T) {
	userID := primitive.NewObjectID()
	token, err := utils.GenerateJWT(testSecret, userID.Hex(), time.Hour)
	require.NoError(t, err)

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		gotUserID = claims.UserID
		w.WriteHeader(http.StatusNoContent)
	})
	handler := newTestAuth(roleStore{}).RequireSignIn(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, userID.Hex(), gotUserID)
}

func signedContext(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), UserContextKey, &utils.Claims{UserID: userID})
	return req.WithContext(ctx)
}

func TestIsAdminWithoutClaims(t *testing.T) {
	var called bool
	handler := newTestAuth(roleStore{}).IsAdmin(recordNext(&called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.False(t, called)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Error in admin middleware", decodeBody(t, rec)["message"])
}

func TestIsAdminLookupFailure(t *testing.T) {
	handler := newTestAuth(roleStore{err: store.ErrNotFound}).IsAdmin(recordNext(new(bool)))

	req := signedContext(httptest.NewRequest(http.MethodGet, "/", nil), primitive.NewObjectID().Hex())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Error in admin middleware", decodeBody(t, rec)["message"])
}

func TestIsAdminRejectsCustomerRole(t *testing.T) {
	userID := primitive.NewObjectID()
	st := roleStore{user: models.User{ID: userID, Role: models.RoleCustomer}}

	var called bool
	handler := newTestAuth(st).IsAdmin(recordNext(&called))

	req := signedContext(httptest.NewRequest(http.MethodGet, "/", nil), userID.Hex())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.False(t, called)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "UnAuthorized Access", decodeBody(t, rec)["message"])
}

func TestIsAdminChecksPersistedRole(t *testing.T) {
	userID := primitive.NewObjectID()
	st := roleStore{user: models.User{ID: userID, Role: models.RoleAdmin}}

	var called bool
	handler := newTestAuth(st).IsAdmin(recordNext(&called))

	req := signedContext(httptest.NewRequest(http.MethodGet, "/", nil), userID.Hex())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.True(t, called)
	require.Equal(t, http.StatusNoContent, rec.Code)
}
