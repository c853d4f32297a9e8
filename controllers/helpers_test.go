package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go-storefront/config"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakeStore implements store.Store with overridable functions. Methods left
// nil behave like an empty database.
type fakeStore struct {
	FindFn              func(ctx context.Context, collection string, q store.Query, out any) error
	FindOneFn           func(ctx context.Context, collection string, q store.Query, out any) error
	FindByIDFn          func(ctx context.Context, collection string, id primitive.ObjectID, q store.Query, out any) error
	InsertOneFn         func(ctx context.Context, collection string, doc any) (primitive.ObjectID, error)
	UpdateByIDFn        func(ctx context.Context, collection string, id primitive.ObjectID, u store.Update) error
	FindByIDAndUpdateFn func(ctx context.Context, collection string, id primitive.ObjectID, u store.Update, q store.Query, out any) error
	FindByIDAndDeleteFn func(ctx context.Context, collection string, id primitive.ObjectID) error
	DeleteOneFn         func(ctx context.Context, collection string, f store.Filter) error
	CountFn             func(ctx context.Context, collection string, f store.Filter) (int64, error)
	EstimatedCountFn    func(ctx context.Context, collection string) (int64, error)
}

func (f *fakeStore) Find(ctx context.Context, collection string, q store.Query, out any) error {
	if f.FindFn != nil {
		return f.FindFn(ctx, collection, q, out)
	}
	return nil
}

func (f *fakeStore) FindOne(ctx context.Context, collection string, q store.Query, out any) error {
	if f.FindOneFn != nil {
		return f.FindOneFn(ctx, collection, q, out)
	}
	return store.ErrNotFound
}

func (f *fakeStore) FindByID(ctx context.Context, collection string, id primitive.ObjectID, q store.Query, out any) error {
	if f.FindByIDFn != nil {
		return f.FindByIDFn(ctx, collection, id, q, out)
	}
	return store.ErrNotFound
}

func (f *fakeStore) InsertOne(ctx context.Context, collection string, doc any) (primitive.ObjectID, error) {
	if f.InsertOneFn != nil {
		return f.InsertOneFn(ctx, collection, doc)
	}
	return primitive.NewObjectID(), nil
}

func (f *fakeStore) UpdateByID(ctx context.Context, collection string, id primitive.ObjectID, u store.Update) error {
	if f.UpdateByIDFn != nil {
		return f.UpdateByIDFn(ctx, collection, id, u)
	}
	return nil
}

func (f *fakeStore) FindByIDAndUpdate(ctx context.Context, collection string, id primitive.ObjectID, u store.Update, q store.Query, out any) error {
	if f.FindByIDAndUpdateFn != nil {
		return f.FindByIDAndUpdateFn(ctx, collection, id, u, q, out)
	}
	return store.ErrNotFound
}

func (f *fakeStore) FindByIDAndDelete(ctx context.Context, collection string, id primitive.ObjectID) error {
	if f.FindByIDAndDeleteFn != nil {
		return f.FindByIDAndDeleteFn(ctx, collection, id)
	}
	return store.ErrNotFound
}

func (f *fakeStore) DeleteOne(ctx context.Context, collection string, filter store.Filter) error {
	if f.DeleteOneFn != nil {
		return f.DeleteOneFn(ctx, collection, filter)
	}
	return nil
}

func (f *fakeStore) Count(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	if f.CountFn != nil {
		return f.CountFn(ctx, collection, filter)
	}
	return 0, nil
}

func (f *fakeStore) EstimatedCount(ctx context.Context, collection string) (int64, error) {
	if f.EstimatedCountFn != nil {
		return f.EstimatedCountFn(ctx, collection)
	}
	return 0, nil
}

// fakeMailer records sent emails instead of talking to SendGrid. Sends
// happen on background goroutines, so access is guarded.
type fakeMailer struct {
	mu            sync.Mutex
	confirmations []string
	statusMails   []string
	done          chan struct{}
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{done: make(chan struct{}, 4)}
}

func (f *fakeMailer) SendOrderConfirmationEmail(toEmail string, order models.Order) error {
	f.mu.Lock()
	f.confirmations = append(f.confirmations, toEmail)
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func (f *fakeMailer) SendOrderStatusEmail(toEmail string, order models.Order) error {
	f.mu.Lock()
	f.statusMails = append(f.statusMails, toEmail)
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func (f *fakeMailer) confirmedTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.confirmations...)
}

func (f *fakeMailer) statusTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.statusMails...)
}

// waitForMail blocks until a background send lands or the test times out.
func (f *fakeMailer) waitForMail(t *testing.T) {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an email to be sent")
	}
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConf{Secret: "test-secret", ExpiresIn: time.Hour},
	}
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// signedRequest attaches claims for the given user id the way the sign-in
// middleware would.
func signedRequest(req *http.Request, userID primitive.ObjectID) *http.Request {
	claims := &utils.Claims{UserID: userID.Hex()}
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, claims)
	return req.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}
