package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// AuthMiddleware verifies bearer tokens and resolves admin privileges
// against the persisted user record.
type AuthMiddleware struct {
	secret []byte
	store  store.Store
	log    *zap.SugaredLogger
}

func NewAuthMiddleware(secret []byte, s store.Store, log *zap.SugaredLogger) *AuthMiddleware {
	return &AuthMiddleware{secret: secret, store: s, log: log}
}

// ClaimsFromContext returns the claims attached by RequireSignIn.
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

// RequireSignIn verifies the JWT and attaches its claims to the request
// context. Requests without a valid token are rejected with 401.
func (am *AuthMiddleware) RequireSignIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.RespondJSON(w, http.StatusUnauthorized, utils.Failure("Authorization header missing"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.RespondJSON(w, http.StatusUnauthorized, utils.Failure("Invalid Authorization header format"))
			return
		}

		claims, err := utils.ParseToken(am.secret, parts[1])
		if err != nil {
			am.log.Debugw("token rejected", "error", err)
			utils.RespondJSON(w, http.StatusUnauthorized, utils.Failure("Invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IsAdmin loads the signed-in user and ensures the persisted role is admin.
// The token itself carries no role; a stale token cannot grant access a
// demoted account no longer has.
func (am *AuthMiddleware) IsAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			utils.RespondJSON(w, http.StatusUnauthorized, utils.Failure("Error in admin middleware"))
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.RespondJSON(w, http.StatusUnauthorized, utils.Failure("Error in admin middleware"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := am.store.FindByID(ctx, models.UserCollection, userID, store.Query{}, &user); err != nil {
			am.log.Errorw("admin lookup failed", "user_id", claims.UserID, "error", err)
			utils.RespondJSON(w, http.StatusUnauthorized, utils.Failure("Error in admin middleware"))
			return
		}

		if user.Role != models.RoleAdmin {
			utils.RespondJSON(w, http.StatusUnauthorized, utils.Failure("UnAuthorized Access"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
