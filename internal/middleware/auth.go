package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	domainAccount "bloodlink/internal/domain/account"
	"bloodlink/internal/logger"
	appErrors "bloodlink/pkg/errors"
	"bloodlink/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	UserIDKey  = "userID"
	RoleKey    = "role"
	AccountKey = "account"
	ClaimsKey  = "claims"
)

// Authenticator resolves a bearer token to a live account.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*domainAccount.Account, *utils.Claims, error)
}

// AuthMiddleware rejects requests without a valid, unrevoked token for an
// active account and stores the caller in the gin context.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		account, claims, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			status, message := authFailure(err)
			if status == http.StatusInternalServerError {
				logger.Error("Authentication failed",
					zap.String("request_id", GetRequestID(c)),
					zap.Error(err),
				)
			}
			utils.ErrorResponse(c, status, message)
			c.Abort()
			return
		}

		c.Set(UserIDKey, account.ID)
		c.Set(RoleKey, string(account.Role))
		c.Set(AccountKey, account)
		c.Set(ClaimsKey, claims)

		c.Next()
	}
}

func authFailure(err error) (int, string) {
	switch {
	case errors.Is(err, appErrors.ErrTokenRevoked):
		return http.StatusUnauthorized, "Token has been revoked"
	case errors.Is(err, appErrors.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, appErrors.ErrUnauthorized):
		return http.StatusUnauthorized, "User not found"
	case errors.Is(err, domainAccount.ErrAccountInactive):
		return http.StatusForbidden, "Account is inactive"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// GetAccount returns the authenticated account stored by AuthMiddleware.
func GetAccount(c *gin.Context) (*domainAccount.Account, bool) {
	v, exists := c.Get(AccountKey)
	if !exists {
		return nil, false
	}
	account, ok := v.(*domainAccount.Account)
	return account, ok && account != nil
}

func GetClaims(c *gin.Context) (*utils.Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok && claims != nil
}
