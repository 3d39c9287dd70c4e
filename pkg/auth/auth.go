// Package auth issues and verifies the operator tokens that guard the
// restaurant-side API. A token is an HS256 JWT scoped to one restaurant, or
// to every restaurant for the admin role.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "tablebook/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	RestaurantID string `json:"restaurant_id,omitempty"`
	Role         string `json:"role"`
	jwt.RegisteredClaims
}

// CanManage reports whether the bearer may act on restaurantID.
func (c *Claims) CanManage(restaurantID string) bool {
	if c.Role == RoleAdmin {
		return true
	}
	return c.Role == RoleOperator && c.RestaurantID != "" && c.RestaurantID == restaurantID
}

type Authenticator struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewAuthenticator(secret, issuer string) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// Issue signs a token for subject. restaurantID is required for operators
// and ignored for admins.
func (a *Authenticator) Issue(subject, role, restaurantID string, ttl time.Duration) (string, error) {
	switch role {
	case RoleAdmin:
		restaurantID = ""
	case RoleOperator:
		if restaurantID == "" {
			return "", fmt.Errorf("operator token requires a restaurant id")
		}
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}

	now := a.now()
	claims := &Claims{
		RestaurantID: restaurantID,
		Role:         role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Authenticator) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

type claimsKey struct{}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}

// Authorize checks the caller in ctx against restaurantID.
func Authorize(ctx context.Context, restaurantID string) error {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return apperrors.Unauthorized("Missing operator token")
	}
	if !claims.CanManage(restaurantID) {
		return apperrors.Forbidden("Token does not grant access to this restaurant")
	}
	return nil
}

// RequireAdmin checks that the caller in ctx holds the admin role.
func RequireAdmin(ctx context.Context) error {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return apperrors.Unauthorized("Missing operator token")
	}
	if claims.Role != RoleAdmin {
		return apperrors.Forbidden("Admin role required")
	}
	return nil
}
