// Package auth verifies bearer tokens issued by the BookABite auth service and
// turns them into caller identities used for authorization decisions.
package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated caller. RestaurantIDs scopes an admin to the
// listed restaurants; an admin with no restaurants administers all of them.
type Identity struct {
	ID            string
	Role          string
	RestaurantIDs []string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanManageRestaurant reports whether the identity holds admin rights for restaurantID.
func (i Identity) CanManageRestaurant(restaurantID string) bool {
	if !i.IsAdmin() {
		return false
	}
	return len(i.RestaurantIDs) == 0 || slices.Contains(i.RestaurantIDs, restaurantID)
}

type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

type claims struct {
	Role        string   `json:"role"`
	Restaurants []string `json:"restaurants,omitempty"`
	jwt.RegisteredClaims
}

func (v *JWTVerifier) Verify(raw string) (Identity, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	role := c.Role
	if role == "" {
		role = RoleUser
	}
	return Identity{ID: c.Subject, Role: role, RestaurantIDs: c.Restaurants}, nil
}

// IssueToken signs an HS256 token for identity that expires after ttl.
func IssueToken(secret string, identity Identity, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	c := claims{
		Role:        identity.Role,
		Restaurants: identity.RestaurantIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

var _ TokenVerifier = (*JWTVerifier)(nil)
