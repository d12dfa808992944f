package services

import (
	"errors"
	"fmt"
	"time"

	"referralhub/internal/models"
	"referralhub/internal/policy"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
)

// TokenUser is the identity carried inside a token
type TokenUser struct {
	ID   string      `json:"id"`
	Role models.Role `json:"role"`
}

// Claims are the JWT claims issued at registration and login
type Claims struct {
	User TokenUser `json:"user"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens
type TokenManager struct {
	secret []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenManager creates a token manager
func NewTokenManager(secret string, expiry time.Duration, issuer string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
		now:    time.Now,
	}
}

// Issue signs a token for the user
func (tm *TokenManager) Issue(user *models.User) (string, error) {
	now := tm.now()
	claims := Claims{
		User: TokenUser{ID: user.ID.String(), Role: user.Role},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns the principal it carries
func (tm *TokenManager) Parse(tokenString string) (policy.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return tm.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return policy.Principal{}, err
	}
	if !token.Valid {
		return policy.Principal{}, errors.New("token is not valid")
	}

	id, err := uuid.FromString(claims.User.ID)
	if err != nil {
		return policy.Principal{}, fmt.Errorf("invalid user id in token: %w", err)
	}
	role, err := models.ParseRole(string(claims.User.Role))
	if err != nil {
		return policy.Principal{}, err
	}

	return policy.Principal{UserID: id, Role: role}, nil
}
