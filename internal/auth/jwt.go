package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every reason a token is rejected: bad signature,
// expired, malformed or carrying a subject that is not a user id.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager signs and verifies HS256 access tokens whose subject is a user id.
// The secret and lifetime come from config (JWT_SECRET, JWT_TTL).
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// GenerateToken creates a new access token (the "bearer" token returned by
// POST /login/access-token) for userID.
func (m *TokenManager) GenerateToken(userID uuid.UUID) (string, error) {
	// 1. Build the claims.
	// "sub" is the user id as a string, "exp" is now + TTL.
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	// 2. Create the token object with HS256.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// 3. Sign it with our secret to get the final string.
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a token string.
// It returns the user id (subject) if the token is valid.
func (m *TokenManager) ValidateToken(tokenString string) (uuid.UUID, error) {
	// 1. Parse the token into RegisteredClaims.
	// A token without "exp" is rejected, as is one past its expiry.
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		// 2. Check the signing method.
		// Only HMAC tokens signed by us are accepted (no "none", no RSA swap).
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}

		// 3. Return our secret key for verification.
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err) // expired, malformed, bad signature
	}
	if !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	// 4. Read the user id back out of "sub".
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return userID, nil
}
