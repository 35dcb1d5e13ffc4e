// Package auth issues and verifies the signed guest tokens that identify players
// on the HTTP and WebSocket endpoints.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vodiniz/buracao/internal/models"
)

const (
	defaultTokenTTL   = 24 * time.Hour
	maxUsernameLength = 24
	issuer            = "buraco"
)

var (
	ErrInvalidToken    = errors.New("auth: invalid or expired token")
	ErrInvalidUsername = errors.New("auth: username must be 1-24 characters")
)

// Claims are the registered JWT claims plus the display name. Subject holds the
// user id.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueGuest creates a new guest identity and its signed token.
func (ti *TokenIssuer) IssueGuest(username string) (string, models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || utf8.RuneCountInString(username) > maxUsernameLength {
		return "", models.User{}, ErrInvalidUsername
	}
	user := models.User{ID: uuid.New(), Username: username}

	now := ti.now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", models.User{}, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

// Parse verifies a token and returns the identity it carries.
func (ti *TokenIssuer) Parse(token string) (models.User, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return ti.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil || !parsed.Valid {
		return models.User{}, ErrInvalidToken
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil || claims.Username == "" {
		return models.User{}, ErrInvalidToken
	}
	return models.User{ID: id, Username: claims.Username}, nil
}
