package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"mobiblog/internal/models"
)

var ErrInvalidRecord = errors.New("invalid session record")

type sessionClaims struct {
	User models.Session `json:"user"`
	jwt.RegisteredClaims
}

// TokenCodec serializes a Session into a signed HS256 token so a record
// edited behind the front end's back reads as absent.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec returns a codec signing with secret. A zero ttl issues
// records without expiry.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Encode signs s and returns the record with its expiry; the expiry is zero
// when the codec has no ttl.
func (c *TokenCodec) Encode(s models.Session) (string, time.Time, error) {
	now := c.now()
	var expires time.Time
	claims := sessionClaims{
		User: s,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  strconv.FormatInt(s.ID, 10),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
		expires = claims.ExpiresAt.Time
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session record: %w", err)
	}
	return token, expires, nil
}

// Decode verifies record and returns the session with its expiry.
func (c *TokenCodec) Decode(record string) (models.Session, time.Time, error) {
	var claims sessionClaims

	token, err := jwt.ParseWithClaims(record, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		return models.Session{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	if !token.Valid || claims.User.Role == models.RoleUnknown {
		return models.Session{}, time.Time{}, ErrInvalidRecord
	}

	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	return claims.User, expires, nil
}

// expired reports whether a record expiring at expires is no longer valid.
func (c *TokenCodec) expired(expires time.Time) bool {
	return !expires.IsZero() && !c.now().Before(expires)
}
