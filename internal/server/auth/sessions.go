// Package auth issues and resolves session tokens and hashes account
// passwords.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/ponyexpress/internal/server/apperr"
	"github.com/golang-jwt/jwt/v5"
)

// Sessions signs HS256 tokens whose subject is the account id.
type Sessions struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(secret, issuer string, ttl time.Duration) *Sessions {
	return &Sessions{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is the lifetime of an issued token.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue mints a token for accountID valid for the configured TTL.
func (s *Sessions) Issue(accountID int64) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(accountID, 10),
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Resolve validates tokenString and returns the account id it was issued for.
// Expired tokens fail with ExpiredSession, every other defect with InvalidSession.
func (s *Sessions) Resolve(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		// exp has whole-second precision; a token stays valid through its expiry second
		jwt.WithLeeway(time.Second),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, apperr.ExpiredSession()
		}
		return 0, apperr.InvalidSession()
	}

	accountID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, apperr.InvalidSession()
	}

	return accountID, nil
}
