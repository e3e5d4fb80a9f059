// Package session reads and inspects the backend session token (a JWT).
//
// The client never holds the signing secret, so Inspect only decodes the
// claims to learn who the user is and when the session ends. Verify and
// Issue exist for the fixture backend.
package session

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken means neither the environment nor the token file provided a
// token.
var ErrNoToken = errors.New("no session token")

// Info is what the client learns from a token.
type Info struct {
	UserID    string    `json:"user_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Expired   bool      `json:"expired"`
}

// ReadToken returns envValue when set, else the trimmed contents of
// tokenFile.
func ReadToken(envValue, tokenFile string) (string, error) {
	if tok := strings.TrimSpace(envValue); tok != "" {
		return tok, nil
	}
	if tokenFile == "" {
		return "", ErrNoToken
	}
	data, err := os.ReadFile(tokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("reading token file: %w", err)
	}
	tok := strings.TrimSpace(string(data))
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

// Inspect decodes token without checking its signature. A token without an
// exp claim never expires.
func Inspect(token string, now time.Time) (Info, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return Info{}, ErrNoToken
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Info{}, fmt.Errorf("decoding session token: %w", err)
	}
	return infoFrom(claims, now), nil
}

// Verify checks an HS256 signature against secret and the expiry against
// now.
func Verify(token string, secret []byte, now time.Time) (Info, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		return Info{}, fmt.Errorf("invalid session token: %w", err)
	}
	return infoFrom(claims, now), nil
}

// Issue signs a token for userID valid for ttl.
func Issue(secret []byte, userID string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func infoFrom(claims jwt.MapClaims, now time.Time) Info {
	var info Info
	for _, key := range []string{"user_id", "userId", "id", "sub"} {
		if v, ok := claims[key]; ok && v != nil {
			info.UserID = claimString(v)
			if info.UserID != "" {
				break
			}
		}
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
		info.Expired = !now.Before(exp.Time)
	}
	return info
}

func claimString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprint(t)
	default:
		return fmt.Sprint(t)
	}
}
