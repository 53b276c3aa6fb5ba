// Package identity resolves who is on the other end of a new connection.
// Authentication happens elsewhere; this package only consumes an identity
// that was already issued — either a signed token or, in dev mode, raw query
// parameters.
package identity

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is what the rest of the service knows about a connection's user.
type Identity struct {
	Subject     string // external user id, may be empty in dev mode
	DisplayName string
	AvatarURL   string
}

type Claims struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// Source extracts an Identity from an upgrade request.
type Source struct {
	secret []byte
	dev    bool
}

// New builds a Source. An empty secret is only legal with dev=true.
func New(secret string, dev bool) *Source {
	return &Source{secret: []byte(secret), dev: dev}
}

// FromRequest resolves the connection identity. With a secret configured the
// request must carry a valid HS256 token in ?token=; in dev mode absent or
// invalid tokens fall back to plain query parameters.
func (s *Source) FromRequest(r *http.Request) (Identity, error) {
	token := r.URL.Query().Get("token")
	if len(s.secret) > 0 && token != "" {
		id, err := s.fromToken(token)
		if err == nil {
			return id, nil
		}
		if !s.dev {
			return Identity{}, err
		}
	}
	if len(s.secret) > 0 && !s.dev {
		return Identity{}, ErrMissingToken
	}
	return Identity{
		Subject:     r.URL.Query().Get("userId"),
		DisplayName: r.URL.Query().Get("displayName"),
		AvatarURL:   r.URL.Query().Get("avatarUrl"),
	}, nil
}

func (s *Source) fromToken(raw string) (Identity, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	return Identity{
		Subject:     claims.Subject,
		DisplayName: claims.Name,
		AvatarURL:   claims.Avatar,
	}, nil
}
