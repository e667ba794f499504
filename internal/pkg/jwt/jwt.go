package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrMissingSubject = errors.New("token has no subject")

// Verifier checks HS256 access tokens issued by the auth provider. The
// subject claim carries the application user id.
type Verifier struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewVerifier(secretKey string) *Verifier {
	return &Verifier{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (v *Verifier) JWTAuth() *jwtauth.JWTAuth {
	return v.tokenAuth
}

// Issue signs a token for userID. The auth provider issues real tokens; this
// is used by tests and local tooling.
func (v *Verifier) Issue(userID string, ttl time.Duration) (string, error) {
	_, token, err := v.tokenAuth.Encode(map[string]any{
		jwt.SubjectKey:    userID,
		jwt.IssuedAtKey:   time.Now().Unix(),
		jwt.ExpirationKey: time.Now().Add(ttl).Unix(),
	})
	return token, err
}

// SubjectFromContext returns the user id of the token verified by jwtauth.
func SubjectFromContext(ctx context.Context) (string, error) {
	token, _, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", err
	}
	if token == nil || token.Subject() == "" {
		return "", ErrMissingSubject
	}
	return token.Subject(), nil
}
