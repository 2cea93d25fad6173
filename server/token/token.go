// Package token issues and validates the JWT bearer tokens the eval server
// uses to authenticate operator accounts against its admin-only endpoints.
package token

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dekarrin/rpal/server/dao"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer = "rpalserver"
	ttl    = time.Hour
)

// claims is the JWT payload the eval server issues. Embedding
// jwt.RegisteredClaims gets iss/exp/sub validation for free from the
// jwt/v5 parser; Role rides alongside as a private claim so Validate can
// catch a token minted for a role the account no longer holds (an admin
// demoted mid-session shouldn't keep admin access until the token expires).
type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Generate issues a new signed bearer token for u, valid for one hour. The
// signing key is derived from secret salted with the user's password hash
// and last-logout time (see signingKey), so changing the password or
// logging out invalidates every token issued before that point without
// needing a revocation list.
func Generate(secret []byte, u dao.User) (string, error) {
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: u.Role.String(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, c)
	return tok.SignedString(signingKey(secret, u))
}

// Get extracts the bearer token from a request's Authorization header.
func Get(req *http.Request) (string, error) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(req.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tok) == "" {
		return "", fmt.Errorf("authorization header missing or not in Bearer format")
	}
	return strings.TrimSpace(tok), nil
}

// Validate parses and verifies tok, looks up the account it names in db,
// and returns that account. It fails closed: an expired token, a bad
// signature, an unknown subject, or a subject whose current role no longer
// matches the one the token was minted for are all reported as errors.
func Validate(ctx context.Context, tok string, secret []byte, db dao.UserRepository) (dao.User, error) {
	var resolved dao.User

	parsed, err := jwt.ParseWithClaims(tok, &claims{}, func(t *jwt.Token) (interface{}, error) {
		c, ok := t.Claims.(*claims)
		if !ok {
			return nil, fmt.Errorf("unexpected claims type")
		}

		id, err := uuid.Parse(c.Subject)
		if err != nil {
			return nil, fmt.Errorf("cannot parse subject UUID: %w", err)
		}

		resolved, err = db.GetByID(ctx, id)
		if err != nil {
			if err == dao.ErrNotFound {
				return nil, fmt.Errorf("subject does not exist")
			}
			return nil, fmt.Errorf("subject could not be validated")
		}

		return signingKey(secret, resolved), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(issuer), jwt.WithLeeway(time.Minute))

	if err != nil {
		return dao.User{}, err
	}

	tokClaims := parsed.Claims.(*claims)
	if tokClaims.Role != resolved.Role.String() {
		return dao.User{}, fmt.Errorf("token role %q no longer matches account role %q", tokClaims.Role, resolved.Role)
	}

	return resolved, nil
}

// signingKey derives the HMAC key for u from secret. Appending the user's
// current password hash and last-logout timestamp means any token signed
// under a prior value of either fails verification here, which is what
// makes logout and password changes invalidate outstanding tokens.
func signingKey(secret []byte, u dao.User) []byte {
	key := make([]byte, 0, len(secret)+len(u.Password)+20)
	key = append(key, secret...)
	key = append(key, u.Password...)
	key = append(key, fmt.Sprintf("%d", u.LastLogoutTime.Unix())...)
	return key
}
