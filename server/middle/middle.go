// Package middle contains the HTTP middleware chain the eval server wraps
// its endpoints in: bearer-token authentication for the admin-only routes
// and panic recovery for all of them.
package middle

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dekarrin/rpal/server/dao"
	"github.com/dekarrin/rpal/server/result"
	"github.com/dekarrin/rpal/server/token"
)

// Middleware wraps a handler with additional behavior.
type Middleware func(next http.Handler) http.Handler

// AuthKey indexes the values an AuthHandler stashes in a request's context.
type AuthKey int64

const (
	// AuthLoggedIn reports whether the request carried a valid token.
	AuthLoggedIn AuthKey = iota
	// AuthUser holds the dao.User the token resolved to, or the
	// AuthHandler's defaultUser if none did.
	AuthUser
)

// AuthHandler authenticates a request by its bearer token before passing it
// on to next. Build one with RequireAuth or OptionalAuth rather than
// constructing it directly.
type AuthHandler struct {
	db            dao.UserRepository
	secret        []byte
	required      bool
	defaultUser   dao.User
	unauthedDelay time.Duration
	next          http.Handler
}

func (ah *AuthHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	user, loggedIn, authErr := ah.authenticate(req)

	if authErr != nil && ah.required {
		ah.rejectUnauthorized(w, req, authErr)
		return
	}

	ctx := context.WithValue(req.Context(), AuthLoggedIn, loggedIn)
	ctx = context.WithValue(ctx, AuthUser, user)
	ah.next.ServeHTTP(w, req.WithContext(ctx))
}

// authenticate extracts and validates req's bearer token. A non-nil error
// means the request did not resolve to a user; the caller decides whether
// that is fatal based on whether auth is required.
func (ah *AuthHandler) authenticate(req *http.Request) (user dao.User, loggedIn bool, err error) {
	user = ah.defaultUser

	tok, err := token.Get(req)
	if err != nil {
		return user, false, err
	}

	resolved, err := token.Validate(req.Context(), tok, ah.secret, ah.db)
	if err != nil {
		return user, false, err
	}

	return resolved, true, nil
}

// rejectUnauthorized writes and logs a 401, pausing for the handler's
// configured delay first to slow down credential-guessing.
func (ah *AuthHandler) rejectUnauthorized(w http.ResponseWriter, req *http.Request, cause error) {
	r := result.Unauthorized("", cause.Error())
	time.Sleep(ah.unauthedDelay)
	r.WriteResponse(w)
	r.Log(req)
}

// RequireAuth builds a Middleware that rejects any request without a valid
// bearer token for a user in db with a 401, before next ever runs.
func RequireAuth(db dao.UserRepository, secret []byte, unauthDelay time.Duration, defaultUser dao.User) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			db:            db,
			secret:        secret,
			unauthedDelay: unauthDelay,
			defaultUser:   defaultUser,
			required:      true,
			next:          next,
		}
	}
}

// OptionalAuth builds a Middleware that resolves a bearer token if one is
// present and valid, but passes the request through to next either way;
// handlers check middle.AuthLoggedIn themselves to tell the two cases apart.
func OptionalAuth(db dao.UserRepository, secret []byte, unauthDelay time.Duration, defaultUser dao.User) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			db:            db,
			secret:        secret,
			unauthedDelay: unauthDelay,
			defaultUser:   defaultUser,
			required:      false,
			next:          next,
		}
	}
}

// DontPanic recovers from a panic anywhere further down the chain, turning
// it into a logged HTTP-500 instead of a crashed connection.
func DontPanic() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer recoverAsInternalError(w, req)
			next.ServeHTTP(w, req)
		})
	}
}

func recoverAsInternalError(w http.ResponseWriter, req *http.Request) {
	panicVal := recover()
	if panicVal == nil {
		return
	}

	r := result.TextErr(
		http.StatusInternalServerError,
		"An internal server error occurred",
		fmt.Sprintf("panic: %v\nSTACK TRACE: %s", panicVal, string(debug.Stack())),
	)
	r.WriteResponse(w)
	r.Log(req)
}
