// Package server exposes an RPAL interpreter as an HTTP service: a public,
// stateless eval endpoint plus an admin-only login/history pair, structured
// the way the teacher's own game server is structured.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dekarrin/rpal"
	"github.com/dekarrin/rpal/server/accounts"
	"github.com/dekarrin/rpal/server/dao"
	"github.com/dekarrin/rpal/server/middle"
	"github.com/dekarrin/rpal/server/result"
	"github.com/dekarrin/rpal/server/serr"
	"github.com/dekarrin/rpal/server/token"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// note that these are *not* the dao models; those are distinct and closer to
// the DB format they are in. Rather these are the models that are received
// from and sent to the client.

type EvalRequest struct {
	Source string `json:"source"`
}

type EvalResponse struct {
	Result       string `json:"result"`
	AST          string `json:"ast,omitempty"`
	Standardized string `json:"standardized,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type HistoryEntry struct {
	RequestID string `json:"request_id"`
	Source    string `json:"source"`
	Result    string `json:"result"`
	Error     string `json:"error,omitempty"`
	Created   string `json:"created"`
}

// API holds parameters needed to run the eval server's endpoints and the
// service layer each delegates to.
type API struct {
	// Accounts performs account actions against the DB store.
	Accounts accounts.Service

	// Secret is the JWT signing secret. It should be set to something
	// persistent and private for any deployment meant to survive restarts.
	Secret []byte

	// UnauthDelay is applied before responding to any request that fails
	// auth, to slow down credential-guessing.
	UnauthDelay time.Duration

	// MaxSteps overrides the CSE machine's default step budget for eval
	// requests handled by this API; zero means use the interpreter default.
	MaxSteps int
}

// Router builds the chi router for the eval server's v1 API.
func (api API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middle.DontPanic())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/eval", api.Endpoint(api.epEval))
		r.Post("/login", api.Endpoint(api.epLogin))

		r.Group(func(r chi.Router) {
			r.Use(middle.RequireAuth(api.Accounts.DB.Users(), api.Secret, api.UnauthDelay, dao.User{}))
			r.Get("/history", api.Endpoint(api.epHistory))
		})
	})

	return r
}

type endpointFunc func(req *http.Request) result.Result

// Endpoint adapts an endpointFunc into an http.HandlerFunc, assigning each
// request a UUID surfaced in the X-Request-Id response header and logging
// the eventual result.
func (api API) Endpoint(ep endpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		reqID := uuid.New()
		w.Header().Set("X-Request-Id", reqID.String())

		ctx := context.WithValue(req.Context(), ctxKeyRequestID, reqID)
		req = req.WithContext(ctx)

		r := ep(req)
		r.WriteResponse(w)
		r.Log(req)
	}
}

type ctxKey int

const ctxKeyRequestID ctxKey = iota

func requestID(req *http.Request) uuid.UUID {
	id, _ := req.Context().Value(ctxKeyRequestID).(uuid.UUID)
	return id
}

func (api API) epEval(req *http.Request) result.Result {
	body := EvalRequest{}
	if req.Header.Get("Content-Type") == "application/json" {
		if err := parseJSON(req, &body); err != nil {
			return result.BadRequest(err.Error(), err.Error())
		}
	} else {
		src, err := io.ReadAll(req.Body)
		if err != nil {
			return result.BadRequest("could not read request body", err.Error())
		}
		body.Source = string(src)
	}

	in := rpal.Interpreter{MaxSteps: api.MaxSteps}

	resp := EvalResponse{}
	if req.URL.Query().Get("ast") == "1" {
		ast, err := in.Parse(body.Source)
		if err != nil {
			return result.BadRequest(err.Error(), "parse error: %s", err.Error())
		}
		resp.AST = ast.String()
	}
	if req.URL.Query().Get("st") == "1" {
		std, err := in.Standardize(body.Source)
		if err != nil {
			return result.BadRequest(err.Error(), "parse error: %s", err.Error())
		}
		resp.Standardized = std.String()
	}

	out, err := in.EvalString(body.Source)
	if err != nil {
		return result.BadRequest(err.Error(), "eval error: %s", err.Error())
	}
	resp.Result = out

	api.Accounts.DB.History().Create(req.Context(), dao.EvalRecord{
		RequestID: requestID(req),
		Source:    body.Source,
		Result:    out,
	})

	return result.OK(resp, "evaluated source of length %d", len(body.Source))
}

func (api API) epLogin(req *http.Request) result.Result {
	loginData := LoginRequest{}
	if err := parseJSON(req, &loginData); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	if loginData.Username == "" {
		return result.BadRequest("username: property is empty or missing from request", "empty username")
	}
	if loginData.Password == "" {
		return result.BadRequest("password: property is empty or missing from request", "empty password")
	}

	user, err := api.Accounts.Login(req.Context(), loginData.Username, loginData.Password)
	if err != nil {
		if err == serr.ErrBadCredentials {
			return result.Unauthorized(serr.ErrBadCredentials.Error(), "user '%s': %s", loginData.Username, err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	tok, err := token.Generate(api.Secret, user)
	if err != nil {
		return result.InternalServerError("could not generate JWT: " + err.Error())
	}

	resp := LoginResponse{Token: tok, UserID: user.ID.String()}
	return result.Created(resp, "user '%s' successfully logged in", user.Username)
}

func (api API) epHistory(req *http.Request) result.Result {
	user, _ := req.Context().Value(middle.AuthUser).(dao.User)
	if user.Role != dao.Admin {
		return result.Err(http.StatusForbidden, serr.ErrPermissions.Error(), "user '%s' is not an admin", user.Username)
	}

	recs, err := api.Accounts.DB.History().GetAll(req.Context(), nil, nil)
	if err != nil {
		return result.InternalServerError("could not retrieve history: " + err.Error())
	}

	entries := make([]HistoryEntry, len(recs))
	for i, rec := range recs {
		entries[i] = HistoryEntry{
			RequestID: rec.RequestID.String(),
			Source:    rec.Source,
			Result:    rec.Result,
			Error:     rec.Err,
			Created:   rec.Created.Format(time.RFC3339),
		}
	}

	return result.OK(entries, "retrieved %d history entries", len(entries))
}

// v must be a pointer to a type.
func parseJSON(req *http.Request, v interface{}) error {
	contentType := req.Header.Get("Content-Type")
	if strings.ToLower(contentType) != "application/json" {
		return fmt.Errorf("request content-type is not application/json")
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}

	if err := json.Unmarshal(bodyData, v); err != nil {
		return fmt.Errorf("malformed JSON in request")
	}

	return nil
}
