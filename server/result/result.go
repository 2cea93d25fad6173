// Package result defines the JSON response envelope that every eval-server
// endpoint returns instead of writing to http.ResponseWriter directly. This
// keeps endpoint handlers pure functions of a request (easy to unit test) and
// gives the access log a single place to read the outcome back from.
package result

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// ErrorResponse is the JSON body written for any Result built with Err or
// one of its shorthands.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// defaultedMsg applies internalMsg's fallback-plus-Sprintf-args convention
// shared by every constructor below: callers may omit the internal message
// entirely (def is used), or pass a format string and its args.
func defaultedMsg(def string, internalMsg []interface{}) string {
	if len(internalMsg) == 0 {
		return def
	}
	format, ok := internalMsg[0].(string)
	if !ok {
		return def
	}
	return fmt.Sprintf(format, internalMsg[1:]...)
}

// OK builds a 200 response carrying respObj as its JSON body.
func OK(respObj interface{}, internalMsg ...interface{}) Result {
	return Response(http.StatusOK, respObj, defaultedMsg("OK", internalMsg))
}

// Created builds a 201 response carrying respObj as its JSON body, for a
// successful login or account creation.
func Created(respObj interface{}, internalMsg ...interface{}) Result {
	return Response(http.StatusCreated, respObj, defaultedMsg("created", internalMsg))
}

// BadRequest builds a 400 response, used for malformed eval/login requests
// and for source that fails to parse or evaluate.
func BadRequest(userMsg string, internalMsg ...interface{}) Result {
	return Err(http.StatusBadRequest, userMsg, defaultedMsg("bad request", internalMsg))
}

// Unauthorized builds a 401 response with the WWW-Authenticate header the
// eval server's bearer-token scheme expects clients to honor.
func Unauthorized(userMsg string, internalMsg ...interface{}) Result {
	if userMsg == "" {
		userMsg = "You are not authorized to do that"
	}
	r := Err(http.StatusUnauthorized, userMsg, defaultedMsg("unauthorized", internalMsg))
	return r.WithHeader("WWW-Authenticate", `Bearer realm="rpal eval server"`)
}

// InternalServerError builds a 500 response. The user-facing message is
// always generic; internalMsg (logged, never sent to the client) should
// carry whatever detail the caller has.
func InternalServerError(internalMsg ...interface{}) Result {
	return Err(http.StatusInternalServerError, "An internal server error occurred", defaultedMsg("internal server error", internalMsg))
}

// Response builds a successful (non-error) JSON result.
func Response(status int, respObj interface{}, internalMsg string, v ...interface{}) Result {
	return Result{
		IsJSON:      true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp:        respObj,
	}
}

// Err builds a JSON error result whose body is an ErrorResponse carrying
// userMsg; internalMsg is recorded for the access log only.
func Err(status int, userMsg, internalMsg string, v ...interface{}) Result {
	return Result{
		IsJSON:      true,
		IsErr:       true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp: ErrorResponse{
			Error:  userMsg,
			Status: status,
		},
	}
}

// TextErr builds an error result whose body is plain text rather than a
// JSON ErrorResponse. The panic-recovery middleware in server/middle uses it
// for its 500 response; the eval endpoint's errors are JSON whatever the
// request's Content-Type.
func TextErr(status int, userMsg, internalMsg string, v ...interface{}) Result {
	return Result{
		IsErr:       true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp:        userMsg,
	}
}

// Result is the outcome of an endpoint call: an HTTP status, a body ready to
// be marshaled (or already plain text), and an internal message destined for
// the access log rather than the client.
type Result struct {
	Status      int
	IsErr       bool
	IsJSON      bool
	InternalMsg string

	resp interface{}
	hdrs [][2]string

	// set the first time WriteResponse or PrepareMarshaledResponse runs.
	respJSONBytes []byte
}

// WithHeader returns a copy of r with the given header queued to be set
// when it is written.
func (r Result) WithHeader(name, val string) Result {
	cp := r
	cp.hdrs = append([][2]string{}, r.hdrs...)
	cp.hdrs = append(cp.hdrs, [2]string{name, val})
	return cp
}

// PrepareMarshaledResponse marshals r's body to JSON ahead of time, if it
// hasn't been already. Calling it more than once after a successful
// marshal is a no-op.
func (r *Result) PrepareMarshaledResponse() error {
	if r.respJSONBytes != nil || !r.IsJSON {
		return nil
	}

	marshaled, err := json.Marshal(r.resp)
	if err != nil {
		return err
	}
	r.respJSONBytes = marshaled
	return nil
}

// WriteResponse writes r's status, headers, and body to w. r must have been
// built through one of this package's constructors; an unpopulated Result
// (zero Status) is a programmer error and panics.
func (r Result) WriteResponse(w http.ResponseWriter) {
	if r.Status == 0 {
		panic("result not populated")
	}

	if err := r.PrepareMarshaledResponse(); err != nil {
		panic(fmt.Sprintf("could not marshal response: %s", err.Error()))
	}

	var body []byte
	if r.IsJSON {
		w.Header().Set("Content-Type", "application/json")
		body = r.respJSONBytes
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		body = []byte(fmt.Sprintf("%v", r.resp))
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")

	for _, h := range r.hdrs {
		w.Header().Set(h[0], h[1])
	}

	w.WriteHeader(r.Status)
	w.Write(body)
}

// Log writes a single access-log line for the request/response pair,
// letting endpoint middleware log after WriteResponse without re-deriving
// the status or message from scratch.
func (r Result) Log(req *http.Request) {
	level := "INFO "
	if r.IsErr {
		level = "ERROR"
	}

	// the ephemeral client port isn't interesting; drop it
	remoteIP, _, found := strings.Cut(req.RemoteAddr, ":")
	if !found {
		remoteIP = req.RemoteAddr
	}

	log.Printf("%s %s %s %s: HTTP-%d %s", level, remoteIP, req.Method, req.URL.Path, r.Status, r.InternalMsg)
}
