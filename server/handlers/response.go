package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/nnnkkk7/sql-playground/server/apierror"
)

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorWriter sends error envelopes. Details are only included outside production.
type errorWriter struct {
	log     logrus.FieldLogger
	details bool
}

func (ew errorWriter) send(w http.ResponseWriter, r *http.Request, err *apierror.APIError) {
	entry := ew.log.WithFields(logrus.Fields{
		"code":   err.Code,
		"status": err.Status,
		"path":   r.URL.Path,
	})
	switch {
	case err.Internal():
		// Unexpected errors are logged in full regardless of mode.
		entry.WithError(err.Unwrap()).Error("unexpected error")
	case err.Status >= http.StatusInternalServerError:
		entry.WithField("details", err.Details).Warn("database unavailable")
	case err.Details != "":
		entry.WithField("details", err.Details).Info("statement rejected by database")
	default:
		entry.Debug("request rejected")
	}

	writeJSON(w, err.Status, err.ToResponse(ew.details))
}

// NotFound responds to unmatched routes and methods.
func (ew errorWriter) NotFound(w http.ResponseWriter, r *http.Request) {
	ew.send(w, r, apierror.NewEndpointNotFoundError())
}

// Recoverer turns a panic in a handler into an INTERNAL_ERROR envelope.
func (ew errorWriter) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			ew.log.WithField("stack", string(debug.Stack())).Error("handler panicked")
			ew.send(w, r, apierror.NewInternalError(fmt.Errorf("panic: %v", rec)))
		}()
		next.ServeHTTP(w, r)
	})
}
