// Package handlers provides HTTP handlers for the SQL playground API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/nnnkkk7/sql-playground/pkg/config"
	"github.com/nnnkkk7/sql-playground/pkg/query"
	"github.com/nnnkkk7/sql-playground/server/apierror"
	"github.com/nnnkkk7/sql-playground/server/types"
)

// QueryIDHeader carries the ID of the executed statement.
const QueryIDHeader = "X-Query-Id"

// QueryHandler handles query execution HTTP requests.
type QueryHandler struct {
	runner query.Runner
	errw   errorWriter
}

// NewQueryHandler creates a new query handler. includeDetails attaches driver
// messages to error responses.
func NewQueryHandler(runner query.Runner, log logrus.FieldLogger, includeDetails bool) *QueryHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &QueryHandler{
		runner: runner,
		errw:   errorWriter{log: log, details: includeDetails},
	}
}

// ExecuteQuery handles POST /query.
func (h *QueryHandler) ExecuteQuery(w http.ResponseWriter, r *http.Request) {
	req, apiErr := decodeQueryRequest(w, r)
	if apiErr != nil {
		h.errw.send(w, r, apiErr)
		return
	}

	out, err := h.runner.Execute(r.Context(), req)
	if err != nil {
		h.errw.send(w, r, apierror.FromError(err))
		return
	}

	w.Header().Set(QueryIDHeader, out.QueryID)
	writeJSON(w, http.StatusOK, types.NewQueryResponse(out))
}

func decodeQueryRequest(w http.ResponseWriter, r *http.Request) (query.Request, *apierror.APIError) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var body types.QueryRequest
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return query.Request{}, apierror.FromError(query.ErrSQLTooLong)
		}
		return query.Request{}, apierror.NewInvalidRequestBodyError(err)
	}

	sql, err := query.SQLFromJSON(body.SQL)
	if err != nil {
		return query.Request{}, apierror.FromError(err)
	}

	var params []any
	switch p := body.Parameters.(type) {
	case nil:
	case []any:
		params, err = query.ParametersFromJSON(p)
		if err != nil {
			return query.Request{}, apierror.FromError(err)
		}
	default:
		return query.Request{}, apierror.New(http.StatusBadRequest, apierror.CodeInvalidParameters, "parameters must be an array")
	}

	return query.Request{
		SQL:        sql,
		Parameters: params,
		Timeout:    query.TimeoutFromJSON(body.Timeout),
	}, nil
}
