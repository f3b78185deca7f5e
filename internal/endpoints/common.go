// Package endpoints implements the HTTP routes and matching CLI
// subcommands for the tool surface, one api.Endpoint per operation: a
// writeJSON/writeError pair, a Route/RequiresInit/Command triple per type,
// and query-string parsing done by hand rather than through a framework.
package endpoints

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/jackzampolin/regcore/internal/errs"
)

func isValidation(err error) bool { return errs.Is(err, errs.ErrValidation) }
func isNotFound(err error) bool   { return errs.Is(err, errs.ErrNotFound) }

// ErrorResponse matches internal/api.Client's expected error shape.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps a component error to an HTTP status the same way every
// handler in this package classifies failures, per the sentinel-error
// taxonomy in internal/errs.
func statusFor(err error) int {
	switch {
	case isValidation(err):
		return http.StatusBadRequest
	case isNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func queryCSV(r *http.Request, key string) []string {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func queryBool(r *http.Request, key string) bool {
	v := strings.ToLower(r.URL.Query().Get(key))
	return v == "1" || v == "true" || v == "yes"
}
