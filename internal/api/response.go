package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/erazemk/armory/internal/backend"
	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/validate"
)

// envelope is the shape of every API response.
type envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonOK writes a successful envelope around data.
func jsonOK(w http.ResponseWriter, data any) {
	jsonResponse(w, http.StatusOK, envelope{Success: true, Data: data})
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, envelope{Error: message})
}

// jsonFailure maps an operation error onto a status code and message.
func jsonFailure(w http.ResponseWriter, err error) {
	var (
		be   *backend.Error
		te   *model.TransitionError
		errs validate.Errors
	)
	switch {
	case errors.As(err, &errs):
		jsonResponse(w, http.StatusBadRequest, envelope{Error: "invalid input", Fields: errs})
	case errors.As(err, &te):
		jsonError(w, http.StatusConflict, te.Error())
	case errors.As(err, &be):
		status := http.StatusBadGateway
		if be.Kind == backend.KindHTTP && be.Status >= 400 && be.Status < 500 {
			status = be.Status
		}
		jsonError(w, status, be.Error())
	default:
		slog.Error("request failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(target)
}
