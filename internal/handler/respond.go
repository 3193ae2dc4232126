package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/savor-pos/api/internal/fault"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: encode response: %v", err)
	}
}

type errorBody struct {
	Kind    fault.Kind `json:"kind"`
	Message string     `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// writeError writes the error envelope used by every endpoint.
func writeError(w http.ResponseWriter, status int, kind fault.Kind, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Kind: kind, Message: message}})
}

// statusForKind maps a fault kind to its HTTP status.
func statusForKind(kind fault.Kind) int {
	switch kind {
	case fault.Validation:
		return http.StatusBadRequest
	case fault.NotFound:
		return http.StatusNotFound
	case fault.InvalidState, fault.Conflict:
		return http.StatusConflict
	case fault.InsufficientPayment:
		return http.StatusUnprocessableEntity
	case fault.Upstream:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeFault translates a service error into the error envelope. Errors
// without a kind are internal: logged in full, opaque to the client.
func writeFault(w http.ResponseWriter, op string, err error) {
	kind := fault.KindOf(err)
	if kind == "" {
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, errorEnvelope{
			Error: errorBody{Kind: "INTERNAL", Message: "internal server error"},
		})
		return
	}
	writeError(w, statusForKind(kind), kind, fault.MessageOf(err))
}
