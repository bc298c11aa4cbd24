package handlers

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the shared error envelope. Optional fields are only
// present when they help the caller recover.
type errorResponse struct {
	Status            int      `json:"status"`
	Error             string   `json:"error"`
	AvailableServices []string `json:"availableServices,omitempty"`
	Provided          []string `json:"provided,omitempty"`
	Services          []string `json:"services,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, resp errorResponse) {
	writeJSON(w, resp.Status, resp)
}
