package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"ollamaproxy/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// upstreamStatuser is implemented by errors that carry the upstream's own
// HTTP status alongside the status the gateway answers with.
type upstreamStatuser interface {
	UpstreamStatus() int
}

// errorStatus maps err to the status the client receives.
func errorStatus(err error) int {
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// writeError writes err as a JSON error payload with its mapped status.
func writeError(w http.ResponseWriter, err error) int {
	status := errorStatus(err)
	resp := types.ErrorResponse{Error: err.Error(), Code: status}
	var us upstreamStatuser
	if errors.As(err, &us) {
		resp.UpstreamStatus = us.UpstreamStatus()
	}
	writeJSON(w, status, resp)
	return status
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
