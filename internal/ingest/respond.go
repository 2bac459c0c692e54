package ingest

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/couchcryptid/hazard-report-ingest/internal/domain"
)

type listResponse struct {
	Count   int             `json:"count"`
	Reports []domain.Report `json:"reports"`
}

// maxBodyBytes caps inbound webhook bodies; gateway payloads are small
// form-encoded fields, never megabytes.
const maxBodyBytes = 1 << 20

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

func writeTwiML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(status)
	io.WriteString(w, body) //nolint:errcheck // best-effort acknowledgement
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort listing response
}
