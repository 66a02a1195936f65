package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const defaultMaxBody = 64 << 10

var (
	errScoreNotNumber = fmt.Errorf("%w: score must be a number", ErrBadRequest)
	errNameNotString  = fmt.Errorf("%w: name must be a string", ErrBadRequest)
	errNameMissing    = fmt.Errorf("%w: name is required", ErrBadRequest)
	errBodyTooLarge   = fmt.Errorf("%w: request body too large", ErrBadRequest)
)

// scoreRequest keeps fields raw so their JSON types can be checked: a quoted
// number, null or boolean is not a score.
type scoreRequest struct {
	Name  json.RawMessage `json:"name"`
	Score json.RawMessage `json:"score"`
}

// decodeBody reads a single JSON object from r, capped at limit bytes.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return fmt.Errorf("%w: invalid JSON body", ErrBadRequest)
	}
	return nil
}

// parseScore accepts only a JSON number literal.
func parseScore(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, errScoreNotNumber
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, errScoreNotNumber
	}
	var score float64
	if err := json.Unmarshal(raw, &score); err != nil {
		return 0, errScoreNotNumber
	}
	return score, nil
}

// parseName accepts only a JSON string; emptiness is checked by the service.
func parseName(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errNameMissing
	}
	if raw[0] != '"' {
		return "", errNameNotString
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return "", errNameNotString
	}
	return name, nil
}
