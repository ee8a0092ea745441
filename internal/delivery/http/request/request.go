package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// MaxBodyBytes caps request bodies; review content and ten image URLs fit well below it
const MaxBodyBytes = 1 << 20

// ErrTrailingData is returned when a body holds more than one JSON value
var ErrTrailingData = errors.New("request body must contain a single JSON object")

// DecodeJSON decodes a single JSON value from the request body into v
func DecodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	if dec.More() {
		return ErrTrailingData
	}
	return nil
}

// UUIDParam parses a UUID path parameter
func UUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	param := chi.URLParam(r, key)
	if param == "" {
		return uuid.Nil, fmt.Errorf("missing parameter: %s", key)
	}

	id, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return id, nil
}

// IntQuery returns an integer query parameter, or fallback when absent or malformed
func IntQuery(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// Page holds limit/offset pagination
type Page struct {
	Limit  int
	Offset int
}

// PageQuery reads limit and offset. A missing, non-positive or oversized limit
// becomes defaultLimit; a negative offset becomes 0.
func PageQuery(r *http.Request, defaultLimit, maxLimit int) Page {
	p := Page{
		Limit:  IntQuery(r, "limit", defaultLimit),
		Offset: IntQuery(r, "offset", 0),
	}
	if p.Limit <= 0 || p.Limit > maxLimit {
		p.Limit = defaultLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
