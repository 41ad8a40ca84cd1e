package pagination

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// Pagination is the cursor block of a page envelope.
type Pagination struct {
	Count       int
	PerPage     int
	CurrentPage int
	HasMore     bool

	// NextPage is nil when the server sent no usable cursor.
	NextPage *int
}

// Envelope is one decoded page.
type Envelope struct {
	// Data always holds the page records; a single-object payload becomes
	// a one-element slice.
	Data []json.RawMessage

	// Pagination is nil for non-paginated responses.
	Pagination *Pagination

	// RateLimit is the raw rate_limit block, if any.
	RateLimit json.RawMessage
}

// Next returns the page to request after this one, or false when the
// stream ends here. Pages are 1-based, so a cursor below 1 ends it too.
func (e *Envelope) Next() (int, bool) {
	if e.Pagination == nil || !e.Pagination.HasMore || e.Pagination.NextPage == nil || *e.Pagination.NextPage < 1 {
		return 0, false
	}
	return *e.Pagination.NextPage, true
}

// DecodeError reports a response body that is not a valid page envelope.
type DecodeError struct {
	Resource string
	Page     int
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s page %d: %v", e.Resource, e.Page, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type rawEnvelope struct {
	Data       json.RawMessage `json:"data"`
	Pagination *rawPagination  `json:"pagination"`
	RateLimit  json.RawMessage `json:"rate_limit"`
}

type rawPagination struct {
	Count       int             `json:"count"`
	PerPage     int             `json:"per_page"`
	CurrentPage int             `json:"current_page"`
	HasMore     bool            `json:"has_more"`
	NextPage    json.RawMessage `json:"next_page"`
}

// Decode parses a page body. Decoding failures are *DecodeError.
func Decode(resource string, page int, body []byte) (*Envelope, error) {
	var raw rawEnvelope
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return nil, &DecodeError{Resource: resource, Page: page, Err: err}
	}

	data, err := decodeData(raw.Data)
	if err != nil {
		return nil, &DecodeError{Resource: resource, Page: page, Err: err}
	}

	env := &Envelope{Data: data}
	if len(raw.RateLimit) > 0 && !isNull(raw.RateLimit) {
		env.RateLimit = raw.RateLimit
	}
	if raw.Pagination != nil {
		next, err := parseNextPage(raw.Pagination.NextPage)
		if err != nil {
			return nil, &DecodeError{Resource: resource, Page: page, Err: err}
		}
		env.Pagination = &Pagination{
			Count:       raw.Pagination.Count,
			PerPage:     raw.Pagination.PerPage,
			CurrentPage: raw.Pagination.CurrentPage,
			HasMore:     raw.Pagination.HasMore,
			NextPage:    next,
		}
	}
	return env, nil
}

func decodeData(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || isNull(trimmed) {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var records []json.RawMessage
		if err := sonic.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("data array: %w", err)
		}
		return records, nil
	case '{':
		return []json.RawMessage{trimmed}, nil
	default:
		return nil, fmt.Errorf("data must be an array or an object")
	}
}

// parseNextPage accepts a number, a numeric string or a URL carrying page=N.
func parseNextPage(raw json.RawMessage) (*int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || isNull(trimmed) || bytes.Equal(trimmed, []byte("false")) {
		return nil, nil
	}

	if trimmed[0] != '"' {
		n, err := strconv.Atoi(string(trimmed))
		if err != nil {
			return nil, fmt.Errorf("next_page %s is not a page number", trimmed)
		}
		return &n, nil
	}

	var s string
	if err := sonic.Unmarshal(trimmed, &s); err != nil {
		return nil, fmt.Errorf("next_page: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("next_page %q: %w", s, err)
	}
	n, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil {
		return nil, fmt.Errorf("next_page %q carries no page number", s)
	}
	return &n, nil
}

func isNull(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}
