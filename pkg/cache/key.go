package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// TokenParam is excluded from every key.
const TokenParam = "api_token"

// Key identifies one cached page.
type Key struct {
	// Resource is the API path relative to the base URL (e.g. "teams").
	Resource string

	// Params are the query parameters without page.
	Params url.Values

	// Page is the page number (0 for non-paginated documents).
	Page int
}

// String generates a deterministic cache key string.
// Format: sportmonks:resource:param1=a,b:param2=c:page=N
//
// Example:
//
//	sportmonks:teams:include=country:league_id=301:page=2
func (k Key) String() string {
	parts := []string{"sportmonks"}

	if resource := strings.Trim(k.Resource, "/"); resource != "" {
		parts = append(parts, resource)
	}

	keys := make([]string, 0, len(k.Params))
	for key := range k.Params {
		if key == TokenParam || key == "page" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", key, strings.Join(k.Params[key], ",")))
	}

	if k.Page > 0 {
		parts = append(parts, fmt.Sprintf("page=%d", k.Page))
	}

	return strings.Join(parts, ":")
}
