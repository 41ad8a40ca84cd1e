package pagination

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_DataShapes(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		count int
	}{
		{"array", `{"data":[{"id":1},{"id":2}]}`, 2},
		{"object", `{"data":{"id":7,"name":"Lyon"}}`, 1},
		{"empty array", `{"data":[]}`, 0},
		{"null", `{"data":null}`, 0},
		{"missing", `{}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Decode("teams", 1, []byte(tt.body))
			require.NoError(t, err)
			assert.Len(t, env.Data, tt.count)
			assert.Nil(t, env.Pagination)
			_, more := env.Next()
			assert.False(t, more)
		})
	}
}

func TestDecode_NextPageForms(t *testing.T) {
	tests := []struct {
		name     string
		nextPage string
		hasMore  bool
		want     int
		wantMore bool
	}{
		{"number", `3`, true, 3, true},
		{"numeric string", `"4"`, true, 4, true},
		{"url", `"https://api.sportmonks.com/v3/football/teams?include=country&page=5"`, true, 5, true},
		{"null", `null`, true, 0, false},
		{"has_more false", `2`, false, 0, false},
		{"empty string", `""`, true, 0, false},
		{"zero", `0`, true, 0, false},
		{"zero string", `"0"`, true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"data":[{"id":1}],"pagination":{"count":1,"per_page":50,"current_page":2,"has_more":` +
				map[bool]string{true: "true", false: "false"}[tt.hasMore] +
				`,"next_page":` + tt.nextPage + `}}`

			env, err := Decode("teams", 2, []byte(body))
			require.NoError(t, err)
			require.NotNil(t, env.Pagination)
			assert.Equal(t, 2, env.Pagination.CurrentPage)
			assert.Equal(t, 50, env.Pagination.PerPage)

			next, more := env.Next()
			assert.Equal(t, tt.wantMore, more)
			if tt.wantMore {
				assert.Equal(t, tt.want, next)
			}
		})
	}
}

func TestDecode_RateLimitKeptRaw(t *testing.T) {
	env, err := Decode("players", 1, []byte(`{"data":[],"rate_limit":{"remaining":2999,"resets_in_seconds":3600,"requested_entity":"Player"}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"remaining":2999,"resets_in_seconds":3600,"requested_entity":"Player"}`, string(env.RateLimit))
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"truncated", `{"data":[{"id":1}`},
		{"scalar data", `{"data":42}`},
		{"bad next_page", `{"data":[],"pagination":{"has_more":true,"next_page":"https://x/teams?cursor=abc"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode("teams", 3, []byte(tt.body))
			require.Error(t, err)

			var decErr *DecodeError
			require.True(t, errors.As(err, &decErr))
			assert.Equal(t, "teams", decErr.Resource)
			assert.Equal(t, 3, decErr.Page)
		})
	}
}
