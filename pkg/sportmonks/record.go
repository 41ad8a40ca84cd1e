// Package sportmonks fetches teams, squads and player statistics from the
// SportMonks football API and flattens them into PlayerRow values.
//
// Payload shapes differ between subscription plans, so records are kept
// as loosely typed maps and read through tolerant accessors.
package sportmonks

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// Record is one decoded API object.
type Record map[string]any

// DecodeRecord decodes a raw record.
func DecodeRecord(raw json.RawMessage) (Record, error) {
	var rec Record
	if err := sonic.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if rec == nil {
		rec = Record{}
	}
	return rec, nil
}

// Pick returns the first present, non-nil value among keys.
func (r Record) Pick(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Int returns the first of keys as an integer, 0 when absent or not numeric.
func (r Record) Int(keys ...string) int64 {
	v, ok := r.Pick(keys...)
	if !ok {
		return 0
	}
	return toInt(v)
}

// Object returns the nested object under key.
func (r Record) Object(key string) (Record, bool) {
	switch v := r[key].(type) {
	case map[string]any:
		return Record(v), true
	case Record:
		return v, true
	default:
		return nil, false
	}
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return int64(n)
	case int:
		return int64(n)
	case int64:
		return n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return int64(f)
		}
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f)
		}
	case bool:
		if n {
			return 1
		}
	}
	return 0
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// SafeName returns the first of name, display_name, fullname and
// common_name, or "Unknown".
func SafeName(r Record) string {
	v, ok := r.Pick("name", "display_name", "fullname", "common_name")
	if !ok {
		return "Unknown"
	}
	return strings.TrimSpace(toString(v))
}

// NormalizePosition finds a player's position across the known payload
// shapes, defaulting to "Unknown".
func NormalizePosition(r Record) string {
	var pos string
	if obj, ok := r.Object("position"); ok {
		pos, _ = obj["name"].(string)
	}
	if pos == "" {
		if v, ok := r.Pick("position_name", "position", "role"); ok {
			switch p := v.(type) {
			case map[string]any:
				pos, _ = p["name"].(string)
			default:
				pos = toString(p)
			}
		}
	}
	if pos == "" {
		if obj, ok := r.Object("detailed_position"); ok {
			pos, _ = obj["name"].(string)
		}
	}

	if pos = strings.TrimSpace(pos); pos == "" {
		return "Unknown"
	}
	return pos
}

// Stats are the per-season counters kept for a player.
type Stats struct {
	Appearances int64
	Minutes     int64
	Goals       int64
	Assists     int64
}

// ExtractBasicStats reads the first statistics entry of a player payload.
// statistics may be a list, an object or an object wrapping a data list.
// Missing values are zero.
func ExtractBasicStats(player Record) Stats {
	var entry Record

	switch stats := player["statistics"].(type) {
	case []any:
		if len(stats) > 0 {
			if first, ok := stats[0].(map[string]any); ok {
				entry = first
			}
		}
	case map[string]any:
		if data, ok := stats["data"].([]any); ok {
			if len(data) > 0 {
				if first, ok := data[0].(map[string]any); ok {
					entry = first
				}
			}
		} else {
			entry = stats
		}
	}

	if entry == nil {
		return Stats{}
	}
	return Stats{
		Appearances: entry.Int("appearances", "matches_played"),
		Minutes:     entry.Int("minutes", "minutes_played"),
		Goals:       entry.Int("goals", "goals_scored"),
		Assists:     entry.Int("assists"),
	}
}
