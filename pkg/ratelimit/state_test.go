package ratelimit

import (
	"testing"
	"time"
)

func TestParseInfo(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Info
		wantErr bool
	}{
		{
			name: "full block",
			raw:  `{"resets_in_seconds":3423,"remaining":2987,"requested_entity":"Team"}`,
			want: Info{Remaining: 2987, ResetsInSeconds: 3423, RequestedEntity: "Team"},
		},
		{
			name: "spent",
			raw:  `{"resets_in_seconds":12,"remaining":0,"requested_entity":"Player"}`,
			want: Info{Remaining: 0, ResetsInSeconds: 12, RequestedEntity: "Player"},
		},
		{name: "not json", raw: `nope`, wantErr: true},
		{name: "negative", raw: `{"remaining":-1,"resets_in_seconds":10}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInfo([]byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseInfo() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && *got != tt.want {
				t.Errorf("ParseInfo() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestRateLimitState_Decisions(t *testing.T) {
	future := time.Now().Add(time.Minute)
	past := time.Now().Add(-time.Minute)

	tests := []struct {
		name         string
		state        RateLimitState
		wantBlock    bool
		wantThrottle bool
	}{
		{"healthy", RateLimitState{Remaining: 2000, ResetAt: future}, false, false},
		{"warning", RateLimitState{Remaining: 10, ResetAt: future}, false, true},
		{"spent", RateLimitState{Remaining: 0, ResetAt: future}, true, false},
		{"spent but reset passed", RateLimitState{Remaining: 0, ResetAt: past}, false, false},
		{"low but reset passed", RateLimitState{Remaining: 10, ResetAt: past}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.NeedsCriticalBlock(); got != tt.wantBlock {
				t.Errorf("NeedsCriticalBlock() = %v, want %v", got, tt.wantBlock)
			}
			if got := tt.state.NeedsThrottling(); got != tt.wantThrottle {
				t.Errorf("NeedsThrottling() = %v, want %v", got, tt.wantThrottle)
			}
		})
	}
}

func TestRateLimitState_TimeUntilReset(t *testing.T) {
	s := RateLimitState{ResetAt: time.Now().Add(-time.Second)}
	if d := s.TimeUntilReset(); d != 0 {
		t.Errorf("TimeUntilReset() = %v, want 0", d)
	}

	s.ResetAt = time.Now().Add(30 * time.Second)
	if d := s.TimeUntilReset(); d <= 25*time.Second || d > 30*time.Second {
		t.Errorf("TimeUntilReset() = %v, want about 30s", d)
	}
}

func TestRateLimitState_UpdateHealth(t *testing.T) {
	s := RateLimitState{Remaining: ThresholdHealthy}
	s.UpdateHealth()
	if !s.IsHealthy {
		t.Error("Expected healthy at threshold")
	}

	s.Remaining = ThresholdHealthy - 1
	s.UpdateHealth()
	if s.IsHealthy {
		t.Error("Expected unhealthy below threshold")
	}
}

func TestResourceKey(t *testing.T) {
	tests := map[string]string{
		"teams":        "teams",
		"/players/42/": "players",
		"players/42":   "players",
		"":             "",
	}
	for in, want := range tests {
		if got := ResourceKey(in); got != want {
			t.Errorf("ResourceKey(%q) = %q, want %q", in, got, want)
		}
	}
}
