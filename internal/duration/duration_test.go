package duration

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
		want    time.Duration
	}{
		{"1d", false, 24 * time.Hour},
		{"1w", false, 7 * 24 * time.Hour},
		{"30d", false, 30 * 24 * time.Hour},
		{"1mo", false, 30 * 24 * time.Hour},
		{"1h", false, time.Hour},
		{"2y", false, 2 * 365 * 24 * time.Hour},
		{"invalid", true, 0},
		{"10parsecs", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
