package format

import (
	"testing"
)

func TestStripAnsi(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no ansi", "hello", "hello"},
		{"single color", "\x1b[31mred\x1b[0m", "red"},
		{"multiple colors", "\x1b[31mred\x1b[0m \x1b[32mgreen\x1b[0m", "red green"},
		{"bold", "\x1b[1mbold\x1b[0m", "bold"},
		{"complex", "\x1b[1;31;40mbold red on black\x1b[0m", "bold red on black"},
		{"hyperlink", "\x1b]8;;https://example.com\x1b\\link\x1b]8;;\x1b\\", "link"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripAnsi(tt.input)
			if got != tt.expected {
				t.Errorf("StripAnsi(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"empty", "", 0},
		{"ascii", "hello", 5},
		{"with ansi", "\x1b[31mred\x1b[0m", 3},
		{"hyperlink counts only text", "\x1b]8;;https://example.com\x1b\\link\x1b]8;;\x1b\\", 4},
		{"wide chars", "日本語", 6},
		{"mixed", "Hello, 世界!", 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DisplayWidth(tt.input)
			if got != tt.expected {
				t.Errorf("DisplayWidth(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		target   int
		expected string
	}{
		{"pad needed", "ab", 5, "ab   "},
		{"already at width", "hello", 5, "hello"},
		{"wider than target", "hello world", 5, "hello world"},
		{"colored input pads by visible width", "\x1b[31mab\x1b[0m", 4, "\x1b[31mab\x1b[0m  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PadRight(tt.input, tt.target)
			if got != tt.expected {
				t.Errorf("PadRight(%q, %d) = %q, want %q", tt.input, tt.target, got, tt.expected)
			}
		})
	}
}

func TestHyperlinkWithoutTerminal(t *testing.T) {
	// Test runs without a TTY on stdout, so the text passes through plain.
	got := Hyperlink("repo", "https://example.com/repo")
	if got != "repo" {
		t.Errorf("Hyperlink() = %q, want plain text without a terminal", got)
	}

	if got := Hyperlink("text", ""); got != "text" {
		t.Errorf("Hyperlink() with empty URL = %q, want %q", got, "text")
	}
}
