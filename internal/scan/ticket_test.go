package scan

import "testing"

func TestMatchPrefix(t *testing.T) {
	prefixes := []string{"feature/", "hotfix/"}

	tests := []struct {
		name       string
		branch     string
		wantPrefix string
		wantOK     bool
	}{
		{"feature branch", "feature/ABC-1-login", "feature/", true},
		{"hotfix branch", "hotfix/ABC-2-crash", "hotfix/", true},
		{"integration branch", "develop", "", false},
		{"release branch", "release/v2", "", false},
		{"prefix is case sensitive", "Feature/ABC-1-x", "", false},
		{"bare prefix", "feature/", "feature/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix, ok := MatchPrefix(tt.branch, prefixes)
			if ok != tt.wantOK || prefix != tt.wantPrefix {
				t.Errorf("MatchPrefix(%q) = %q, %v, want %q, %v", tt.branch, prefix, ok, tt.wantPrefix, tt.wantOK)
			}
		})
	}
}

func TestExtractTicket(t *testing.T) {
	tests := []struct {
		name    string
		branch  string
		prefix  string
		wantKey string
		wantOK  bool
	}{
		{"simple key", "feature/ABC-1-login", "feature/", "ABC-1", true},
		{"key only", "feature/ABC-123", "feature/", "ABC-123", true},
		{"lowercase key is normalized", "feature/abc-12-fix", "feature/", "ABC-12", true},
		{"mixed case key", "hotfix/Proj-7-hot", "hotfix/", "PROJ-7", true},
		{"first key wins", "feature/ABC-1-DEF-2", "feature/", "ABC-1", true},
		{"no ticket reference", "hotfix/no-ticket", "hotfix/", "", false},
		{"key must follow prefix", "feature/v2-ABC-1", "feature/", "", false},
		{"missing number", "feature/ABC-fix", "feature/", "", false},
		{"prefix absent", "bugfix/ABC-1", "feature/", "", false},
		{"empty remainder", "feature/", "feature/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := ExtractTicket(tt.branch, tt.prefix)
			if ok != tt.wantOK || key != tt.wantKey {
				t.Errorf("ExtractTicket(%q, %q) = %q, %v, want %q, %v", tt.branch, tt.prefix, key, ok, tt.wantKey, tt.wantOK)
			}
		})
	}
}
