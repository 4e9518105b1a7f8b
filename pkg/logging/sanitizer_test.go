package logging

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeConnectionString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		leaks []string
	}{
		{
			name:  "keyword DSN",
			input: "host=db port=5432 user=nudge password=hunter2 dbname=nudge_engine",
			leaks: []string{"hunter2"},
		},
		{
			name:  "URL DSN",
			input: "postgres://nudge:hunter2@db:5432/nudge_engine?sslmode=disable",
			leaks: []string{"hunter2", "nudge:"},
		},
		{
			name:  "empty",
			input: "",
			leaks: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeConnectionString(tt.input)
			for _, leak := range tt.leaks {
				if strings.Contains(got, leak) {
					t.Errorf("sanitized string still contains %q: %s", leak, got)
				}
			}
		})
	}
}

func TestSanitizeToken(t *testing.T) {
	got := SanitizeToken("shpat_abcdef123456")
	if strings.Contains(got, "abcdef123456") {
		t.Errorf("token body leaked: %s", got)
	}
	if !strings.HasPrefix(got, "shpa") {
		t.Errorf("expected identifying prefix to survive, got %s", got)
	}

	if got := SanitizeToken("ab"); got != RedactedText {
		t.Errorf("short tokens must be fully redacted, got %s", got)
	}
}

func TestSanitizeError(t *testing.T) {
	if got := SanitizeError(nil); got != "" {
		t.Errorf("nil error should sanitize to empty, got %q", got)
	}

	err := errors.New(`shopify request failed: token shpat_secret123 rejected at postgres://nudge:pw@db/nudge`)
	got := SanitizeError(err)
	for _, leak := range []string{"shpat_secret123", ":pw@"} {
		if strings.Contains(got, leak) {
			t.Errorf("sanitized error still contains %q: %s", leak, got)
		}
	}
}
