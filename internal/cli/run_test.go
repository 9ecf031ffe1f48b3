package cli

import "testing"

func TestTagSlug(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"node:latest", "node-latest"},
		{"import/abc123:latest", "import-abc123-latest"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := tagSlug(tt.tag); got != tt.want {
			t.Errorf("tagSlug(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}
