package runtime

import (
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMergeEnv(t *testing.T) {
	tests := []struct {
		name      string
		base      []string
		overrides []string
		want      []string
	}{
		{
			name:      "override existing key",
			base:      []string{"PATH=/usr/bin", "HOME=/root"},
			overrides: []string{"HOME=/build"},
			want:      []string{"HOME=/build", "PATH=/usr/bin"},
		},
		{
			name:      "add new key",
			base:      []string{"PATH=/usr/bin"},
			overrides: []string{"DEBIAN_FRONTEND=noninteractive"},
			want:      []string{"DEBIAN_FRONTEND=noninteractive", "PATH=/usr/bin"},
		},
		{
			name:      "empty base",
			base:      nil,
			overrides: []string{"RUSTFLAGS=-C target-cpu=native"},
			want:      []string{"RUSTFLAGS=-C target-cpu=native"},
		},
		{
			name:      "empty overrides",
			base:      []string{"PATH=/usr/bin"},
			overrides: nil,
			want:      []string{"PATH=/usr/bin"},
		},
		{
			name:      "both empty",
			base:      nil,
			overrides: nil,
			want:      []string{},
		},
		{
			name:      "value with equals sign",
			base:      []string{"RUSTFLAGS=-C opt-level=3"},
			overrides: nil,
			want:      []string{"RUSTFLAGS=-C opt-level=3"},
		},
		{
			name:      "malformed entries skipped",
			base:      []string{"NOEQUALS", "PATH=/usr/bin"},
			overrides: []string{"ALSO_BAD", "HOME=/build"},
			want:      []string{"HOME=/build", "PATH=/usr/bin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeEnv(tt.base, tt.overrides)
			sort.Strings(got)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("merged env mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNextExecID(t *testing.T) {
	a := nextExecID()
	b := nextExecID()

	if a == b {
		t.Fatalf("nextExecID returned duplicate: %q", a)
	}
	if !strings.HasPrefix(a, "exec-") || !strings.HasPrefix(b, "exec-") {
		t.Fatalf("exec IDs missing prefix: %q, %q", a, b)
	}
}
