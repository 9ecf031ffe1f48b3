package runtime

import (
	"strings"
	"testing"
)

func TestMountSpecs(t *testing.T) {
	bindings := []MountBinding{
		{Source: "/var/lib/slipway/volumes/node/data", Target: "/data"},
		{Source: "/tmp/logs", Target: "/logs"},
	}

	mounts := mountSpecs(bindings)
	if len(mounts) != 2 {
		t.Fatalf("len(mounts) = %d, want 2", len(mounts))
	}

	for i, b := range bindings {
		m := mounts[i]
		if m.Destination != b.Target {
			t.Errorf("mounts[%d].Destination = %q, want %q", i, m.Destination, b.Target)
		}
		if m.Source != b.Source {
			t.Errorf("mounts[%d].Source = %q, want %q", i, m.Source, b.Source)
		}
		if m.Type != "none" {
			t.Errorf("mounts[%d].Type = %q, want none", i, m.Type)
		}
		hasRbind := false
		for _, opt := range m.Options {
			if opt == "rbind" {
				hasRbind = true
			}
		}
		if !hasRbind {
			t.Errorf("mounts[%d].Options = %v, missing rbind", i, m.Options)
		}
	}
}

func TestMountSpecsEmpty(t *testing.T) {
	if got := mountSpecs(nil); len(got) != 0 {
		t.Fatalf("mountSpecs(nil) = %v, want empty", got)
	}
}

func TestLaunchID(t *testing.T) {
	a := launchID()
	b := launchID()

	if !strings.HasPrefix(a, "launch-") {
		t.Fatalf("launchID() = %q, want launch- prefix", a)
	}
	if a == b {
		t.Fatalf("launchID returned duplicate: %q", a)
	}
}
