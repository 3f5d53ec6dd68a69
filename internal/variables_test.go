package internal

import (
	"strings"
	"testing"
)

func TestVersionStripsPrefix(t *testing.T) {
	defer func(v string) { version = v }(version)

	version = "V1.2.3"
	if got := Version(); got != "1.2.3" {
		t.Fatalf("Version() = %q, want %q", got, "1.2.3")
	}
}

func TestVersionStringPipeline(t *testing.T) {
	defer func(v, s, c string) { version, stage, gitCommit = v, s, c }(version, stage, gitCommit)

	version, stage, gitCommit = "1.0.0", "main", "abc123"
	got := VersionString()
	if !strings.HasPrefix(got, "1.0.0 abc123 [") {
		t.Fatalf("VersionString() = %q, want prefix %q", got, "1.0.0 abc123 [")
	}

	stage = "staging"
	got = VersionString()
	if !strings.HasPrefix(got, "1.0.0+staging abc123 [") {
		t.Fatalf("VersionString() = %q, want prefix %q", got, "1.0.0+staging abc123 [")
	}
}

func TestIsLocal(t *testing.T) {
	defer func(v, s, c string) { version, stage, gitCommit = v, s, c }(version, stage, gitCommit)

	version, stage, gitCommit = "1.0.0", "", "abc123"
	if !IsLocal() {
		t.Fatal("IsLocal() = false with empty stage")
	}

	stage = "main"
	if IsLocal() {
		t.Fatal("IsLocal() = true with all variables set")
	}
}

func TestArch(t *testing.T) {
	parts := strings.Split(Arch(), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		t.Fatalf("Arch() = %q, want <os>/<arch>", Arch())
	}
}
