package version

import "testing"

func TestString(t *testing.T) {
	oldV, oldSHA, oldT := Version, GitSHA, BuildTime
	t.Cleanup(func() { Version, GitSHA, BuildTime = oldV, oldSHA, oldT })

	if got := String(); got != "kickoff dev (unknown, built unknown)" {
		t.Errorf("String() = %q", got)
	}

	Version = "v0.3.0"
	GitSHA = "0123456789abcdef0123"
	BuildTime = "2026-10-01T12:00:00Z"
	want := "kickoff v0.3.0 (0123456789ab, built 2026-10-01T12:00:00Z)"
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
