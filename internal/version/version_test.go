package version

import "testing"

// setBuildInfo overrides the ldflags variables for one test.
func setBuildInfo(t *testing.T, version, commit, buildTime string) {
	t.Helper()
	origVersion, origCommit, origBuildTime := Version, Commit, BuildTime
	t.Cleanup(func() {
		Version, Commit, BuildTime = origVersion, origCommit, origBuildTime
	})
	Version, Commit, BuildTime = version, commit, buildTime
}

func TestString(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		setBuildInfo(t, "dev", "unknown", "unknown")

		want := "listing-watch dev (unknown) built unknown"
		if got := String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	})

	t.Run("release values", func(t *testing.T) {
		setBuildInfo(t, "1.2.3", "abc1234", "2026-01-15T10:00:00Z")

		want := "listing-watch 1.2.3 (abc1234) built 2026-01-15T10:00:00Z"
		if got := String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	})
}

func TestUserAgent(t *testing.T) {
	setBuildInfo(t, "1.2.3", "abc1234", "now")

	if got := UserAgent(); got != "listing-watch/1.2.3" {
		t.Errorf("UserAgent() = %q, want %q", got, "listing-watch/1.2.3")
	}
}
