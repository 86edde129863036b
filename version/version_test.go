package version

import "testing"

func TestGetFullVersion(t *testing.T) {
	prevVersion, prevCommit := Version, CommitHash
	t.Cleanup(func() { Version, CommitHash = prevVersion, prevCommit })

	Version = "1.2.3"
	cases := map[string]string{
		"unknown":          "1.2.3",
		"":                 "1.2.3",
		"abc":              "1.2.3 (abc)",
		"0123456789abcdef": "1.2.3 (0123456)",
	}
	for commit, want := range cases {
		CommitHash = commit
		if got := GetFullVersion(); got != want {
			t.Fatalf("GetFullVersion() with commit %q = %q, want %q", commit, got, want)
		}
	}
}
