package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetFullVersion_ContainsAllParts(t *testing.T) {
	full := GetFullVersion()
	for _, part := range []string{GetVersion(), GetBuild(), GetGitCommit()} {
		if !strings.Contains(full, part) {
			t.Errorf("GetFullVersion() = %q, missing %q", full, part)
		}
	}
}

func TestLoadVersionFile_OnlyReplacesDefaults(t *testing.T) {
	origVersion, origBuild, origCommit := Version, Build, GitCommit
	t.Cleanup(func() { Version, Build, GitCommit = origVersion, origBuild, origCommit })

	Version, Build, GitCommit = "dev", "2026-01-01", "unknown"

	path := filepath.Join(t.TempDir(), ".version")
	content := "# build info\nversion: 1.4.0\nbuild: 2026-10-01\ncommit: abc1234\nnonsense\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loadVersionFile(path)

	if Version != "1.4.0" {
		t.Errorf("expected version 1.4.0, got %s", Version)
	}
	if Build != "2026-01-01" {
		t.Errorf("build set via ldflags should be kept, got %s", Build)
	}
	if GitCommit != "abc1234" {
		t.Errorf("expected commit abc1234, got %s", GitCommit)
	}
}

func TestLoadVersionFile_MissingFileIsIgnored(t *testing.T) {
	origVersion := Version
	loadVersionFile(filepath.Join(t.TempDir(), "missing"))
	if Version != origVersion {
		t.Errorf("version changed to %s", Version)
	}
}
