package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearInstallFolders(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ProgramFiles", "ProgramFiles(x86)", "LocalAppData"} {
		t.Setenv(key, "")
	}
}

func TestClientsCmd_FindsTortoiseGit(t *testing.T) {
	clearInstallFolders(t)
	t.Setenv("GITSYNC_CONFIG_HOME", t.TempDir())
	pf := t.TempDir()
	t.Setenv("ProgramFiles", pf)
	exe := filepath.Join(pf, "TortoiseGit", "bin", "TortoiseGitProc.exe")
	if err := os.MkdirAll(filepath.Dir(exe), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(exe, []byte("stub"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "", "clients", "--json")
	if err != nil {
		t.Fatalf("clients error = %v", err)
	}
	var got struct {
		Candidates []struct {
			Tool   string `json:"tool"`
			Exists bool   `json:"exists"`
		} `json:"candidates"`
		Found *struct {
			Tool string `json:"tool"`
			Path string `json:"path"`
		} `json:"found"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got.Found == nil || got.Found.Tool != "tortoisegit" || got.Found.Path != exe {
		t.Errorf("found = %+v, want tortoisegit at %s", got.Found, exe)
	}
	if len(got.Candidates) != 2 {
		t.Errorf("got %d candidates, want 2 under one install folder", len(got.Candidates))
	}
}

func TestClientsCmd_FallbackToGitGUI(t *testing.T) {
	clearInstallFolders(t)
	t.Setenv("GITSYNC_CONFIG_HOME", t.TempDir())

	out, _, err := execute(t, "", "clients")
	if err != nil {
		t.Fatalf("clients error = %v", err)
	}
	if !strings.Contains(out, "git gui") {
		t.Errorf("output should name the git gui fallback:\n%s", out)
	}
}
