package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeExtension(t *testing.T, name, script string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ExtensionPrefix+name), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestRunExtension(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("extensions are shell scripts")
	}
	out := filepath.Join(t.TempDir(), "out")
	writeExtension(t, "echo", "#!/bin/sh\necho \"$1 $FINVAULT_DATABASE_PATH\" > "+out+"\nexit 3\n")

	old := *databasePath
	*databasePath = "data.db"
	defer func() { *databasePath = old }()

	found, code := RunExtension("echo", []string{"hello"})
	if !found {
		t.Fatal("extension not found")
	}
	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello data.db\n" {
		t.Errorf("extension output = %q", got)
	}
}

func TestRunExtension_Missing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if found, code := RunExtension("nothing", nil); found || code != 0 {
		t.Errorf("RunExtension = %v, %d; want false, 0", found, code)
	}
}
