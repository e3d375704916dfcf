package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pagesmith/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryReadable_ReadOnly(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	dir := filepath.Join(t.TempDir(), "ro")
	if err := os.Mkdir(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	if result := CheckDirectoryReadable("configs", dir); !result.Passed {
		t.Fatalf("expected read-only dir to be readable, got: %s", result.Detail)
	}
	if result := CheckDirectoryAccess("output", dir); result.Passed {
		t.Fatal("expected read-only dir to fail the write check")
	}
}

func TestCheckHelper(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if result := CheckHelper(cfg.Upload.Helper); !result.Passed {
		t.Fatalf("expected stubbed helper to pass, got: %s", result.Detail)
	}
	if result := CheckHelper("clearly-not-present-helper"); result.Passed {
		t.Fatal("expected missing helper to fail")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestRunAll_ReadyConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(cfg.Paths.ConfigsDir, 0o755); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), cfg)
	if len(results) != 8 {
		t.Fatalf("expected 8 checks with clipboard disabled, got %d", len(results))
	}
	if Failed(results) {
		t.Fatalf("expected all checks to pass, got %+v", results)
	}
}

func TestRunAll_MissingDirectoriesFail(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.Upload.Clipboard = true

	results := RunAll(context.Background(), cfg)
	if len(results) != 9 {
		t.Fatalf("expected 9 checks with clipboard enabled, got %d", len(results))
	}
	if !Failed(results) {
		t.Fatal("expected missing directories to fail preflight")
	}
	last := results[len(results)-1]
	if last.Name != "Clipboard" || !last.Optional {
		t.Fatalf("expected optional clipboard check last, got %+v", last)
	}
}

func TestRunAll_CancelledContext(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if results := RunAll(ctx, cfg); len(results) != 0 {
		t.Fatalf("expected no checks after cancellation, got %d", len(results))
	}
}

func TestFailedIgnoresOptionalChecks(t *testing.T) {
	results := []Result{
		{Name: "dir", Passed: true},
		{Name: "Clipboard", Optional: true},
	}
	if Failed(results) {
		t.Fatal("optional failure should not fail preflight")
	}
	results = append(results, Result{Name: "helper"})
	if !Failed(results) {
		t.Fatal("required failure should fail preflight")
	}
}
