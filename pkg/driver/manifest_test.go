package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, `
name: my-app
version: 0.3.0
main: src/app.charly
prelude:
  - lib/core.charly
  - lib/extra.charly
dependencies:
  utils: ../utils
  colors:
    git: https://example.com/colors.git
    tag: v1.0.0
`)

	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if manifest.Name != "my_app" || manifest.Version != "0.3.0" {
		t.Fatalf("unexpected manifest header %#v", manifest)
	}
	if got, want := manifest.MainPath(), filepath.Join(dir, "src", "app.charly"); got != want {
		t.Fatalf("MainPath = %q, want %q", got, want)
	}
	prelude := manifest.PreludePaths()
	if len(prelude) != 2 || prelude[1] != filepath.Join(dir, "lib", "extra.charly") {
		t.Fatalf("unexpected prelude %v", prelude)
	}
	if names := manifest.DependencyNames(); len(names) != 2 || names[0] != "colors" || names[1] != "utils" {
		t.Fatalf("unexpected dependency names %v", names)
	}
	if dep := manifest.Dependencies["utils"]; dep.Path != "../utils" {
		t.Fatalf("shorthand dependency = %#v", dep)
	}
	if dep := manifest.Dependencies["colors"]; dep.Git == "" || dep.Tag != "v1.0.0" {
		t.Fatalf("git dependency = %#v", dep)
	}
}

func TestManifestDefaultMain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, "name: app\n")
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if got := manifest.MainPath(); got != filepath.Join(dir, DefaultMain) {
		t.Fatalf("MainPath = %q", got)
	}
}

func TestLoadManifestValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, `
version: 1.0.0
dependencies:
  both:
    git: https://example.com/x.git
    path: ../x
  unpinned:
    git: https://example.com/y.git
  stray:
    branch: main
`)
	_, err := LoadManifest(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Issues) != 6 {
		t.Fatalf("expected 6 issues, got %d:\n%v", len(verr.Issues), err)
	}
	if !strings.Contains(err.Error(), "name must be provided") {
		t.Fatalf("missing name issue in %v", err)
	}
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, "name: app\ntargets: {}\n")
	if _, err := LoadManifest(path); err == nil || !strings.Contains(err.Error(), "manifest: parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadManifestEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadManifest(path); err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty manifest error, got %v", err)
	}
}

func TestFindManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "name: test\n")
	child := filepath.Join(root, "src", "app")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	found, err := FindManifest(child)
	if err != nil {
		t.Fatalf("FindManifest returned error: %v", err)
	}
	if want := filepath.Join(root, ManifestName); found != want {
		t.Fatalf("FindManifest = %q, want %q", found, want)
	}
}
