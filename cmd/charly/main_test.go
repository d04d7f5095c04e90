package main

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/charly-lang/charly/pkg/driver"
)

// isolate keeps tests away from the real user settings and cache.
func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("CHARLY_CONFIG_DIR", filepath.Join(root, "config"))
	t.Setenv("CHARLY_HOME", filepath.Join(root, "home"))
	t.Setenv("NO_COLOR", "1")
	return root
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

func TestRunFileWithRequire(t *testing.T) {
	root := isolate(t)
	writeFile(t, filepath.Join(root, "app", "lib.charly"), `40 + 2;`)
	writeFile(t, filepath.Join(root, "app", "main.charly"), `
print("hello");
let x = require("lib");
print(x);
`)

	code, stdout, stderr := captureCLI(t, []string{filepath.Join(root, "app", "main.charly")})
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr)
	}
	if stdout != "hello\n42\n" {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestRunFilesShareRootScope(t *testing.T) {
	root := isolate(t)
	first := filepath.Join(root, "a.charly")
	second := filepath.Join(root, "b.charly")
	writeFile(t, first, `let greeting = "hi";`)
	writeFile(t, second, `print(greeting);`)

	code, stdout, stderr := captureCLI(t, []string{first, second})
	if code != 0 || stdout != "hi\n" {
		t.Fatalf("code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
}

func TestRunContinueAfterError(t *testing.T) {
	root := isolate(t)
	bad := filepath.Join(root, "bad.charly")
	good := filepath.Join(root, "good.charly")
	writeFile(t, bad, `missing;`)
	writeFile(t, good, `print("ok");`)

	code, stdout, stderr := captureCLI(t, []string{bad, good})
	if code != 1 || stdout != "" {
		t.Fatalf("without --continue: code=%d stdout=%q", code, stdout)
	}
	if !strings.Contains(stderr, "error: bad.charly:1: undefined variable 'missing'") {
		t.Fatalf("unexpected stderr %q", stderr)
	}

	code, stdout, _ = captureCLI(t, []string{"--continue", bad, good})
	if code != 1 || stdout != "ok\n" {
		t.Fatalf("with --continue: code=%d stdout=%q", code, stdout)
	}
}

func TestRunStrict(t *testing.T) {
	root := isolate(t)
	path := filepath.Join(root, "partial.charly")
	writeFile(t, path, "print(1);\nlet x = ;")

	code, stdout, stderr := captureCLI(t, []string{path})
	if code != 0 || stdout != "1\n" {
		t.Fatalf("lenient run: code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
	if !strings.Contains(stderr, "warning: partial.charly:2: could not parse remainder") {
		t.Fatalf("expected incomplete parse warning, got %q", stderr)
	}

	code, stdout, _ = captureCLI(t, []string{"--strict", path})
	if code != 1 || stdout != "" {
		t.Fatalf("strict run: code=%d stdout=%q", code, stdout)
	}
}

func TestRunNoexecDumps(t *testing.T) {
	root := isolate(t)
	path := filepath.Join(root, "main.charly")
	writeFile(t, path, `print(1 + 2);`)

	code, stdout, stderr := captureCLI(t, []string{"--noexec", "--ast", "--tokens", path})
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr)
	}
	for _, want := range []string{"NUMERICAL", "kind: Program", "kind: CallExpression", "kind: BinaryExpression"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "3\n") {
		t.Fatalf("--noexec should not evaluate:\n%s", stdout)
	}
}

func TestRunEval(t *testing.T) {
	t.Chdir(isolate(t))
	code, stdout, stderr := captureCLI(t, []string{"-e", `print(1 + 1);`})
	if code != 0 || stdout != "2\n" {
		t.Fatalf("code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
}

func TestRunManifestMainAndPrelude(t *testing.T) {
	root := isolate(t)
	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, driver.ManifestName), `
name: app
main: src/app.charly
prelude: lib/prelude.charly
`)
	writeFile(t, filepath.Join(app, "lib", "prelude.charly"), `let greet = func(n) { "hi " + n; };`)
	writeFile(t, filepath.Join(app, "src", "app.charly"), `print(greet("bob"));`)
	t.Chdir(app)

	code, stdout, stderr := captureCLI(t, nil)
	if code != 0 || stdout != "hi bob\n" {
		t.Fatalf("code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
}

func TestRunFlagsAndVersion(t *testing.T) {
	isolate(t)
	code, stdout, _ := captureCLI(t, []string{"version"})
	if code != 0 || strings.TrimSpace(stdout) != cliToolVersion {
		t.Fatalf("version: code=%d stdout=%q", code, stdout)
	}
	code, _, stderr := captureCLI(t, []string{"--bogus"})
	if code != 1 || !strings.Contains(stderr, `unknown flag "--bogus"`) {
		t.Fatalf("unknown flag: code=%d stderr=%q", code, stderr)
	}
	code, _, _ = captureCLI(t, []string{"-e"})
	if code != 1 {
		t.Fatalf("-e without source should fail")
	}
}

func TestLoadSettings(t *testing.T) {
	root := isolate(t)
	writeFile(t, filepath.Join(root, "config", settingsFile), `
color = false
log_level = "debug"
strict = true
cache_dir = "/tmp/charly-cache"
`)
	settings, err := loadSettings()
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if settings.colorEnabled() || !settings.Strict || settings.CacheDir != "/tmp/charly-cache" {
		t.Fatalf("unexpected settings %#v", settings)
	}
	if level, err := settings.logLevel(); err != nil || level.String() != "DEBUG" {
		t.Fatalf("logLevel = %v, %v", level, err)
	}
}

func TestLoadSettingsDefaults(t *testing.T) {
	isolate(t)
	settings, err := loadSettings()
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if !settings.colorEnabled() || settings.Strict {
		t.Fatalf("unexpected defaults %#v", settings)
	}
	if _, err := (Settings{LogLevel: "loud"}).logLevel(); err == nil {
		t.Fatalf("expected invalid log level error")
	}
}

func TestResolveCacheDir(t *testing.T) {
	root := isolate(t)
	got, err := resolveCacheDir(Settings{CacheDir: "/ignored"})
	if err != nil || got != filepath.Join(root, "home") {
		t.Fatalf("resolveCacheDir with CHARLY_HOME = %q, %v", got, err)
	}
	t.Setenv("CHARLY_HOME", "")
	got, err = resolveCacheDir(Settings{CacheDir: filepath.Join(root, "cache")})
	if err != nil || got != filepath.Join(root, "cache") {
		t.Fatalf("resolveCacheDir from settings = %q, %v", got, err)
	}
}

func initGitRepo(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		_, err = worktree.Add(rel)
		return err
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Charly CLI",
			Email: "charly@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

func TestDependencyInstallerGitAndPath(t *testing.T) {
	root := isolate(t)
	repo := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repo, driver.DefaultMain), `"from git";`)
	rev := initGitRepo(t, repo)

	writeFile(t, filepath.Join(root, "local", driver.DefaultMain), `"from path";`)

	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, driver.ManifestName), `
name: app
dependencies:
  local: ../local
  remote:
    git: `+repo+`
    rev: `+rev+`
`)
	manifest, err := driver.LoadManifest(filepath.Join(app, driver.ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}

	cacheDir := filepath.Join(root, "cache")
	lock := driver.NewLockfile(manifest.Name, cliToolVersion)
	changed, logs, err := newDependencyInstaller(manifest, cacheDir).Install(lock)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !changed || len(logs) != 2 {
		t.Fatalf("changed=%v logs=%v", changed, logs)
	}
	remote, ok := lock.Find("remote")
	if !ok || remote.Version != rev || remote.Source != "git+"+repo+"@"+rev {
		t.Fatalf("remote entry %#v", remote)
	}
	if _, err := os.Stat(filepath.Join(driver.CheckoutDir(cacheDir, "remote", rev), driver.DefaultMain)); err != nil {
		t.Fatalf("expected checkout in cache: %v", err)
	}
	if local, ok := lock.Find("local"); !ok || local.Source != "path:"+filepath.Join(root, "local") {
		t.Fatalf("local entry %#v", local)
	}

	changed, _, err = newDependencyInstaller(manifest, cacheDir).Install(lock)
	if err != nil || changed {
		t.Fatalf("second install should be a no-op: changed=%v err=%v", changed, err)
	}
}

func TestDepsInstallThenRun(t *testing.T) {
	root := isolate(t)
	repo := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repo, driver.DefaultMain), `"from git";`)
	initGitRepo(t, repo)
	writeFile(t, filepath.Join(root, "local", driver.DefaultMain), `"from path";`)

	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, driver.ManifestName), `
name: app
dependencies:
  local:
    path: ../local
  remote:
    git: `+repo+`
    branch: master
`)
	writeFile(t, filepath.Join(app, driver.DefaultMain), `print(require("remote")); print(require("local"));`)
	t.Chdir(app)

	code, stdout, stderr := captureCLI(t, []string{"deps", "install"})
	if code != 0 {
		t.Fatalf("deps install: code=%d stderr=%s", code, stderr)
	}
	if !strings.Contains(stdout, "Created package.lock") {
		t.Fatalf("unexpected install output:\n%s", stdout)
	}
	if _, err := driver.LoadLockfile(filepath.Join(app, driver.LockfileName)); err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}

	code, stdout, stderr = captureCLI(t, nil)
	if code != 0 || stdout != "from git\nfrom path\n" {
		t.Fatalf("run: code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
}

func captureCLI(t *testing.T, args []string) (int, string, string) {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("stdout pipe: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("stderr pipe: %v", err)
	}

	os.Stdout = wOut
	os.Stderr = wErr

	outCh := make(chan []byte)
	errCh := make(chan []byte)
	go func() { data, _ := io.ReadAll(rOut); outCh <- data }()
	go func() { data, _ := io.ReadAll(rErr); errCh <- data }()

	code := run(args)

	if err := wOut.Close(); err != nil {
		t.Fatalf("stdout close: %v", err)
	}
	if err := wErr.Close(); err != nil {
		t.Fatalf("stderr close: %v", err)
	}

	os.Stdout = stdout
	os.Stderr = stderr

	outBytes := <-outCh
	errBytes := <-errCh
	rOut.Close()
	rErr.Close()

	return code, string(outBytes), string(errBytes)
}
