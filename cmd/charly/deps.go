package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/charly-lang/charly/pkg/driver"
)

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "charly deps requires a subcommand (install)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "charly deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall()
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

func runDepsInstall() int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to determine working directory: %v\n", err)
		return 1
	}
	manifest, err := loadManifestFrom(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read manifest: %v\n", err)
		return 1
	}
	settings, err := loadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		settings = defaultSettings()
	}
	cacheDir, err := resolveCacheDir(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(os.Stdout, "Root package: %s\n", manifest.Name)
	fmt.Fprintf(os.Stdout, "Dependencies: %d\n", len(manifest.Dependencies))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", cacheDir)

	lockPath := filepath.Join(manifest.Dir(), driver.LockfileName)
	lock, err := driver.LoadLockfile(lockPath)
	lockCreated := false
	switch {
	case err == nil:
		if lock.Root != manifest.Name {
			fmt.Fprintf(os.Stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return 1
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return 1
	}
	lock.Path = lockPath
	lock.Tool = cliToolVersion

	installer := newDependencyInstaller(manifest, cacheDir)
	changed, logs, err := installer.Install(lock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}

	if changed || lockCreated {
		action := "Updated"
		if lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(lock, lockPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", action, driver.LockfileName, lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date: %s\n", driver.LockfileName, lock.Path)
	}

	fmt.Fprintln(os.Stdout, "Dependencies installed.")
	return 0
}

type dependencyInstaller struct {
	manifest *driver.Manifest
	cacheDir string
}

func newDependencyInstaller(manifest *driver.Manifest, cacheDir string) *dependencyInstaller {
	return &dependencyInstaller{manifest: manifest, cacheDir: cacheDir}
}

// Install brings lock in line with the manifest: every declared dependency
// gets an entry, git checkouts are cloned into the cache when missing, and
// entries for dependencies no longer declared are dropped.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	names := d.manifest.DependencyNames()
	changed := false
	var logs []string
	for _, name := range names {
		spec := d.manifest.Dependencies[name]
		var (
			pkg *driver.LockedPackage
			err error
		)
		if spec.Path != "" {
			pkg, err = d.installPath(name, spec)
		} else {
			pkg, err = d.installGit(name, spec, lock)
		}
		if err != nil {
			return false, logs, fmt.Errorf("dependency %q: %w", name, err)
		}
		if lock.Upsert(pkg) {
			changed = true
			logs = append(logs, fmt.Sprintf("Locked %s %s (%s)", pkg.Name, pkg.Version, pkg.Source))
		} else {
			logs = append(logs, fmt.Sprintf("Using %s %s", pkg.Name, pkg.Version))
		}
	}
	if lock.Prune(names) {
		changed = true
	}
	return changed, logs, nil
}

func (d *dependencyInstaller) installPath(name string, spec *driver.DependencySpec) (*driver.LockedPackage, error) {
	dir := filepath.FromSlash(spec.Path)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(d.manifest.Dir(), dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path %s is not a directory", dir)
	}
	checksum, err := dirChecksum(dir)
	if err != nil {
		return nil, err
	}
	return &driver.LockedPackage{
		Name:     name,
		Version:  "path",
		Source:   "path:" + dir,
		Checksum: checksum,
	}, nil
}

// installGit reuses the locked checkout when it still matches the manifest
// pin and is present in the cache; otherwise it clones afresh.
func (d *dependencyInstaller) installGit(name string, spec *driver.DependencySpec, lock *driver.Lockfile) (*driver.LockedPackage, error) {
	url := strings.TrimSpace(spec.Git)
	_, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return nil, err
	}
	if existing, ok := lock.Find(name); ok && strings.HasPrefix(existing.Source, "git+"+url+"@") &&
		(existing.Version == descriptor || strings.HasPrefix(existing.Version, descriptor+"@")) {
		if _, err := os.Stat(driver.CheckoutDir(d.cacheDir, name, existing.Version)); err == nil {
			clone := *existing
			return &clone, nil
		}
	}

	baseDir := filepath.Join(d.cacheDir, "pkg", "src", name)
	version, commit, err := ensureGitCheckout(baseDir, url, spec)
	if err != nil {
		return nil, err
	}
	checksum, err := dirChecksum(driver.CheckoutDir(d.cacheDir, name, version))
	if err != nil {
		return nil, err
	}
	return &driver.LockedPackage{
		Name:     name,
		Version:  version,
		Source:   fmt.Sprintf("git+%s@%s", url, commit),
		Checksum: checksum,
	}, nil
}

func ensureGitCheckout(baseDir, url string, spec *driver.DependencySpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{
		URL:               url,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, driver.SanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}
	if err := os.RemoveAll(filepath.Join(tmpDir, ".git")); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

// gitPinnedVersion is the commit alone for rev pins and descriptor@commit
// for tags and branches.
func gitPinnedVersion(descriptor, commit string) string {
	commit = strings.TrimSpace(commit)
	descriptor = strings.TrimSpace(descriptor)
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

func gitRevisionFromSpec(spec *driver.DependencySpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/heads/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("git dependencies require rev, tag, or branch")
}

func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
