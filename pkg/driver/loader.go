package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charly-lang/charly/pkg/ast"
)

// ReadFile loads a source file from disk.
func ReadFile(path string) (*ast.File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", abs, err)
	}
	return &ast.File{
		Content:   string(data),
		Filename:  filepath.Base(abs),
		Directory: filepath.Dir(abs),
		Path:      abs,
	}, nil
}

// Resolver maps require targets to files on disk. Bare names declared as
// dependencies resolve to their installed directories; everything else is
// relative to the requiring file.
type Resolver struct {
	dependencies map[string]string
	logger       *slog.Logger
}

type ResolverOption func(*Resolver)

// WithDependencies registers package roots by dependency name.
func WithDependencies(roots map[string]string) ResolverOption {
	return func(r *Resolver) {
		for name, dir := range roots {
			r.dependencies[sanitizeSegment(name)] = dir
		}
	}
}

func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		dependencies: make(map[string]string),
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the absolute path of the file target refers to. A
// directory resolves to its manifest main, or main.charly without one.
func (r *Resolver) Resolve(dir, target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("loader: empty require target")
	}
	base := filepath.FromSlash(target)
	if root, ok := r.dependencies[sanitizeSegment(target)]; ok && isBareName(target) {
		base = root
	} else if !filepath.IsAbs(base) {
		base = filepath.Join(dir, base)
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("loader: resolve %s: %w", target, err)
	}

	candidates := []string{base}
	if filepath.Ext(base) == "" {
		candidates = append(candidates, base+SourceExt)
	}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("loader: stat %s: %w", candidate, err)
		}
		if info.IsDir() {
			return r.directoryEntry(candidate)
		}
		r.logger.Debug("resolved require target", "target", target, "path", candidate)
		return candidate, nil
	}
	return "", fmt.Errorf("loader: cannot find %q from %s: %w", target, dir, fs.ErrNotExist)
}

func (r *Resolver) Load(path string) (*ast.File, error) {
	return ReadFile(path)
}

func (r *Resolver) directoryEntry(dir string) (string, error) {
	entry := filepath.Join(dir, DefaultMain)
	manifestPath := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		manifest, err := LoadManifest(manifestPath)
		if err != nil {
			return "", err
		}
		entry = manifest.MainPath()
	}
	if _, err := os.Stat(entry); err != nil {
		return "", fmt.Errorf("loader: directory %s has no entry file: %w", dir, err)
	}
	r.logger.Debug("resolved package directory", "dir", dir, "entry", entry)
	return entry, nil
}

// DependencyRoots computes the directory of every dependency in manifest:
// path dependencies relative to the manifest, git dependencies inside the
// cache at the revision pinned by lock.
func DependencyRoots(manifest *Manifest, lock *Lockfile, cacheDir string) (map[string]string, error) {
	roots := make(map[string]string)
	if manifest == nil {
		return roots, nil
	}
	for _, name := range manifest.DependencyNames() {
		dep := manifest.Dependencies[name]
		if dep.Path != "" {
			roots[name] = manifest.resolve(dep.Path)
			continue
		}
		pkg, ok := lock.Find(name)
		if !ok {
			return nil, fmt.Errorf("dependency %q is not in %s; run `charly deps install`", name, LockfileName)
		}
		roots[name] = CheckoutDir(cacheDir, name, pkg.Version)
	}
	return roots, nil
}

// CheckoutDir is where a git dependency at version lives inside the cache.
func CheckoutDir(cacheDir, name, version string) string {
	return filepath.Join(cacheDir, "pkg", "src", sanitizeSegment(name), SanitizePathSegment(version))
}

// SanitizePathSegment turns an arbitrary revision string into a single safe
// directory name.
func SanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isBareName(target string) bool {
	return !strings.ContainsAny(target, `/\`) && !strings.HasPrefix(target, ".")
}
