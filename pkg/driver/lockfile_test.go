package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLockfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockfileName)
	lock := NewLockfile("my-app", "charly 0.0.0-dev")
	lock.Upsert(&LockedPackage{Name: "zeta", Version: "abc", Source: "git+https://example.com/z.git@abc", Checksum: "1"})
	lock.Upsert(&LockedPackage{Name: "alpha", Version: "path", Source: "path:/tmp/alpha", Checksum: "2"})
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "root: my_app") {
		t.Fatalf("unexpected lockfile contents:\n%s", data)
	}

	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if loaded.Root != "my_app" || loaded.Tool != "charly 0.0.0-dev" {
		t.Fatalf("unexpected header %#v", loaded)
	}
	if len(loaded.Packages) != 2 || loaded.Packages[0].Name != "alpha" || loaded.Packages[1].Name != "zeta" {
		t.Fatalf("packages not sorted: %#v", loaded.Packages)
	}
	if pkg, ok := loaded.Find("zeta"); !ok || pkg.Version != "abc" {
		t.Fatalf("Find(zeta) = %#v, %v", pkg, ok)
	}
}

func TestLockfileUpsertAndPrune(t *testing.T) {
	lock := NewLockfile("app", "tool")
	entry := &LockedPackage{Name: "dep", Version: "1", Source: "path:/x", Checksum: "c"}
	if !lock.Upsert(entry) {
		t.Fatalf("first upsert should change the lockfile")
	}
	same := *entry
	if lock.Upsert(&same) {
		t.Fatalf("identical upsert should not change the lockfile")
	}
	if !lock.Upsert(&LockedPackage{Name: "dep", Version: "2", Source: "path:/x", Checksum: "d"}) {
		t.Fatalf("changed upsert should report a change")
	}
	if len(lock.Packages) != 1 || lock.Packages[0].Version != "2" {
		t.Fatalf("unexpected packages %#v", lock.Packages)
	}
	if lock.Prune([]string{"dep"}) {
		t.Fatalf("prune of declared dependency should not change anything")
	}
	if !lock.Prune(nil) || len(lock.Packages) != 0 {
		t.Fatalf("prune should drop undeclared packages, got %#v", lock.Packages)
	}
}

func TestLoadLockfileMissing(t *testing.T) {
	_, err := LoadLockfile(filepath.Join(t.TempDir(), LockfileName))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}
