package locate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// makeInstall lays out a fake install dir with an executable and optionally
// a release manifest.
func makeInstall(t *testing.T, exeRel, manifestExe string) string {
	t.Helper()
	dir := t.TempDir()

	if exeRel != "" {
		path := filepath.Join(dir, exeRel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	if manifestExe != "" {
		manifest := "name: app\nversion: 2024.1\nexe: " + manifestExe + "\n"
		if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(manifest), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	return dir
}

func newTestLocator(t *testing.T) *Locator {
	t.Helper()
	l, err := NewWithPath(filepath.Join(t.TempDir(), "installs.toml"))
	if err != nil {
		t.Fatalf("NewWithPath() error = %v", err)
	}
	return l
}

func TestResolve(t *testing.T) {
	t.Run("entry exe wins", func(t *testing.T) {
		dir := makeInstall(t, "bin/app", "")
		l := newTestLocator(t)
		if err := l.Add("2024.1", dir, "bin/app"); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		inst, err := l.Resolve("2024.1")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		want := filepath.Join(dir, "bin", "app")
		if inst.Exe != want {
			t.Errorf("Resolve().Exe = %q, want %q", inst.Exe, want)
		}
		if inst.Version != "2024.1" {
			t.Errorf("Resolve().Version = %q, want %q", inst.Version, "2024.1")
		}
	})

	t.Run("manifest supplies exe", func(t *testing.T) {
		dir := makeInstall(t, "bin/app", "bin/app")
		l := newTestLocator(t)
		if err := l.Add("2024.1", dir, ""); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		inst, err := l.Resolve("2024.1")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		want := filepath.Join(dir, "bin", "app")
		if inst.Exe != want {
			t.Errorf("Resolve().Exe = %q, want %q", inst.Exe, want)
		}
	})

	t.Run("unknown version", func(t *testing.T) {
		l := newTestLocator(t)

		_, err := l.Resolve("nope")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("no manifest and no entry exe", func(t *testing.T) {
		dir := makeInstall(t, "bin/app", "")
		l := newTestLocator(t)
		if err := l.Add("2024.1", dir, ""); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		_, err := l.Resolve("2024.1")
		if !errors.Is(err, ErrNoExecutable) {
			t.Errorf("Resolve() error = %v, want ErrNoExecutable", err)
		}
	})

	t.Run("executable missing on disk", func(t *testing.T) {
		dir := makeInstall(t, "", "")
		l := newTestLocator(t)
		if err := l.Add("2024.1", dir, "bin/app"); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		_, err := l.Resolve("2024.1")
		if !errors.Is(err, ErrNoExecutable) {
			t.Errorf("Resolve() error = %v, want ErrNoExecutable", err)
		}
	})
}

func TestAddRemove(t *testing.T) {
	t.Run("duplicate version", func(t *testing.T) {
		l := newTestLocator(t)
		if err := l.Add("2024.1", "/opt/app", "bin/app"); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		err := l.Add("2024.1", "/opt/other", "bin/app")
		if !errors.Is(err, ErrExists) {
			t.Errorf("Add() error = %v, want ErrExists", err)
		}
	})

	t.Run("empty version", func(t *testing.T) {
		l := newTestLocator(t)
		if err := l.Add("", "/opt/app", "bin/app"); !errors.Is(err, ErrEmptyVersion) {
			t.Errorf("Add() error = %v, want ErrEmptyVersion", err)
		}
	})

	t.Run("remove unknown version", func(t *testing.T) {
		l := newTestLocator(t)
		if err := l.Remove("nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Remove() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("remove persists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "installs.toml")
		l, err := NewWithPath(path)
		if err != nil {
			t.Fatalf("NewWithPath() error = %v", err)
		}
		if err := l.Add("2024.1", "/opt/app", "bin/app"); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if err := l.Remove("2024.1"); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}

		reloaded, err := NewWithPath(path)
		if err != nil {
			t.Fatalf("NewWithPath() error = %v", err)
		}
		if reloaded.Count() != 0 {
			t.Errorf("Count() = %d, want 0", reloaded.Count())
		}
	})
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "installs.toml")
	dir := makeInstall(t, "bin/app", "")

	l, err := NewWithPath(path)
	if err != nil {
		t.Fatalf("NewWithPath() error = %v", err)
	}
	if err := l.Add("2024.1", dir, "bin/app"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	reloaded, err := NewWithPath(path)
	if err != nil {
		t.Fatalf("NewWithPath() error = %v", err)
	}
	inst, err := reloaded.Resolve("2024.1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if inst.Dir != dir {
		t.Errorf("Resolve().Dir = %q, want %q", inst.Dir, dir)
	}
}

func TestList(t *testing.T) {
	l := newTestLocator(t)
	dir := makeInstall(t, "bin/app", "")

	if err := l.Add("2025.1", dir, "bin/app"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := l.Add("2024.1", dir, "bin/app"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := l.Add("2024.2", "/gone", "bin/app"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	installs := l.List()
	if len(installs) != 3 {
		t.Fatalf("List() returned %d installs, want 3", len(installs))
	}
	wantOrder := []string{"2024.1", "2024.2", "2025.1"}
	for i, want := range wantOrder {
		if installs[i].Version != want {
			t.Errorf("List()[%d].Version = %q, want %q", i, installs[i].Version, want)
		}
	}
	// Unresolvable install keeps its dir but has no exe.
	if installs[1].Exe != "" {
		t.Errorf("List()[1].Exe = %q, want empty", installs[1].Exe)
	}
}

func TestFixed(t *testing.T) {
	t.Run("resolves any version to the fixed exe", func(t *testing.T) {
		dir := makeInstall(t, "app", "")
		exe := filepath.Join(dir, "app")

		inst, err := Fixed{Exe: exe}.Resolve("whatever")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if inst.Exe != exe {
			t.Errorf("Resolve().Exe = %q, want %q", inst.Exe, exe)
		}
		if inst.Version != "whatever" {
			t.Errorf("Resolve().Version = %q, want %q", inst.Version, "whatever")
		}
	})

	t.Run("missing exe", func(t *testing.T) {
		_, err := Fixed{Exe: "/nope/app"}.Resolve("v1")
		if !errors.Is(err, ErrNoExecutable) {
			t.Errorf("Resolve() error = %v, want ErrNoExecutable", err)
		}
	})
}
