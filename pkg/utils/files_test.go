package utils

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("push constant 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGetPathInfo(t *testing.T) {
	full, parent, err := GetPathInfo("a/../b/c.vm")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(full) || filepath.Base(full) != "c.vm" || filepath.Base(parent) != "b" {
		t.Errorf("GetPathInfo = %q, %q", full, parent)
	}
}

func TestVMSourcesDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Sys.vm", "Main.vm", "Alpha.vm", "notes.txt"} {
		writeFile(t, filepath.Join(dir, name))
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.vm"), 0755); err != nil {
		t.Fatal(err)
	}

	files, isDir, err := VMSources(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !isDir {
		t.Error("isDir = false")
	}
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	if want := []string{"Alpha.vm", "Main.vm", "Sys.vm"}; !reflect.DeepEqual(names, want) {
		t.Errorf("files = %v; want %v", names, want)
	}
}

func TestVMSourcesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Main.vm")
	writeFile(t, path)

	files, isDir, err := VMSources(path)
	if err != nil || isDir || len(files) != 1 {
		t.Errorf("VMSources(file) = %v, %v, %v", files, isDir, err)
	}

	other := filepath.Join(dir, "Main.asm")
	writeFile(t, other)
	if _, _, err := VMSources(other); err == nil {
		t.Error("expected error for non-.vm file")
	}
}

func TestVMSourcesEmptyDir(t *testing.T) {
	if _, _, err := VMSources(t.TempDir()); !errors.Is(err, ErrNoSources) {
		t.Errorf("error = %v; want ErrNoSources", err)
	}
}

func TestOutputPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "FibonacciElement")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := OutputPath(dir, ".asm")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "FibonacciElement.asm"); got != want {
		t.Errorf("OutputPath(dir) = %q; want %q", got, want)
	}

	file := filepath.Join(dir, "Main.vm")
	got, err = OutputPath(file, ".hack")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "Main.hack"); got != want {
		t.Errorf("OutputPath(file) = %q; want %q", got, want)
	}
}
