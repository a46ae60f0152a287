package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNoSources = errors.New("no .vm files found")

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// VMSources returns the .vm files named by path. A directory yields every
// .vm file directly inside it, sorted by name.
func VMSources(path string) (files []string, isDir bool, err error) {
	fullPath, _, err := GetPathInfo(path)
	if err != nil {
		return nil, false, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, false, err
	}

	if !info.IsDir() {
		if !strings.EqualFold(filepath.Ext(fullPath), ".vm") {
			return nil, false, fmt.Errorf("%s: not a .vm file", path)
		}
		return []string{fullPath}, false, nil
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, true, err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".vm") {
			continue
		}
		files = append(files, filepath.Join(fullPath, e.Name()))
	}
	if len(files) == 0 {
		return nil, true, fmt.Errorf("%w in %s", ErrNoSources, path)
	}
	sort.Strings(files)
	return files, true, nil
}

// OutputPath names the output for input with the given extension
// (".asm" or ".hack"). A file foo.vm maps to foo<ext> beside it; a
// directory dir maps to dir/<base of dir><ext>.
func OutputPath(input, ext string) (string, error) {
	fullPath, _, err := GetPathInfo(input)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(fullPath)
	if err == nil && info.IsDir() {
		return filepath.Join(fullPath, filepath.Base(fullPath)+ext), nil
	}
	return strings.TrimSuffix(fullPath, filepath.Ext(fullPath)) + ext, nil
}
