package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const envSigscopeSigsDir = "SIGSCOPE_SIGS_DIR"

// discoverSignatures lists .sig and .sig.gz files in dir, sorted by path.
func discoverSignatures(dir string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("signature directory is empty")
	}
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("signature path is not a directory: %s", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sigs := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if !strings.HasSuffix(name, ".sig") && !strings.HasSuffix(name, ".sig.gz") {
			continue
		}
		sigs = append(sigs, filepath.Join(dir, e.Name()))
	}
	sort.Strings(sigs)
	return sigs, nil
}

// resolveSigsDir picks the listing directory: argument, then the
// environment, then config, then the working directory.
func resolveSigsDir(arg string, cfg Config) string {
	if strings.TrimSpace(arg) != "" {
		return filepath.Clean(arg)
	}
	if dir := strings.TrimSpace(os.Getenv(envSigscopeSigsDir)); dir != "" {
		return dir
	}
	return applyListConfig(cfg, "")
}

func sigDisplayName(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." {
		return filepath.Base(path)
	}
	return rel
}
