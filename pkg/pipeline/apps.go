package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// resolveApps implements spec.md §6's two input modes: inputPath is
// either a single mini-program directory (one app), or an index file
// naming one app directory per line (SUPPLEMENTED FEATURES:
// "index-file input mode", main.py's "handle index files" branch),
// each analyzed independently.
func resolveApps(inputPath string) ([]string, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: invalid input path %s: %w", inputPath, err)
	}
	if info.IsDir() {
		return []string{inputPath}, nil
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: open index file %s: %w", inputPath, err)
	}
	defer f.Close()

	var apps []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		apps = append(apps, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pipeline: read index file %s: %w", inputPath, err)
	}
	return apps, nil
}
