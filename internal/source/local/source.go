// Package local implements a local filesystem task source.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
)

// Config captures the parameters for the local filesystem source.
type Config struct {
	// Dir is the folder containing the contract documents.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// Source lists and reads documents from a local folder.
type Source struct {
	dir string
}

// New creates a local filesystem-backed source. The folder must exist.
func New(cfg Config) (*Source, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("input directory is required")
	}
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("stat input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %q is not a directory", cfg.Dir)
	}
	return &Source{dir: cfg.Dir}, nil
}

// List returns one WorkItem per file whose extension is in the allow-list.
// Subdirectories are not descended into, matching a flat drop-folder layout.
func (s *Source) List(_ context.Context, allowed []string) ([]contracts.WorkItem, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list input directory: %w", err)
	}
	var items []contracts.WorkItem
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !extensionAllowed(name, allowed) {
			continue
		}
		items = append(items, contracts.WorkItem{
			Name:     name,
			Location: filepath.Join(s.dir, name),
			Source:   contracts.SourceLocal,
		})
	}
	return items, nil
}

// Fetch reads the item's bytes from disk. The location must stay inside the
// configured directory.
func (s *Source) Fetch(_ context.Context, item contracts.WorkItem) ([]byte, error) {
	cleanDir := filepath.Clean(s.dir)
	cleanPath := filepath.Clean(item.Location)
	if !strings.HasPrefix(cleanPath, cleanDir+string(filepath.Separator)) {
		return nil, fmt.Errorf("path %q escapes input directory", item.Location)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", item.Name, err)
	}
	return data, nil
}

func extensionAllowed(name string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}
