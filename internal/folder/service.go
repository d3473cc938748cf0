// Package folder provides destination-folder browsing inside the downloads
// root, used as the picker fallback when the companion helper is unavailable
package folder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"download-router/pkg/pathutil"
)

// Service browses and creates folders, confined to the downloads root
type Service struct {
	root string
}

// Entry is one directory inside the current listing
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Listing is the browse result for one relative path
type Listing struct {
	Path        string                `json:"path"`
	Directories []Entry               `json:"directories"`
	Breadcrumbs []pathutil.Breadcrumb `json:"breadcrumbs"`
}

// NewService creates a service rooted at the downloads directory
func NewService(root string) *Service {
	return &Service{root: filepath.Clean(root)}
}

// List returns the directories under relativePath together with breadcrumb
// navigation. Files are not listed; only folders can be routing destinations.
func (s *Service) List(relativePath string) (*Listing, error) {
	fullPath, err := s.resolve(relativePath)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	listing := &Listing{
		Path:        normalizeRelative(relativePath),
		Directories: []Entry{},
		Breadcrumbs: pathutil.Breadcrumbs(normalizeRelative(relativePath)),
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		listing.Directories = append(listing.Directories, Entry{
			Name: entry.Name(),
			Path: joinRelative(listing.Path, entry.Name()),
		})
	}

	return listing, nil
}

// Create makes a new folder under the downloads root
func (s *Service) Create(relativePath string) error {
	if normalizeRelative(relativePath) == "" {
		return fmt.Errorf("folder path cannot be empty")
	}

	fullPath, err := s.resolve(relativePath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(fullPath); err == nil {
		return fmt.Errorf("folder already exists: %s", relativePath)
	}

	if err := os.MkdirAll(fullPath, 0o755); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	return nil
}

// resolve maps a relative browse path onto the filesystem and rejects
// anything that escapes the root
func (s *Service) resolve(relativePath string) (string, error) {
	relative := normalizeRelative(relativePath)
	if relative == "" {
		return s.root, nil
	}

	fullPath := filepath.Clean(filepath.Join(s.root, filepath.FromSlash(relative)))
	if fullPath != s.root && !strings.HasPrefix(fullPath, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes the downloads root: %s", relativePath)
	}
	return fullPath, nil
}

func normalizeRelative(relativePath string) string {
	return strings.Trim(strings.ReplaceAll(relativePath, "\\", "/"), "/ ")
}

func joinRelative(base, name string) string {
	if base == "" {
		return name
	}
	return base + "/" + name
}
