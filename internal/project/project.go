// Package project provides project file handling and persistence.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"thumb-studio/internal/layer"
)

// Extension is the file extension of saved projects.
const Extension = ".thumbproj"

// CurrentVersion is the format version written by Save.
const CurrentVersion = 1

// ErrVersion is returned when a project was written by a newer format.
var ErrVersion = errors.New("unsupported project version")

// File represents a thumbnail project file (.thumbproj).
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Local asset paths are stored relative to the project file.
	Document layer.Document `json:"document"`
}

// New creates a project file for doc.
func New(doc layer.Document) *File {
	now := time.Now()
	return &File{
		Version:  CurrentVersion,
		Created:  now,
		Modified: now,
		Document: doc,
	}
}

// Load loads a project from a .thumbproj file. Relative asset paths are
// resolved against the project's directory.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", filepath.Base(path), err)
	}
	if proj.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, proj.Version)
	}

	proj.Document = mapAssets(proj.Document, func(ref string) string {
		return resolvePath(path, ref)
	})
	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	out := *p
	out.Document = mapAssets(p.Document.Clone(), func(ref string) string {
		return relativePath(path, ref)
	})

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// WithExtension appends Extension to path unless it is already there.
func WithExtension(path string) string {
	if strings.EqualFold(filepath.Ext(path), Extension) {
		return path
	}
	return path + Extension
}

func mapAssets(doc layer.Document, fn func(string) string) layer.Document {
	doc.Background.ImageRef = fn(doc.Background.ImageRef)
	for i, l := range doc.Layers {
		if img, ok := l.(layer.ImageLayer); ok {
			img.Source = fn(img.Source)
			img.OriginalSource = fn(img.OriginalSource)
			doc.Layers[i] = img
		}
	}
	return doc
}

// isLocalPath reports whether ref is a plain filesystem path rather than a
// URI.
func isLocalPath(ref string) bool {
	return ref != "" && !strings.Contains(ref, "://") && !strings.HasPrefix(ref, "data:")
}

func relativePath(projectPath, ref string) string {
	if !isLocalPath(ref) || !filepath.IsAbs(ref) {
		return ref
	}
	rel, err := filepath.Rel(filepath.Dir(projectPath), ref)
	if err != nil {
		return ref
	}
	return filepath.ToSlash(rel)
}

func resolvePath(projectPath, ref string) string {
	if !isLocalPath(ref) || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(filepath.Dir(projectPath), filepath.FromSlash(ref))
}
