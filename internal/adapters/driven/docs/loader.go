// Package docs reads knowledge base documents from a directory and
// watches it for changes.
package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/kbchat-cli/internal/logger"
)

// Document is one knowledge base file ready for indexing.
type Document struct {
	// Source is the file name relative to the docs directory.
	Source string

	// Text is the file content.
	Text string
}

// textExtensions are the file types treated as knowledge base content.
var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// LoadDir reads every text document under dir, recursively. Files are
// returned in path order so indexing runs are reproducible. Empty files
// are skipped.
func LoadDir(dir string) ([]Document, error) {
	var docs []Document

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsTextFile(path) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			logger.Debug("Skipping empty file %s", path)
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		docs = append(docs, Document{Source: rel, Text: text})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Source < docs[j].Source })
	logger.Info("Loaded %d documents from %s", len(docs), dir)
	return docs, nil
}

// IsTextFile reports whether the path has a supported text extension.
func IsTextFile(path string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(path))]
}

// Split separates documents into parallel text and source slices, the
// shape the indexing pipeline takes.
func Split(docs []Document) (texts, sources []string) {
	texts = make([]string, len(docs))
	sources = make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
		sources[i] = d.Source
	}
	return texts, sources
}
