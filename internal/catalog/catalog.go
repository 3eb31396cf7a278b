package catalog

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/shiptrace/internal/ir"
)

// Source describes one discovered tabular file.
//
// A source that cannot be parsed is still listed, with Error set and no
// columns or sample; one malformed file never fails discovery as a whole.
type Source struct {
	Name         string     `json:"name"`
	Path         string     `json:"path"`
	Category     string     `json:"category,omitempty"`
	Columns      []string   `json:"columns,omitempty"`
	SampleRecord *ir.Record `json:"sample_record,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// Catalog is the result of one discovery pass.
type Catalog struct {
	DataDirectory string   `json:"data_directory"`
	TotalSources  int      `json:"total_sources"`
	Sources       []Source `json:"sources"`
}

// Discover walks root and describes every tabular file below it.
//
// If root does not exist, Discover returns an empty (non-nil) catalog together
// with an ErrCodeDirectoryNotFound error so callers can still render it.
func Discover(root string) (*Catalog, error) {
	cat := &Catalog{DataDirectory: root, Sources: []Source{}}

	if err := checkRoot(root); err != nil {
		return cat, err
	}

	paths, err := listTabular(root)
	if err != nil {
		return cat, err
	}

	for _, rel := range paths {
		full := filepath.Join(root, rel)
		src := Source{
			Name: stem(rel),
			Path: rel,
		}

		table, err := Load(full, 1)
		if err != nil {
			slog.Warn("source unreadable", "path", rel, "error", err)
			src.Error = "Could not read: " + causeOf(err)
			cat.Sources = append(cat.Sources, src)
			continue
		}

		src.Category = category(full)
		src.Columns = table.Schema.Names()
		sample := ir.MustRecord(nil)
		if len(table.Records) > 0 {
			sample = table.Records[0]
		}
		src.SampleRecord = &sample
		cat.Sources = append(cat.Sources, src)
	}

	cat.TotalSources = len(cat.Sources)
	return cat, nil
}

// Resolve maps a source name to the path of a tabular file under root.
//
// Exact file-name matches win (with or without extension); otherwise the
// first file whose stem contains name under case folding is used.
func Resolve(root, name string) (string, error) {
	if err := checkRoot(root); err != nil {
		return "", err
	}

	paths, err := listTabular(root)
	if err != nil {
		return "", err
	}

	for _, rel := range paths {
		base := filepath.Base(rel)
		if base == name || stem(rel) == name {
			return filepath.Join(root, rel), nil
		}
	}

	needle := fold(name)
	for _, rel := range paths {
		if strings.Contains(fold(stem(rel)), needle) {
			return filepath.Join(root, rel), nil
		}
	}

	return "", ir.NewSourceNotFound(name, root)
}

// Count returns the number of tabular files under root.
func Count(root string) (int, error) {
	if err := checkRoot(root); err != nil {
		return 0, err
	}
	paths, err := listTabular(root)
	if err != nil {
		return 0, err
	}
	return len(paths), nil
}

// checkRoot verifies that root exists and is a directory.
func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return ir.NewDirectoryNotFound(root)
	}
	return nil
}

// listTabular returns root-relative paths of supported files in lexical
// walk order. Unreadable subdirectories are skipped.
func listTabular(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := delimiterFor(path); !ok {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, ir.NewInternal("scan data directory", err)
	}
	return paths, nil
}

// stem returns the file name without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// category is the name of the directory containing the file.
func category(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	if dir == "." || dir == string(filepath.Separator) {
		return ""
	}
	return dir
}

// fold normalizes s for case-insensitive comparison.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// causeOf returns the innermost message of a parse failure.
func causeOf(err error) string {
	if e, ok := err.(*ir.Error); ok && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}
