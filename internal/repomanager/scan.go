package repomanager

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sevigo/review-bot/internal/core"
)

// ScanFiles returns every regular file under root whose name ends with ext,
// in lexical order. Symlinks are never followed. Only the top level is read
// unless recursive is set, in which case .git is skipped.
func ScanFiles(root, ext string, recursive bool) ([]core.SourceFile, error) {
	if ext == "" {
		return nil, ErrEmptyExtension
	}
	if recursive {
		return scanTree(root, ext)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	var files []core.SourceFile
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		file, err := readSourceFile(filepath.Join(root, entry.Name()), entry.Name(), len(files)+1)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func scanTree(root, ext string) ([]core.SourceFile, error) {
	var files []core.SourceFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		file, err := readSourceFile(path, filepath.ToSlash(rel), len(files)+1)
		if err != nil {
			return err
		}
		files = append(files, file)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}

func readSourceFile(path, name string, index int) (core.SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.SourceFile{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if !utf8.Valid(data) {
		return core.SourceFile{}, fmt.Errorf("%s: %w", name, ErrInvalidEncoding)
	}
	return core.SourceFile{Index: index, Name: name, Content: string(data)}, nil
}
