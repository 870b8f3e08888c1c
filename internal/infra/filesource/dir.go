package filesource

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"worksheet-quiz/internal/app"
)

const defaultConcurrency = 8

// Dir reads worksheet documents from a directory tree such as
// beginner/mathematics/103052.json. Only .json files are picked up.
type Dir struct {
	root        string
	concurrency int
}

func NewDir(root string) *Dir {
	return &Dir{root: root, concurrency: defaultConcurrency}
}

// Read returns one Document per worksheet file, ordered by relative path.
// A file that cannot be read yields a Document carrying Err instead of
// failing the whole batch; only an unreadable root is returned as an error.
func (d *Dir) Read(ctx context.Context) ([]app.Document, error) {
	var paths []string
	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == d.root {
				return err
			}
			if app.IsWorksheetFile(filepath.Base(path)) {
				paths = append(paths, path)
			}
			return nil
		}
		if entry.IsDir() || !app.IsWorksheetFile(entry.Name()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read worksheet dir %s: %w", d.root, err)
	}

	docs := make([]app.Document, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			docs[i] = d.read(gctx, path)
			return nil
		})
	}
	_ = g.Wait()
	return docs, nil
}

func (d *Dir) read(ctx context.Context, path string) app.Document {
	name, err := filepath.Rel(d.root, path)
	if err != nil {
		name = filepath.Base(path)
	}
	doc := app.Document{Name: filepath.ToSlash(name)}
	if err := ctx.Err(); err != nil {
		doc.Err = err
		return doc
	}
	doc.Data, doc.Err = os.ReadFile(path)
	return doc
}
