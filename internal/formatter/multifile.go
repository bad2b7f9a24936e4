package formatter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// DirectoryWriter saves migrations into a directory. A table that already
// has a migration there gets it overwritten; other tables get a new file
// numbered after the migrations already present.
type DirectoryWriter struct {
	OutputDir string
	Workers   int
	// Now dates new migration files. Defaults to time.Now.
	Now func() time.Time
}

// NewDirectoryWriter creates a new directory writer
func NewDirectoryWriter(outputDir string) *DirectoryWriter {
	return &DirectoryWriter{
		OutputDir: outputDir,
		Workers:   defaultWorkers,
		Now:       time.Now,
	}
}

// SaveResult lists the paths written by Save.
type SaveResult struct {
	Created     []string
	Overwritten []string
}

// FileError is a failure to write a single migration.
type FileError struct {
	Table string
	Path  string
	Err   error
}

func (e FileError) Error() string {
	return fmt.Sprintf("failed to write migration for %s to %s: %s", e.Table, e.Path, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }

// SaveError collects the files that could not be written. Files not listed
// were written successfully.
type SaveError struct {
	Files []FileError
}

func (e *SaveError) Error() string {
	msgs := make([]string, len(e.Files))
	for i, f := range e.Files {
		msgs[i] = f.Error()
	}
	return strings.Join(msgs, "; ")
}

type writeTask struct {
	table     string
	path      string
	content   string
	overwrite bool
}

// Save writes files into the output directory. Write failures do not stop
// the remaining files; they are returned together as a *SaveError.
func (w *DirectoryWriter) Save(ctx context.Context, files []File) (*SaveResult, error) {
	if err := os.MkdirAll(w.OutputDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	tasks, err := w.plan(files)
	if err != nil {
		return nil, err
	}

	workers := w.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	var (
		mu     sync.Mutex
		failed []FileError
		done   = make([]bool, len(tasks))
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, task := range tasks {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := os.WriteFile(task.path, []byte(task.content), 0o644); err != nil {
				mu.Lock()
				failed = append(failed, FileError{Table: task.table, Path: task.path, Err: err})
				mu.Unlock()
				return nil
			}
			done[i] = true
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := &SaveResult{}
	for i, task := range tasks {
		if !done[i] {
			continue
		}
		if task.overwrite {
			res.Overwritten = append(res.Overwritten, task.path)
		} else {
			res.Created = append(res.Created, task.path)
		}
	}

	if len(failed) > 0 {
		sortFileErrors(failed, tasks)
		return res, &SaveError{Files: failed}
	}
	return res, nil
}

// plan decides the target path of every file before anything is written.
func (w *DirectoryWriter) plan(files []File) ([]writeTask, error) {
	existing, err := filepath.Glob(filepath.Join(w.OutputDir, "*_table.php"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list existing migrations")
	}
	seq := len(existing)

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	date := now()

	var tasks []writeTask
	for _, f := range files {
		matches, err := filepath.Glob(filepath.Join(w.OutputDir, "*_create_"+f.Table+"_table.php"))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to look up migrations for %s", f.Table)
		}

		if len(matches) > 0 {
			for _, path := range matches {
				tasks = append(tasks, writeTask{table: f.Table, path: path, content: f.Content, overwrite: true})
			}
			continue
		}

		path := filepath.Join(w.OutputDir, FileName(date, seq, f.Table))
		seq++
		tasks = append(tasks, writeTask{table: f.Table, path: path, content: f.Content})
	}
	return tasks, nil
}

// sortFileErrors orders errors the way the files were planned.
func sortFileErrors(errs []FileError, tasks []writeTask) {
	pos := make(map[string]int, len(tasks))
	for i, t := range tasks {
		pos[t.path] = i
	}
	sort.Slice(errs, func(i, j int) bool {
		return pos[errs[i].Path] < pos[errs[j].Path]
	})
}
