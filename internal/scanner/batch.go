package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/phobologic/mcheck/internal/sourcecode"
)

// Reader supplies the raw bytes of a file.
type Reader interface {
	ReadFile(path string) ([]byte, error)
}

// DirReader reads paths relative to Root.
type DirReader struct {
	Root string
}

func (r DirReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(r.Root, path))
}

// Sink receives file results. Run calls it from a single goroutine, in the
// order of the input paths.
type Sink interface {
	File(res *FileResult)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(*FileResult)

func (f SinkFunc) File(res *FileResult) { f(res) }

// Run scans paths on jobs workers, or GOMAXPROCS workers when jobs is not
// positive. Each worker builds its own visitors for every file. Results
// reach sink in input order and the returned project node merges the
// metrics of every file that parsed. The error is non-nil only when ctx
// was cancelled.
func (s *Scanner) Run(ctx context.Context, paths []string, r Reader, sink Sink, jobs int) (*sourcecode.Node, error) {
	type result struct {
		index int
		res   *FileResult
	}

	numWorkers := jobs
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(paths) {
		numWorkers = len(paths)
	}

	ctx, span := startBatchSpan(ctx, len(paths), numWorkers)
	defer span.End()

	work := make(chan int, len(paths))
	results := make(chan result, len(paths))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				results <- result{index: idx, res: s.scanPath(ctx, r, paths[idx])}
			}
		}()
	}

	for i := range paths {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single writer: reorder, aggregate and forward.
	project := sourcecode.New(sourcecode.Project, "project", 0)
	pending := make(map[int]*FileResult)
	next := 0
	for out := range results {
		pending[out.index] = out.res
		for {
			res, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if res.Err == nil {
				project.Merge(res.Metrics)
			}
			if sink != nil {
				sink.File(res)
			}
		}
	}
	return project, ctx.Err()
}

func (s *Scanner) scanPath(ctx context.Context, r Reader, path string) *FileResult {
	if err := ctx.Err(); err != nil {
		return &FileResult{Path: path, Err: err}
	}
	data, err := r.ReadFile(path)
	if err != nil {
		s.logger.Warn("cannot read file", "path", path, "error", err)
		return &FileResult{Path: path, Err: fmt.Errorf("reading %s: %w", path, err)}
	}
	return s.Scan(ctx, path, data)
}
