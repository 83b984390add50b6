// ABOUTME: Directory watcher that re-ingests guideline files when they change
// ABOUTME: Uses fsnotify; files live under <root>/<carrier-id>/<title>[@YYYY-MM-DD].<ext>
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/harper/carrierfit/internal/extract"
	"github.com/harper/carrierfit/internal/logging"
	"github.com/harper/carrierfit/internal/models"
)

// DefaultDebounce is how long a file must be quiet before it is ingested
const DefaultDebounce = 500 * time.Millisecond

// IngestFunc ingests one guideline document
type IngestFunc func(ctx context.Context, req models.IngestRequest) (*models.IngestReceipt, error)

// Watcher re-ingests guideline files dropped into a directory tree
type Watcher struct {
	ingest   IngestFunc
	logger   *log.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce overrides the quiet period before ingesting
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a Watcher that hands files to ingest
func New(ingest IngestFunc, logger *log.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		ingest:   ingest,
		logger:   logging.Component(logging.OrDiscard(logger), "watcher"),
		debounce: DefaultDebounce,
		pending:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// RequestFromPath derives an ingest request from a file's location under root.
// The first directory is the carrier id, the file stem is the title, and an
// optional "@YYYY-MM-DD" stem suffix is the effective date (else the file's
// modification date).
func RequestFromPath(root, path string) (models.IngestRequest, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return models.IngestRequest{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 || parts[0] == ".." {
		return models.IngestRequest{}, fmt.Errorf("%w: %s is not inside a carrier directory", models.ErrInvalidInput, rel)
	}

	carrierID := parts[0]
	stem := strings.TrimSuffix(parts[len(parts)-1], filepath.Ext(path))
	title := stem
	var effective time.Time

	if i := strings.LastIndex(stem, "@"); i > 0 {
		if d, err := models.ParseDate(stem[i+1:]); err == nil {
			title = stem[:i]
			effective = d
		}
	}
	if effective.IsZero() {
		info, err := os.Stat(path)
		if err != nil {
			return models.IngestRequest{}, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		mod := info.ModTime().UTC()
		effective = time.Date(mod.Year(), mod.Month(), mod.Day(), 0, 0, 0, 0, time.UTC)
	}

	title = strings.TrimSpace(strings.ReplaceAll(title, "_", " "))

	return models.IngestRequest{
		CarrierID:      carrierID,
		Title:          title,
		EffectiveDate:  effective,
		SourceLocation: path,
	}, nil
}

// Scan ingests every supported file already under root
func (w *Watcher) Scan(ctx context.Context, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !extract.Supported(path) {
			return nil
		}
		w.ingestFile(ctx, root, path)
		return nil
	})
}

// Run watches root until ctx ends, ingesting created or modified files
func (w *Watcher) Run(ctx context.Context, root string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := w.addTree(fw, root); err != nil {
		return err
	}
	w.logger.Info("watching", "dir", root)

	defer w.wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, fw, root, event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, fw *fsnotify.Watcher, root string, event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(fw, event.Name); err != nil {
				w.logger.Warn("failed to watch directory", "dir", event.Name, "err", err)
			}
			return
		}
	}

	if !extract.Supported(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	w.schedule(ctx, root, event.Name)
}

// schedule debounces repeated writes to the same file
func (w *Watcher) schedule(ctx context.Context, root, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok && t.Stop() {
		t.Reset(w.debounce)
		return
	}

	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.pending[path] == t {
			delete(w.pending, path)
		}
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.ingestFile(ctx, root, path)
	})
	w.pending[path] = t
}

// wait lets in-flight ingests finish; unfired timers are released
func (w *Watcher) wait() {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) ingestFile(ctx context.Context, root, path string) {
	req, err := RequestFromPath(root, path)
	if err != nil {
		w.logger.Warn("skipping file", "path", path, "err", err)
		return
	}

	text, err := extract.File(path)
	if err != nil {
		w.logger.Warn("failed to extract text", "path", path, "err", err)
		return
	}
	req.Text = text

	receipt, err := w.ingest(ctx, req)
	if err != nil {
		w.logger.Error("ingest failed", "path", path, "err", err)
		return
	}
	w.logger.Info("ingested", "path", path, "document", receipt.DocumentID, "version", receipt.Version, "chunks", receipt.Chunks)
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
