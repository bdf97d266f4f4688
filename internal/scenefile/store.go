package scenefile

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"scene-editor/internal/scene"
)

// DefaultSaveDelay is how long the graph must be dirty before Flush writes it.
const DefaultSaveDelay = 500 * time.Millisecond

var (
	saves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenefile_saves_total",
		Help: "Scene file writes.",
	})
	reloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenefile_reloads_total",
		Help: "Scene file reload attempts by outcome.",
	}, []string{"outcome"})
)

// Store keeps a graph and its YAML file in step. Edits mark the store dirty and Flush
// writes them out; Reload pulls in external edits. The content hash of the last read or
// written file lets Reload ignore the store's own writes.
//
// Store is not safe for concurrent use; call it from the editor's main loop.
type Store struct {
	path      string
	graph     *scene.Graph
	log       *slog.Logger
	SaveDelay time.Duration

	dirty      bool
	dirtySince time.Time
	lastHash   uint64
	cancels    []func()
}

// NewStore binds path to g and starts tracking edits.
func NewStore(path string, g *scene.Graph, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{path: path, graph: g, log: log, SaveDelay: DefaultSaveDelay}
	s.cancels = append(s.cancels,
		g.OnTransformCommit(func(*scene.Node) { s.markDirty() }),
		g.OnStructureChange(s.markDirty),
	)
	return s
}

func (s *Store) markDirty() {
	if !s.dirty {
		s.dirty = true
		s.dirtySince = time.Now()
	}
}

// Path returns the scene file path.
func (s *Store) Path() string { return s.path }

// Dirty reports whether there are unsaved edits.
func (s *Store) Dirty() bool { return s.dirty }

// Load reads the file and applies it to the graph. A missing file leaves the graph as
// it is.
func (s *Store) Load() (Stats, error) {
	st, _, err := s.read(true)
	return st, err
}

// Reload is Load for external changes: when the file content matches what the store
// last read or wrote, nothing happens and changed is false.
func (s *Store) Reload() (st Stats, changed bool, err error) {
	st, changed, err = s.read(false)
	switch {
	case err != nil:
		reloads.WithLabelValues("error").Inc()
	case changed:
		reloads.WithLabelValues("applied").Inc()
	default:
		reloads.WithLabelValues("unchanged").Inc()
	}
	return st, changed, err
}

func (s *Store) read(force bool) (Stats, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Stats{}, false, nil
	}
	if err != nil {
		return Stats{}, false, fmt.Errorf("read %s: %w", s.path, err)
	}
	sum := xxhash.Sum64(data)
	if !force && sum == s.lastHash {
		return Stats{}, false, nil
	}
	doc, err := Decode(data)
	if err != nil {
		return Stats{}, false, fmt.Errorf("%s: %w", s.path, err)
	}
	st, err := Reconcile(s.graph, doc)
	s.lastHash = sum
	s.dirty = false
	if err != nil {
		return st, true, fmt.Errorf("apply %s: %w", s.path, err)
	}
	s.log.Info("scene loaded", "path", s.path, "created", st.Created, "updated", st.Updated, "destroyed", st.Destroyed)
	return st, true, nil
}

// Save writes the graph out. It is skipped when the content is unchanged since the
// last read or write.
func (s *Store) Save() error {
	data, err := Encode(Snapshot(s.graph))
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	sum := xxhash.Sum64(data)
	s.dirty = false
	if sum == s.lastHash {
		if _, err := os.Stat(s.path); err == nil {
			return nil
		}
	}
	if err := writeAtomic(s.path, data); err != nil {
		return err
	}
	s.lastHash = sum
	saves.Inc()
	s.log.Debug("scene saved", "path", s.path, "bytes", len(data))
	return nil
}

// Flush saves when the graph has been dirty for at least SaveDelay.
func (s *Store) Flush(now time.Time) error {
	if !s.dirty || now.Sub(s.dirtySince) < s.SaveDelay {
		return nil
	}
	return s.Save()
}

// Close stops tracking edits. Pending edits are not written; call Save first if needed.
func (s *Store) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
}

// writeAtomic writes through a temp file in the same directory so the watcher never
// sees a half-written scene.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
