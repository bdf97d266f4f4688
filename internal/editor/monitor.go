package editor

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"scene-editor/internal/pick"
	"scene-editor/internal/scene"
)

var (
	sweeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "editor_sweeps_total",
		Help: "Consistency sweeps run.",
	})
	evictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "editor_evictions_total",
		Help: "Stale nodes evicted from the selection.",
	})
	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "editor_sweep_duration_seconds",
		Help:    "Time spent in one consistency sweep.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
	})
)

// SweepResult summarises one sweep.
type SweepResult struct {
	Evicted  int
	Detached bool
	Pruned   int
	Regroup  int
	Deferred bool
}

// ConsistencyMonitor evicts stale selection entries and detaches the gizmo from stale
// nodes. It never acts during a drag; a sweep due then runs when the drag ends.
type ConsistencyMonitor struct {
	graph     *scene.Graph
	selection *SelectionManager
	gizmo     *GizmoController
	index     *pick.Index
	log       *slog.Logger

	sweepTimer *Ticker
	indexTimer *Ticker
	pending    bool
}

// NewConsistencyMonitor wires a monitor. index may be nil.
func NewConsistencyMonitor(g *scene.Graph, sel *SelectionManager, gizmo *GizmoController, index *pick.Index, sweepPeriod, indexPeriod time.Duration, log *slog.Logger) *ConsistencyMonitor {
	if log == nil {
		log = slog.Default()
	}
	m := &ConsistencyMonitor{
		graph:      g,
		selection:  sel,
		gizmo:      gizmo,
		index:      index,
		log:        log,
		sweepTimer: NewTicker(sweepPeriod),
		indexTimer: NewTicker(indexPeriod),
	}
	if gizmo != nil {
		gizmo.onDragEnd = m.dragEnded
	}
	return m
}

// Start arms both timers. The index timer only matters in poll mode.
func (m *ConsistencyMonitor) Start(now time.Time) {
	m.sweepTimer.Start(now)
	if m.index != nil && m.index.Mode() == pick.ModePoll {
		m.indexTimer.Start(now)
	}
}

// Stop disarms both timers.
func (m *ConsistencyMonitor) Stop() {
	m.sweepTimer.Stop()
	m.indexTimer.Stop()
}

// Running reports whether the sweep timer is armed.
func (m *ConsistencyMonitor) Running() bool {
	return m.sweepTimer.Running()
}

// Pending reports whether a sweep was deferred by a drag.
func (m *ConsistencyMonitor) Pending() bool {
	return m.pending
}

// Tick runs whatever is due at now.
func (m *ConsistencyMonitor) Tick(now time.Time) {
	if m.sweepTimer.Due(now) {
		m.Sweep()
	}
	if m.indexTimer.Due(now) && m.index != nil && (m.gizmo == nil || m.gizmo.State() != GizmoDragging) {
		if err := m.index.Rebuild(m.graph.Root()); err != nil {
			m.log.Warn("rebuild pick index", "err", err)
		}
	}
}

// Stale reports whether n left the graph or lost its usable transform.
func (m *ConsistencyMonitor) Stale(n *scene.Node) bool {
	return !m.graph.IsAttached(n) || !n.CanTransform()
}

// Sweep checks every selected node and the gizmo's node once.
func (m *ConsistencyMonitor) Sweep() SweepResult {
	if m.gizmo != nil && m.gizmo.State() == GizmoDragging {
		m.pending = true
		return SweepResult{Deferred: true}
	}
	m.pending = false
	start := time.Now()
	defer func() {
		sweeps.Inc()
		sweepDuration.Observe(time.Since(start).Seconds())
	}()

	var res SweepResult
	for _, n := range m.selection.Nodes() {
		if m.Stale(n) && m.selection.Evict(n.ID()) {
			res.Evicted++
		}
	}
	if m.gizmo != nil {
		if n := m.gizmo.Node(); n != nil && m.Stale(n) {
			m.gizmo.ForceDetach()
			res.Detached = true
		}
	}
	if h := m.selection.highlights; h != nil {
		res.Regroup = h.Refresh()
	}
	if m.index != nil && m.index.Mode() == pick.ModePoll {
		res.Pruned = m.index.Prune(m.Stale)
	}
	if res.Evicted > 0 {
		evictions.Add(float64(res.Evicted))
		m.log.Info("evicted stale selection", "count", res.Evicted, "gizmo_detached", res.Detached)
	}
	return res
}

func (m *ConsistencyMonitor) dragEnded() {
	if m.pending {
		m.Sweep()
	}
}
