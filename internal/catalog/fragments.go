package catalog

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Parts of Prometheus metric names.
const (
	namespace = "sprunner"
	subsystem = "fragments"
)

// FragmentRepository is the process-wide, ref-counted map from plan hash to
// loaded fragment id, described in §5 ("Shared resources") as the runner's
// sole entry point into the external plan repository.
//
// It is interior-locked (read-heavy, a single RWMutex is enough at this
// module's scale) following the same registry shape as the teacher's
// cursor registries: one struct owning its lock, exposing
// [FragmentRepository.Describe]/[FragmentRepository.Collect] for
// Prometheus, and a ref-counted entry per key instead of per-connection
// cleanup via finalizers.
type FragmentRepository struct {
	mu      sync.RWMutex
	entries map[PlanHash]*fragmentEntry

	loads *prometheus.CounterVec
	refs  prometheus.Gauge
}

type fragmentEntry struct {
	fragment Fragment
	refs     int
}

// NewFragmentRepository returns an empty repository.
func NewFragmentRepository() *FragmentRepository {
	return &FragmentRepository{
		entries: map[PlanHash]*fragmentEntry{},
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "loads_total",
				Help:      "Total number of loadOrAddRefPlanFragment calls, by outcome.",
			},
			[]string{"outcome"},
		),
		refs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "refs",
			Help:      "Current number of distinct referenced plan fragments.",
		}),
	}
}

// LoadOrAddRef loads the fragment identified by hash, registering a new
// reference count if it is not already present. It is the runner's sole
// entry point into the plan repository (§3, §5): queueing ad-hoc SQL calls
// this once per fragment (aggregator, and collector when present).
func (r *FragmentRepository) LoadOrAddRef(hash PlanHash, load func() (Fragment, error)) (Fragment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[hash]; ok {
		e.refs++
		r.loads.WithLabelValues("hit").Inc()

		return e.fragment, nil
	}

	f, err := load()
	if err != nil {
		r.loads.WithLabelValues("error").Inc()

		return Fragment{}, err
	}

	r.entries[hash] = &fragmentEntry{fragment: f, refs: 1}
	r.loads.WithLabelValues("miss").Inc()
	r.refs.Set(float64(len(r.entries)))

	return f, nil
}

// Release drops one reference to hash, removing the entry once its count
// reaches zero.
func (r *FragmentRepository) Release(hash PlanHash) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[hash]
	if !ok {
		return
	}

	e.refs--
	if e.refs <= 0 {
		delete(r.entries, hash)
	}

	r.refs.Set(float64(len(r.entries)))
}

// Describe implements [prometheus.Collector].
func (r *FragmentRepository) Describe(ch chan<- *prometheus.Desc) {
	r.loads.Describe(ch)
	r.refs.Describe(ch)
}

// Collect implements [prometheus.Collector].
func (r *FragmentRepository) Collect(ch chan<- prometheus.Metric) {
	r.loads.Collect(ch)
	r.refs.Collect(ch)
}

var _ prometheus.Collector = (*FragmentRepository)(nil)
