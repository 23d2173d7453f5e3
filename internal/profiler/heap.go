// Package profiler collects approximate live-heap sizes on a fixed
// cadence while a measurement iteration runs. It is deliberately naive:
// no GC is forced, and every raw sample is emitted twice (tagged for
// averaging and for the max) so the downstream aggregation step owns
// the reduction.
package profiler

import (
	"runtime"
	"time"

	"github.com/ahoffer/benchtab/internal/result"
)

const (
	DefaultInitialDelay = 10 * time.Millisecond
	DefaultPeriod       = 100 * time.Millisecond
)

// HeapSampler samples heap occupancy between Start and Stop. Only the
// background goroutine writes the sample sequence; Stop blocks until
// that goroutine has exited, so conversion reads race-free without a
// lock. The zero value is idle; samplers are not safe for concurrent
// use by multiple iterations.
type HeapSampler struct {
	initialDelay time.Duration
	period       time.Duration

	samples []uint64
	stop    chan struct{}
	done    chan struct{}
}

// NewHeapSampler builds a sampler that waits initialDelay after Start,
// then records one sample every period. A non-positive period disables
// sampling: Start and Stop still work, and Stop converts an empty
// sample set.
func NewHeapSampler(initialDelay, period time.Duration) *HeapSampler {
	return &HeapSampler{initialDelay: initialDelay, period: period}
}

// Start arms the sampler for a new iteration. Samples from any prior
// iteration are discarded. Starting an already-sampling sampler is a
// no-op.
func (s *HeapSampler) Start() {
	if s.stop != nil || s.period <= 0 {
		return
	}
	s.samples = nil
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

func (s *HeapSampler) run(stop, done chan struct{}) {
	defer close(done)

	delay := time.NewTimer(s.initialDelay)
	defer delay.Stop()
	select {
	case <-delay.C:
	case <-stop:
		return
	}
	s.samples = append(s.samples, heapInUse())

	tick := time.NewTicker(s.period)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			s.samples = append(s.samples, heapInUse())
		case <-stop:
			return
		}
	}
}

// Stop cancels sampling, waits for the background goroutine to exit,
// and converts the recorded samples into scalar observations: for each
// sample one "Heap-Avg" metric tagged for averaging and one "Heap-Max"
// metric tagged for the max, both in bytes. Stopping an idle sampler is
// a no-op and returns no observations.
func (s *HeapSampler) Stop() []result.Metric {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	<-s.done
	s.stop = nil
	s.done = nil

	metrics := make([]result.Metric, 0, 2*len(s.samples))
	for _, sample := range s.samples {
		v := float64(sample)
		metrics = append(metrics,
			result.NewScalar("Heap-Avg", v, "bytes", result.PolicyAverage),
			result.NewScalar("Heap-Max", v, "bytes", result.PolicyMax),
		)
	}
	return metrics
}

// heapInUse reports bytes of live heap objects: everything allocated
// and not yet freed, as the runtime currently accounts it.
func heapInUse() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}
