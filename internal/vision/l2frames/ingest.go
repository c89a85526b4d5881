package l2frames

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/banshee-data/kickoff/internal/monitoring"
	"github.com/banshee-data/kickoff/internal/timeutil"
)

// SourceStats summarises one camera's ingestion.
type SourceStats struct {
	CameraID int
	Accepted int64
	Dropped  int64
	Offset   int64 // local − sensor clock offset, nanoseconds
}

type source struct {
	mu       sync.Mutex
	conv     *Converter
	accepted int64
	dropped  int64
}

// Ingestor fans in RawFrames from any number of producer goroutines.
// Each camera gets its own Converter, and calls for the same camera are
// serialised; different cameras convert in parallel.
type Ingestor struct {
	cfg  ConverterConfig
	mono *timeutil.Monotonic
	diag *monitoring.Diagnostics
	ids  atomic.Uint64

	mu      sync.RWMutex
	sources map[int]*source
}

// NewIngestor creates an ingestor whose converters share one local time
// domain anchored on clock.
func NewIngestor(cfg ConverterConfig, clock timeutil.Clock, diag *monitoring.Diagnostics) *Ingestor {
	return &Ingestor{
		cfg:     cfg,
		mono:    timeutil.NewMonotonic(clock),
		diag:    diag,
		sources: make(map[int]*source),
	}
}

func (in *Ingestor) source(cameraID int) *source {
	in.mu.RLock()
	src, ok := in.sources[cameraID]
	in.mu.RUnlock()
	if ok {
		return src
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if src, ok = in.sources[cameraID]; ok {
		return src
	}
	src = &source{conv: NewConverter(cameraID, in.cfg, in.mono, &in.ids, in.diag)}
	in.sources[cameraID] = src
	return src
}

// Ingest converts raw with the current local time as arrival time.
func (in *Ingestor) Ingest(raw RawFrame) (Frame, bool) {
	src := in.source(raw.CameraID)
	src.mu.Lock()
	defer src.mu.Unlock()
	f, ok := src.conv.Convert(raw)
	return in.record(src, f, ok)
}

// IngestAt converts raw with an explicit local arrival time.
func (in *Ingestor) IngestAt(raw RawFrame, arrival int64) (Frame, bool) {
	src := in.source(raw.CameraID)
	src.mu.Lock()
	defer src.mu.Unlock()
	f, ok := src.conv.ConvertAt(raw, arrival)
	return in.record(src, f, ok)
}

func (in *Ingestor) record(src *source, f Frame, ok bool) (Frame, bool) {
	if ok {
		src.accepted++
	} else {
		src.dropped++
	}
	return f, ok
}

// Now returns the current local monotonic time.
func (in *Ingestor) Now() int64 {
	return in.mono.Nanos()
}

// Stats returns per-camera counters ordered by camera id.
func (in *Ingestor) Stats() []SourceStats {
	in.mu.RLock()
	srcs := make(map[int]*source, len(in.sources))
	for id, s := range in.sources {
		srcs[id] = s
	}
	in.mu.RUnlock()

	out := make([]SourceStats, 0, len(srcs))
	for id, s := range srcs {
		s.mu.Lock()
		out = append(out, SourceStats{
			CameraID: id,
			Accepted: s.accepted,
			Dropped:  s.dropped,
			Offset:   s.conv.Synchronizer().Offset(),
		})
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CameraID < out[j].CameraID })
	return out
}
