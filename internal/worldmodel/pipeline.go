package worldmodel

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/kickoff/internal/monitoring"
	"github.com/banshee-data/kickoff/internal/timeutil"
	"github.com/banshee-data/kickoff/internal/vision/l2frames"
)

// Pipeline feeds raw camera records through the ingestor into a Model.
type Pipeline struct {
	ingest *l2frames.Ingestor
	model  *Model
}

// NewPipeline wires an ingestor on clock to a fresh model. A nil clock
// uses the real one.
func NewPipeline(cfg Config, clock timeutil.Clock, cameras map[int]r3.Vec, diag *monitoring.Diagnostics) *Pipeline {
	return &Pipeline{
		ingest: l2frames.NewIngestor(cfg.Frames, clock, diag),
		model:  NewModel(cfg, cameras, diag),
	}
}

// Handle converts raw at the current local time and updates the model.
// It reports whether the frame was accepted.
func (p *Pipeline) Handle(raw l2frames.RawFrame) bool {
	f, ok := p.ingest.Ingest(raw)
	if ok {
		p.model.Update(f)
	}
	return ok
}

// HandleAt is Handle with an explicit local arrival time.
func (p *Pipeline) HandleAt(raw l2frames.RawFrame, arrival int64) bool {
	f, ok := p.ingest.IngestAt(raw, arrival)
	if ok {
		p.model.Update(f)
	}
	return ok
}

// Model returns the world model fed by the pipeline.
func (p *Pipeline) Model() *Model { return p.model }

// Sources returns per-camera ingestion statistics.
func (p *Pipeline) Sources() []l2frames.SourceStats { return p.ingest.Stats() }
