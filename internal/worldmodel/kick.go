package worldmodel

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/kickoff/internal/geometry"
	"github.com/banshee-data/kickoff/internal/physics/ballflight"
	"github.com/banshee-data/kickoff/internal/physics/kicksolver"
	"github.com/banshee-data/kickoff/internal/units"
	"github.com/banshee-data/kickoff/internal/vision/l2frames"
)

// checkKick feeds an open kick window, or opens one when the raw ball
// speed since the same camera's previous sighting jumps above the
// filtered speed. Comparing sightings from one camera keeps the
// parallax of an airborne ball out of the raw speed.
func (m *Model) checkKick(det l2frames.BallDetection, predVel r2.Vec) {
	if m.window != nil {
		m.window.add(det)
		if len(m.window.obs) >= m.cfg.KickWindowSize {
			m.solveKick()
		}
		return
	}

	if m.followsFlight(det) {
		return
	}

	last, ok := m.lastBall[det.CameraID]
	if !ok || det.Timestamp <= last.Timestamp {
		return
	}
	dt := units.NanosToSeconds(det.Timestamp - last.Timestamp)
	raw := r2.Scale(1/dt, r2.Sub(geometry.XY(det.Pos), geometry.XY(last.Pos)))
	if r2.Norm(raw)-r2.Norm(predVel) <= m.cfg.KickSpeedJump {
		return
	}

	kickPos := r3.Vec{X: last.Pos.X, Y: last.Pos.Y}
	logf("kick suspected at (%.0f, %.0f): raw speed %.0f mm/s", kickPos.X, kickPos.Y, r2.Norm(raw))

	// Until the solver answers, the flight is a straight roll at the raw
	// speed from the last sighting at rest.
	rule := ballflight.NewState(kickPos, geometry.WithZ(raw, 0), last.Timestamp, m.cfg.Flight)
	m.flight = &rule
	m.window = &kickWindow{pos: kickPos}
	m.window.add(det)
}

// followsFlight reports whether det agrees with the current flight as
// seen by its camera. A sighting that strays beyond the ball gate ends
// the flight.
func (m *Model) followsFlight(det l2frames.BallDetection) bool {
	if m.flight == nil || det.Timestamp < m.flight.KickTimestamp {
		return false
	}
	pos := m.flight.StateAt(det.Timestamp).Pos
	want := geometry.XY(pos)
	if cam, ok := m.cameras[det.CameraID]; ok {
		if g, ok := ballflight.ProjectToGround(pos, cam); ok {
			want = g
		}
	}
	if r2.Norm(r2.Sub(geometry.XY(det.Pos), want)) <= m.cfg.BallGate {
		return true
	}
	logf("ball left its predicted flight %s", m.flight.ID)
	m.flight = nil
	return false
}

func (w *kickWindow) add(det l2frames.BallDetection) {
	if n := len(w.obs); n > 0 && det.Timestamp < w.obs[n-1].Timestamp {
		return
	}
	w.obs = append(w.obs, kicksolver.Observation{
		Ground:    geometry.XY(det.Pos),
		CameraID:  det.CameraID,
		Timestamp: det.Timestamp,
	})
}

func (m *Model) solveKick() {
	w := m.window
	m.window = nil

	fit, err := m.solver.Solve(w.pos, w.obs, m.cameras)
	if err != nil {
		// The rule-based flight stays authoritative.
		return
	}
	state := fit.FlightState(m.cfg.Flight)
	m.flight = &state
	logf("kick fitted: v=(%.0f, %.0f, %.0f) mm/s, rms %.1f mm after %d iterations",
		fit.Velocity.X, fit.Velocity.Y, fit.Velocity.Z, fit.RMS, fit.Iterations)
}
