package main

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/kickoff/internal/physics/kicksolver"
)

var palette = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
}

// render writes height.png and track.png to dir and returns their paths.
func render(dir string, series []flightSeries, sightings []kicksolver.Observation) ([]string, error) {
	pHeight := plot.New()
	pHeight.Title.Text = "Ball height"
	pHeight.X.Label.Text = "Time since kick (s)"
	pHeight.Y.Label.Text = "Height (mm)"

	pTrack := plot.New()
	pTrack.Title.Text = "Ground track"
	pTrack.X.Label.Text = "X (mm)"
	pTrack.Y.Label.Text = "Y (mm)"

	for i, s := range series {
		c := palette[i%len(palette)]

		heightPts := make(plotter.XYs, len(s.t))
		trackPts := make(plotter.XYs, len(s.t))
		for j := range s.t {
			heightPts[j] = plotter.XY{X: s.t[j], Y: s.pos[j].Z}
			trackPts[j] = plotter.XY{X: s.pos[j].X, Y: s.pos[j].Y}
		}

		hLine, err := plotter.NewLine(heightPts)
		if err != nil {
			return nil, err
		}
		hLine.Color = c
		hLine.Width = vg.Points(1)
		pHeight.Add(hLine)
		pHeight.Legend.Add(s.name, hLine)

		tLine, err := plotter.NewLine(trackPts)
		if err != nil {
			return nil, err
		}
		tLine.Color = c
		tLine.Width = vg.Points(1)
		pTrack.Add(tLine)
		pTrack.Legend.Add(s.name, tLine)

		if len(s.touchdowns) > 0 {
			tdPts := make(plotter.XYs, len(s.touchdowns))
			for j, td := range s.touchdowns {
				tdPts[j] = plotter.XY{X: td.X, Y: td.Y}
			}
			sc, err := plotter.NewScatter(tdPts)
			if err != nil {
				return nil, err
			}
			sc.GlyphStyle.Color = c
			sc.GlyphStyle.Radius = vg.Points(3)
			pTrack.Add(sc)
		}
	}

	if len(sightings) > 0 {
		pts := make(plotter.XYs, len(sightings))
		for i, o := range sightings {
			pts[i] = plotter.XY{X: o.Ground.X, Y: o.Ground.Y}
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = palette[2]
		sc.GlyphStyle.Radius = vg.Points(1.5)
		pTrack.Add(sc)
		pTrack.Legend.Add("sightings", sc)
	}

	for _, p := range []*plot.Plot{pHeight, pTrack} {
		p.Legend.Top = true
		p.Legend.Left = false
		p.Legend.XOffs = -10
		p.Legend.YOffs = -10
	}

	heightFile := filepath.Join(dir, "height.png")
	if err := pHeight.Save(10*vg.Inch, 5*vg.Inch, heightFile); err != nil {
		return nil, fmt.Errorf("save height plot: %w", err)
	}
	trackFile := filepath.Join(dir, "track.png")
	if err := pTrack.Save(8*vg.Inch, 8*vg.Inch, trackFile); err != nil {
		return nil, fmt.Errorf("save track plot: %w", err)
	}
	return []string{heightFile, trackFile}, nil
}
