package storage

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotPNG renders a session's tracking errors and thrust to an image file.
// The format follows the file extension (png, svg, pdf).
func (s *Store) PlotPNG(id, path string) error {
	rows, err := s.LoadTicks(id)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("storage: session %s has no ticks", id)
	}

	p := plot.New()
	p.Title.Text = "Session " + id
	p.X.Label.Text = "t (s)"
	p.Y.Label.Text = "error / thrust"
	p.Add(plotter.NewGrid())

	series := []struct {
		name  string
		color color.RGBA
		value func(TickRow) float64
	}{
		{"linear error", color.RGBA{R: 66, G: 135, B: 245, A: 255}, func(r TickRow) float64 { return r.ErrLinear }},
		{"angular error", color.RGBA{R: 245, G: 158, B: 66, A: 255}, func(r TickRow) float64 { return r.ErrAngular }},
		{"left", color.RGBA{R: 120, G: 200, B: 120, A: 255}, func(r TickRow) float64 { return r.Left }},
		{"right", color.RGBA{R: 200, G: 90, B: 160, A: 255}, func(r TickRow) float64 { return r.Right }},
	}

	for _, sr := range series {
		pts := make(plotter.XYs, len(rows))
		for i, r := range rows {
			pts[i].X = r.T
			pts[i].Y = sr.value(r)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = sr.color
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(sr.name, line)
	}
	p.Legend.Top = true

	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}
