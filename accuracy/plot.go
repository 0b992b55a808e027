// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package accuracy

import (
	"errors"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotAbundance writes a bar chart of the read count for each identifier
// in c, most abundant first, to file. The image format is taken from the
// file extension.
func PlotAbundance(c Counts, file string) error {
	if len(c) == 0 {
		return errors.New("accuracy: no identifiers to plot")
	}
	ids := c.IDs()
	sort.SliceStable(ids, func(i, j int) bool { return c[ids[i]] > c[ids[j]] })
	vals := make(plotter.Values, len(ids))
	for i, id := range ids {
		vals[i] = float64(c[id])
	}

	p := plot.New()
	p.Title.Text = "Simulated read abundance"
	p.Y.Label.Text = "Reads"
	bars, err := plotter.NewBarChart(vals, vg.Points(8))
	if err != nil {
		return err
	}
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(ids...)
	p.X.Tick.Label.Rotation = 1.2

	w := 2*vg.Inch + vg.Length(len(ids))*vg.Points(12)
	return p.Save(w, 4*vg.Inch, file)
}
