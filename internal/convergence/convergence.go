// Package convergence records per-iteration correction norms during a solve
// and renders them after the run: static PNG plots via gonum/plot and an
// interactive HTML chart via go-echarts.
package convergence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Point is one recorded iteration of one observation.
type Point struct {
	Iteration      int
	CorrectionNorm float64
}

// Recorder accumulates correction norms keyed by observation number. Safe
// for concurrent use if the solve loop is ever partitioned by observation.
type Recorder struct {
	mu     sync.Mutex
	series map[string][]Point
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{series: make(map[string][]Point)}
}

// Record appends one iteration's correction norm for an observation.
func (r *Recorder) Record(observation string, iteration int, correctionNorm float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.series[observation] = append(r.series[observation], Point{
		Iteration:      iteration,
		CorrectionNorm: correctionNorm,
	})
}

// Series returns a copy of the recorded points for one observation.
func (r *Recorder) Series(observation string) []Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Point(nil), r.series[observation]...)
}

// observations returns the recorded observation numbers in sorted order.
func (r *Recorder) observations() []string {
	names := make([]string, 0, len(r.series))
	for name := range r.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WritePlots renders one correction-norm PNG per observation into dir.
func (r *Recorder) WritePlots(dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create plot directory: %w", err)
	}

	for name, points := range r.series {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("Observation %s correction norm", name)
		p.X.Label.Text = "iteration"
		p.Y.Label.Text = "‖correction‖"

		pts := make(plotter.XYs, len(points))
		for i, pt := range points {
			pts[i].X = float64(pt.Iteration)
			pts[i].Y = pt.CorrectionNorm
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to build line for observation %s: %w", name, err)
		}
		line.Width = vg.Points(1)
		p.Add(line)

		file := filepath.Join(dir, fmt.Sprintf("obs_%s_convergence.png", name))
		if err := p.Save(10*vg.Inch, 5*vg.Inch, file); err != nil {
			return fmt.Errorf("failed to save plot %s: %w", file, err)
		}
	}
	return nil
}

// WriteHTML renders all observations onto one go-echarts line chart.
func (r *Recorder) WriteHTML(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Bundle adjustment convergence",
			Subtitle: "correction norm per iteration",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "iteration"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "norm"}),
	)

	maxIterations := 0
	for _, points := range r.series {
		if n := len(points); n > maxIterations {
			maxIterations = n
		}
	}
	xs := make([]string, maxIterations)
	for i := range xs {
		xs[i] = strconv.Itoa(i + 1)
	}
	line.SetXAxis(xs)

	for _, name := range r.observations() {
		data := make([]opts.LineData, len(r.series[name]))
		for i, pt := range r.series[name] {
			data[i] = opts.LineData{Value: pt.CorrectionNorm}
		}
		line.AddSeries(name, data)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()
	if err := line.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
