// Command mpsclogplot renders throughput-vs-concurrency graphs from the
// JSON a mpsclogbench run produces: one PNG per distinct GOMAXPROCS value
// seen in the report, one line per queue implementation.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/heidenstedt/mpsclog/internal/benchreport"
)

// concurrencyStats holds the bottom-5%-average, median, and top-5%-average
// throughput seen at one concurrency level.
type concurrencyStats struct {
	position float64 // category index on the X axis, offset per implementation
	orig     float64 // the actual producer count this point belongs to
	min      float64
	median   float64
	max      float64
}

type statsPoints []concurrencyStats

func (s statsPoints) Len() int                { return len(s) }
func (s statsPoints) XY(i int) (x, y float64) { return s[i].position, s[i].median }
func (s statsPoints) YError(i int) (low, high float64) {
	return s[i].median - s[i].min, s[i].max - s[i].median
}

type categoryTicks struct {
	positions []float64
	labels    []string
}

func (ct categoryTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for i, pos := range ct.positions {
		if pos >= min && pos <= max {
			ticks = append(ticks, plot.Tick{Value: pos, Label: ct.labels[i]})
		}
	}
	return ticks
}

func main() {
	jsonFile := flag.String("jsonfile", "bench-results.json", "path to a mpsclogbench JSON report")
	outputPrefix := flag.String("out", "mpsclog_throughput", "output PNG filename prefix")
	flag.Parse()

	data, err := os.ReadFile(*jsonFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mpsclogplot: reading %s: %v\n", *jsonFile, err)
		os.Exit(1)
	}

	var sessions []benchreport.FullReport
	if err := json.Unmarshal(data, &sessions); err != nil {
		fmt.Fprintf(os.Stderr, "mpsclogplot: parsing %s: %v\n", *jsonFile, err)
		os.Exit(1)
	}

	// procs -> implementation -> producer count -> throughput samples.
	byProcs := make(map[int]map[string]map[float64][]float64)
	for _, session := range sessions {
		for _, b := range session.Benchmarks {
			if b.Pulled == 0 {
				continue
			}
			procs := b.GOMAXPROCS
			if _, ok := byProcs[procs]; !ok {
				byProcs[procs] = make(map[string]map[float64][]float64)
			}
			implMap := byProcs[procs]
			if _, ok := implMap[b.Implementation]; !ok {
				implMap[b.Implementation] = make(map[float64][]float64)
			}
			x := float64(b.NumProducers)
			implMap[b.Implementation][x] = append(implMap[b.Implementation][x], b.Throughput)
		}
	}

	for procs, implMap := range byProcs {
		if err := renderOne(procs, implMap, *outputPrefix); err != nil {
			fmt.Fprintf(os.Stderr, "mpsclogplot: %v\n", err)
		}
	}
}

func renderOne(procs int, implMap map[string]map[float64][]float64, outputPrefix string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Throughput (5%%-avg-min / median / 5%%-avg-max) at GOMAXPROCS=%d", procs)
	p.X.Label.Text = "producer goroutines"
	p.Y.Label.Text = "messages/sec"

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	p.BackgroundColor = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	p.Title.TextStyle.Color = white
	p.X.Label.TextStyle.Color = white
	p.Y.Label.TextStyle.Color = white
	p.X.Color = white
	p.Y.Color = white
	p.X.Tick.Label.Color = white
	p.Y.Tick.Label.Color = white
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.TextStyle.Color = white

	p.Add(plotter.NewGrid())

	concurrencySet := make(map[float64]struct{})
	for _, data := range implMap {
		for conc := range data {
			concurrencySet[conc] = struct{}{}
		}
	}
	var concValues []float64
	for v := range concurrencySet {
		concValues = append(concValues, v)
	}
	sort.Float64s(concValues)

	positions := make([]float64, len(concValues))
	labels := make([]string, len(concValues))
	concIndex := make(map[float64]float64, len(concValues))
	for i, v := range concValues {
		concIndex[v] = float64(i)
		positions[i] = float64(i)
		labels[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	p.X.Tick.Marker = categoryTicks{positions: positions, labels: labels}

	var implNames []string
	for name := range implMap {
		implNames = append(implNames, name)
	}
	sort.Strings(implNames)

	colors := plotutil.SoftColors
	shapes := []draw.GlyphDrawer{draw.CircleGlyph{}, draw.SquareGlyph{}, draw.TriangleGlyph{}}

	offsetRange := 0.3
	offsetStep := 0.0
	if len(implNames) > 0 {
		offsetStep = offsetRange / float64(len(implNames))
	}
	startOffset := -offsetRange/2 + offsetStep/2

	for i, name := range implNames {
		stats := buildStats(implMap[name])
		if len(stats) == 0 {
			continue
		}
		for j := range stats {
			stats[j].position = concIndex[stats[j].orig] + startOffset + float64(i)*offsetStep
		}
		sort.Slice(stats, func(a, b int) bool { return stats[a].position < stats[b].position })

		sp := statsPoints(stats)
		line, err := plotter.NewLine(sp)
		if err != nil {
			return fmt.Errorf("line for %s: %w", name, err)
		}
		line.Color = colors[i%len(colors)]

		points, err := plotter.NewScatter(sp)
		if err != nil {
			return fmt.Errorf("scatter for %s: %w", name, err)
		}
		points.GlyphStyle.Radius = vg.Points(4)
		points.Color = colors[i%len(colors)]
		points.Shape = shapes[i%len(shapes)]

		errBars, err := plotter.NewYErrorBars(sp)
		if err != nil {
			return fmt.Errorf("error bars for %s: %w", name, err)
		}
		errBars.Color = colors[i%len(colors)]

		p.Add(line, points, errBars)
		p.Legend.Add(name, line, points)
	}

	filename := fmt.Sprintf("%s_%d.png", outputPrefix, procs)
	if err := p.Save(10*vg.Inch, 7*vg.Inch, filename); err != nil {
		return fmt.Errorf("saving %s: %w", filename, err)
	}
	fmt.Printf("wrote %s\n", filename)
	return nil
}

func buildStats(byProducers map[float64][]float64) []concurrencyStats {
	var out []concurrencyStats
	for x, vals := range byProducers {
		if len(vals) == 0 {
			continue
		}
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		out = append(out, concurrencyStats{
			orig:   x,
			min:    averageOfRange(sorted, 0.0, 0.05),
			median: median(sorted),
			max:    averageOfRange(sorted, 0.95, 1.0),
		})
	}
	return out
}

func averageOfRange(sorted []float64, startFrac, endFrac float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	start := int(float64(n) * startFrac)
	end := int(float64(n) * endFrac)
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start >= end {
		return median(sorted)
	}
	sum := 0.0
	for i := start; i < end; i++ {
		sum += sorted[i]
	}
	return sum / float64(end-start)
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return 0.5 * (sorted[mid-1] + sorted[mid])
}
