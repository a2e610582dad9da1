// Command mpsclogbench drives internal/testbench against both queue
// variants across a range of producer counts at the GOMAXPROCS value in
// effect (recorded with each result, not varied), reporting throughput,
// dropped-message counts (ring only), and basic system information.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/heidenstedt/mpsclog/internal/benchreport"
	"github.com/heidenstedt/mpsclog/internal/queue"
	"github.com/heidenstedt/mpsclog/internal/testbench"
	"github.com/heidenstedt/mpsclog/pkg/config"
	"github.com/heidenstedt/mpsclog/pkg/linkedqueue"
	"github.com/heidenstedt/mpsclog/pkg/ringqueue"
)

type implementation struct {
	name     string
	newQueue func(capacity uint64) queue.Queue[*int]
}

func implementations() []implementation {
	return []implementation{
		{
			name: "ringqueue",
			newQueue: func(capacity uint64) queue.Queue[*int] {
				q, err := ringqueue.New[*int](capacity)
				if err != nil {
					panic(err)
				}
				return q
			},
		},
		{
			name: "linkedqueue",
			newQueue: func(capacity uint64) queue.Queue[*int] {
				return linkedqueue.New[*int]()
			},
		},
	}
}

func gatherSystemInfo() benchreport.SystemInfo {
	info := benchreport.SystemInfo{
		NumCPU: runtime.NumCPU(),
		GOARCH: runtime.GOARCH,
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		info.CPUModel = infos[0].ModelName
		info.CPUSpeedMHz = infos[0].Mhz
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
	}
	return info
}

func main() {
	iterations := flag.Int("iter", 3, "number of test iterations per concurrency setting")
	producersFlag := flag.String("producers", "1,4,16", "comma-separated producer counts to test")
	duration := flag.Duration("duration", 2*time.Second, "duration of each timed run")
	ringCapacityFlag := flag.Uint64("ring-capacity", 4096, "ring queue capacity (rounded up to a power of two)")
	jsonExport := flag.Bool("json", false, "append results to bench-results.json")
	showProgress := flag.Bool("progress", true, "show a progress bar while benchmarking")
	flag.Parse()

	producerCounts, err := parseIntList(*producersFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mpsclogbench: %v\n", err)
		os.Exit(1)
	}

	ringCapacity := config.Config{RingCapacity: *ringCapacityFlag}.NormalizedRingCapacity()

	impls := implementations()
	sysInfo := gatherSystemInfo()

	totalRuns := len(producerCounts) * *iterations * len(impls)
	var bar *progressbar.ProgressBar
	if *showProgress {
		bar = progressbar.Default(int64(totalRuns), "benchmarking")
	}

	var results []benchreport.BenchmarkResult
	for _, producers := range producerCounts {
		for iteration := 0; iteration < *iterations; iteration++ {
			for _, impl := range impls {
				runtime.GC()
				q := impl.newQueue(ringCapacity)

				var reportedCapacity uint64
				if sized, ok := q.(queue.Sized); ok {
					reportedCapacity = sized.Capacity()
				}

				pushed, dropped, pulled, elapsed := testbench.RunTimedTest(
					q,
					testbench.Config{NumProducers: producers},
					*duration,
					func(i int) *int { v := i; return &v },
				)

				results = append(results, benchreport.BenchmarkResult{
					Implementation: impl.name,
					NumProducers:   producers,
					GOMAXPROCS:     runtime.GOMAXPROCS(0),
					RingCapacity:   reportedCapacity,
					Pushed:         pushed,
					Dropped:        dropped,
					Pulled:         pulled,
					TestDuration:   duration.String(),
					ActualElapsed:  elapsed.String(),
					Throughput:     float64(pulled) / elapsed.Seconds(),
					Timestamp:      time.Now().Unix(),
					GoVersion:      runtime.Version(),
				})

				if bar != nil {
					_ = bar.Add(1)
				}
			}
		}
	}

	if bar != nil {
		fmt.Println()
	}

	for _, r := range results {
		fmt.Printf("%-12s producers=%-4d pushed=%-8d dropped=%-6d pulled=%-8d throughput=%.0f msg/s\n",
			r.Implementation, r.NumProducers, r.Pushed, r.Dropped, r.Pulled, r.Throughput)
	}

	if *jsonExport {
		if err := exportJSON("bench-results.json", sysInfo, results); err != nil {
			fmt.Fprintf(os.Stderr, "mpsclogbench: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("wrote bench-results.json")
	}
}

func exportJSON(filename string, sysInfo benchreport.SystemInfo, results []benchreport.BenchmarkResult) error {
	var previous []benchreport.FullReport
	if data, err := os.ReadFile(filename); err == nil && len(data) > 0 {
		_ = json.Unmarshal(data, &previous)
	}
	report := benchreport.FullReport{
		SessionTime: time.Now().Format(time.RFC3339),
		SystemInfo:  sysInfo,
		Benchmarks:  results,
	}
	updated := append(previous, report)
	data, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling results: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return nil
}

func parseIntList(s string) ([]int, error) {
	var out []int
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			part := s[start:i]
			start = i + 1
			if part == "" {
				continue
			}
			var v int
			if _, err := fmt.Sscanf(part, "%d", &v); err != nil {
				return nil, fmt.Errorf("invalid producer count %q: %w", part, err)
			}
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no producer counts given")
	}
	return out, nil
}
