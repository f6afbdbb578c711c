package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/interval"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/metrics"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/model"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const sectionsPerEvent = 5

type ShapeType int

const (
	disjoint    ShapeType = iota // Event i owns [5i, 5i+5): every event fits, the worst case for exact search
	overlapping                  // Sections span three units, so neighbouring events compete
)

var shapeTypes = map[ShapeType]string{
	disjoint:    "disjoint",
	overlapping: "overlapping",
}

type BenchmarkCase struct {
	Shape  ShapeType
	Events int
}

type BenchmarkResult struct {
	Case     BenchmarkCase
	Mode     string
	Frontier uint // 0 for exact runs
	Weight   float64
	Picks    int
	Duration time.Duration
	Verified bool
}

var (
	sizes      []int
	frontiers  []uint
	exactLimit int
	outPath    string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:          "benchmark",
		Short:        "Compare exact and approximate schedule search on synthetic inputs",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runBenchmark,
	}
)

func init() {
	rootCmd.Flags().IntSliceVar(&sizes, "events", []int{4, 6, 100, 1000}, "Number of events per synthetic input")
	rootCmd.Flags().UintSliceVar(&frontiers, "frontier", []uint{1, 50, model.DefaultMaxFrontier}, "Frontier capacities for approximate runs")
	rootCmd.Flags().IntVar(&exactLimit, "exact-limit", 6, "Largest input also solved by exact search")
	rootCmd.Flags().StringVar(&outPath, "out", "benchmark_results.csv", "CSV file where results are written")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Log every search")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("benchmark: %v", err)
	}
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	logger := zap.NewNop()
	if verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return fmt.Errorf("cannot build logger: %v", err)
		}
		defer func() { _ = logger.Sync() }()
	}

	results := make([]BenchmarkResult, 0)
	for _, benchmarkCase := range getCases(sizes) {
		fmt.Fprintf(cmd.OutOrStdout(), "Benchmarking %v input with %v events\n", shapeTypes[benchmarkCase.Shape], benchmarkCase.Events)

		if benchmarkCase.Events <= exactLimit {
			results = append(results, measure(benchmarkCase, metrics.ModeExact, 0, logger))
		}
		for _, frontier := range frontiers {
			results = append(results, measure(benchmarkCase, metrics.ModeApprox, frontier, logger))
		}
	}

	file, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	return toCsv(file, results)
}

func getCases(sizes []int) []BenchmarkCase {
	cases := make([]BenchmarkCase, 0, 2*len(sizes))
	for _, shape := range []ShapeType{disjoint, overlapping} {
		for _, size := range sizes {
			cases = append(cases, BenchmarkCase{Shape: shape, Events: size})
		}
	}
	return cases
}

// Builds n events of five unit sections each, weighted i+3
func syntheticEvents(shape ShapeType, n int) []model.Event {
	return lo.Times(n, func(i int) model.Event {
		sections := lo.Times(sectionsPerEvent, func(j int) []interval.Interval {
			switch shape {
			case overlapping:
				start := float64(2*i + j)
				return []interval.Interval{{Start: start, End: start + 3}}
			default:
				start := float64(sectionsPerEvent*i + j)
				return []interval.Interval{{Start: start, End: start + 1}}
			}
		})
		return model.Event{Id: uint64(i), Weight: float64(i + 3), Sections: sections}
	})
}

func measure(benchmarkCase BenchmarkCase, mode string, frontier uint, logger *zap.Logger) BenchmarkResult {
	scheduler := model.NewScheduler(model.WithLogger(logger), model.WithMaxSectionsPerEvent(sectionsPerEvent))
	for _, event := range syntheticEvents(benchmarkCase.Shape, benchmarkCase.Events) {
		if err := scheduler.AddEvent(event); err != nil {
			log.Panicf("cannot register synthetic event %v: %v", event.Id, err)
		}
	}

	var schedule []model.Pick
	var weight float64
	start := time.Now()
	if mode == metrics.ModeExact {
		schedule, weight = scheduler.BuildOptimalSchedule()
	} else {
		schedule, weight = scheduler.BuildApproxSchedule(frontier)
	}
	duration := time.Since(start)

	return BenchmarkResult{
		Case:     benchmarkCase,
		Mode:     mode,
		Frontier: frontier,
		Weight:   weight,
		Picks:    len(schedule),
		Duration: duration,
		Verified: scheduler.Verify(schedule),
	}
}

func toCsv(w io.Writer, results []BenchmarkResult) error {
	writer := csv.NewWriter(w)

	header := []string{"Shape", "Events", "Mode", "Frontier", "Weight", "Picks", "Duration(ms)", "Verified"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %v", err)
	}

	for _, result := range results {
		record := []string{
			shapeTypes[result.Case.Shape],
			fmt.Sprintf("%d", result.Case.Events),
			result.Mode,
			fmt.Sprintf("%d", result.Frontier),
			fmt.Sprintf("%v", result.Weight),
			fmt.Sprintf("%d", result.Picks),
			fmt.Sprintf("%.3f", float64(result.Duration.Microseconds())/1000),
			fmt.Sprintf("%v", result.Verified),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("cannot write CSV record: %v", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
