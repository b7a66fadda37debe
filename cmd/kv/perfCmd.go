package kv

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ValentinKolb/slotkv/cmd/util"
	"github.com/ValentinKolb/slotkv/lib/store"
	metrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for slotkv servers",
		Long:    "Runs put, get, delete and mixed workloads with one connection per thread and reports throughput and latency percentiles.",
		Args:    cobra.NoArgs,
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix    = "__perf"
	perfNumThreads   = 10
	perfOpsPerThread = 1000
	perfKeySpread    = 100
	perfValueSize    = 64
	perfSkip         = make([]string, 0)
	perfTests        = []string{"put", "get", "delete", "mixed"}
	perfPercentiles  = []float64{0.5, 0.95, 0.99}
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. put,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark, every thread uses its own connection"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("Number of operations per thread and benchmark"))
	key = "value-size"
	perfTestCmd.Flags().Int(key, 64, util.WrapString("Size of the values in bytes (at most 255)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfNumThreads = viper.GetInt("threads")
	perfOpsPerThread = viper.GetInt("ops")
	perfValueSize = viper.GetInt("value-size")
	perfKeySpread = viper.GetInt("keys")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfNumThreads < 1 || perfOpsPerThread < 1 || perfKeySpread < 1 {
		return fmt.Errorf("threads, ops and keys must be positive")
	}
	if perfValueSize < 0 || perfValueSize > 255 {
		return fmt.Errorf("value-size must be between 0 and 255")
	}

	return nil
}

// perfResult holds the measurements of one benchmark
type perfResult struct {
	name     string
	skipped  bool
	duration time.Duration
	timer    metrics.Timer
	errors   metrics.Counter
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for slotkv servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(clientConfig.String())
	fmt.Printf("Threads: %d, Ops per thread: %d, Keys: %d, Value size: %d\n", perfNumThreads, perfOpsPerThread, perfKeySpread, perfValueSize)
	fmt.Println()

	// One connection per thread, a single connection serializes all requests
	clients := make([]store.IStore, perfNumThreads)
	defer func() {
		for _, c := range clients {
			if c != nil {
				_ = c.Close()
			}
		}
	}()
	for i := range clients {
		c, err := newClient()
		if err != nil {
			return fmt.Errorf("failed to connect thread %d: %w", i, err)
		}
		clients[i] = c
	}

	value := strings.Repeat("x", perfValueSize)
	keys := getKeys()
	registry := metrics.NewRegistry()

	fmt.Println("starting tests...")
	fmt.Printf("%-10s%10s%14s%12s%12s%12s%12s%8s\n", "test", "ops", "ops/sec", "mean", "p50", "p95", "p99", "errors")

	var results []perfResult
	for _, test := range perfTests {
		result := perfResult{
			name:   test,
			timer:  metrics.GetOrRegisterTimer(test, registry),
			errors: metrics.GetOrRegisterCounter(test+".errors", registry),
		}

		if shouldSkip(test) {
			result.skipped = true
			results = append(results, result)
			printResult(result)
			continue
		}

		// prepare keys
		if test == "get" || test == "delete" {
			for _, k := range keys {
				if err := rpcStore.Put(k, value); err != nil {
					log.Printf("(%s) - error setting key: %v\n", test, err)
				}
			}
		}

		start := time.Now()
		g := errgroup.Group{}
		for thread, c := range clients {
			thread, c := thread, c
			g.Go(func() error {
				for i := 0; i < perfOpsPerThread; i++ {
					key := keys[(thread*perfOpsPerThread+i)%len(keys)]
					var err error
					result.timer.Time(func() {
						err = runOp(c, test, i, key, value)
					})
					if err != nil {
						result.errors.Inc(1)
					}
				}
				return nil
			})
		}
		_ = g.Wait()
		result.duration = time.Since(start)

		// cleanup
		for _, k := range keys {
			_ = rpcStore.Delete(k)
		}

		results = append(results, result)
		printResult(result)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// runOp runs the i-th operation of a test. NotFound is expected for
// deletes and mixed workloads and not counted as an error.
func runOp(s store.IStore, test string, i int, key, value string) error {
	var err error
	switch test {
	case "put":
		err = s.Put(key, value)
	case "get":
		_, err = s.Get(key)
	case "delete":
		err = s.Delete(key)
	case "mixed":
		switch i % 3 {
		case 0:
			err = s.Put(key, value)
		case 1:
			_, err = s.Get(key)
		case 2:
			err = s.Delete(key)
		}
	}

	if err != nil && (test == "delete" || test == "mixed") && store.CodeOf(err) == store.RetCNotFound {
		return nil
	}
	return err
}

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == strings.TrimSpace(skip) {
			return true
		}
	}
	return false
}

// getKeys creates the test keys, all short enough for a slot
func getKeys() []string {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%d", perfKeyPrefix, i)
	}
	return keys
}

// opsPerSec returns the throughput of a benchmark
func (r perfResult) opsPerSec() float64 {
	if r.duration <= 0 {
		return 0
	}
	return float64(r.timer.Count()) / r.duration.Seconds()
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(r perfResult) {
	if r.skipped {
		fmt.Printf("%-10sskipped\n", r.name)
		return
	}

	snapshot := r.timer.Snapshot()
	ps := snapshot.Percentiles(perfPercentiles)

	fmt.Printf("%-10s%10d%14.0f%12s%12s%12s%12s%8d\n",
		r.name,
		snapshot.Count(),
		r.opsPerSec(),
		time.Duration(snapshot.Mean()).Round(time.Microsecond),
		time.Duration(ps[0]).Round(time.Microsecond),
		time.Duration(ps[1]).Round(time.Microsecond),
		time.Duration(ps[2]).Round(time.Microsecond),
		r.errors.Count(),
	)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []perfResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "Ops", "OpsPerSec", "MeanNs", "P50Ns", "P95Ns", "P99Ns", "Errors", "Skipped",
		"Endpoint", "TimeoutSec", "Transport",
		"Threads", "ValueSize", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for _, r := range results {
		snapshot := r.timer.Snapshot()
		ps := snapshot.Percentiles(perfPercentiles)

		row := []string{
			r.name,
			strconv.FormatInt(snapshot.Count(), 10),
			fmt.Sprintf("%.0f", r.opsPerSec()),
			fmt.Sprintf("%.0f", snapshot.Mean()),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			fmt.Sprintf("%.0f", ps[2]),
			strconv.FormatInt(r.errors.Count(), 10),
			strconv.FormatBool(r.skipped),
			clientConfig.Transport.Endpoint,
			strconv.Itoa(clientConfig.TimeoutSecond),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfValueSize),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", r.name, err)
		}
	}

	return nil
}
