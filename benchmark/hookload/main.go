// Hook runtime load benchmark.
//
// Answers the questions that matter before putting the loop at the heart of
// an application:
//   - What is the p50/p95/p99 dispatch latency while writers hammer cells?
//   - Does the debounce timer wheel keep up, or do commits pile up?
//   - How much allocation + GC work does sustained cell traffic generate?
//
// It runs a real Loop and drives N concurrent writers that set debounced
// cells, flip toggles, and measure the round trip of a dispatched function.
//
// Run:
//
//	cd benchmark/hookload
//	go run . -writers=64 -duration=10s -cells=128
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"runtime"
	"runtime/debug"
	"runtime/metrics"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bymeisam/use"
	"github.com/bymeisam/use/pkg/debounce"
	"github.com/bymeisam/use/pkg/toggle"
)

func main() {
	var (
		writers  = flag.Int("writers", 64, "number of concurrent writer goroutines")
		duration = flag.Duration("duration", 10*time.Second, "how long to run the load test")
		cells    = flag.Int("cells", 128, "number of debounced cells under write pressure")
		delay    = flag.Duration("delay", 5*time.Millisecond, "debounce delay per cell")
	)
	flag.Parse()

	if *writers <= 0 {
		log.Fatal("-writers must be > 0")
	}
	if *duration <= 0 {
		log.Fatal("-duration must be > 0")
	}
	if *cells <= 0 {
		log.Fatal("-cells must be > 0")
	}

	// Reduce incidental variability a bit.
	debug.SetGCPercent(100)

	loop := use.NewLoop(use.WithQueueSize(4096))
	defer loop.Close()

	debounced := make([]*debounce.Debounced[int], *cells)
	for i := range debounced {
		debounced[i] = debounce.New(0, *delay, debounce.Via(loop))
	}
	flags := make([]*toggle.Toggle[bool], *cells)
	for i := range flags {
		flags[i] = toggle.Bool(false)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	samplesCh := make(chan time.Duration, 4096)
	var samples []time.Duration
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for rtt := range samplesCh {
			samples = append(samples, rtt)
		}
	}()

	var (
		totalSets      atomic.Uint64
		droppedSamples atomic.Uint64
	)

	var before runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	beforeMetrics := readRuntimeMetrics()
	start := time.Now()

	var wg sync.WaitGroup
	wg.Add(*writers)
	for w := 0; w < *writers; w++ {
		rng := rand.New(rand.NewSource(int64(w) + 1))
		go func() {
			defer wg.Done()
			for n := 0; ; n++ {
				select {
				case <-ctx.Done():
					return
				default:
				}

				i := rng.Intn(len(debounced))
				debounced[i].Set(n)
				totalSets.Add(1)

				if n%8 == 0 {
					flags[rng.Intn(len(flags))].Toggle()
				}

				// Sample loop scheduling latency with a timestamped
				// round trip. A full queue shows up in the loop's own
				// dropped counter; only a closed loop ends the writer.
				if n%16 == 0 {
					t0 := time.Now()
					err := loop.Dispatch(func() {
						select {
						case samplesCh <- time.Since(t0):
						default:
							droppedSamples.Add(1)
						}
					})
					if errors.Is(err, use.ErrLoopClosed) {
						return
					}
				}
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Let in-flight debounce commits land before reading stats.
	for _, d := range debounced {
		d.Flush()
	}
	time.Sleep(50 * time.Millisecond)

	close(samplesCh)
	<-collectorDone

	var after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&after)
	afterMetrics := readRuntimeMetrics()

	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })

	stats := loop.Stats()
	sets := totalSets.Load()
	runSeconds := math.Max(0.001, elapsed.Seconds())

	fmt.Println("=== Hook Runtime Load Benchmark ===")
	fmt.Printf("Writers: %d\n", *writers)
	fmt.Printf("Cells: %d (debounce %s)\n", *cells, delay.String())
	fmt.Printf("Duration: %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("Total sets: %d\n", sets)
	fmt.Printf("Set throughput: %.0f sets/s\n", float64(sets)/runSeconds)
	fmt.Printf("Loop dispatched: %d\n", stats.Dispatched)
	fmt.Printf("Loop dropped: %d\n", stats.Dropped)
	fmt.Printf("Loop panics: %d\n", stats.Panics)
	fmt.Printf("Samples dropped: %d\n", droppedSamples.Load())
	fmt.Println()

	if len(samples) == 0 {
		fmt.Println("No latency samples recorded.")
	} else {
		fmt.Println("Dispatch latency (Dispatch call → executed on loop):")
		fmt.Printf("  min: %s\n", samples[0])
		fmt.Printf("  p50: %s\n", percentile(samples, 0.50))
		fmt.Printf("  p95: %s\n", percentile(samples, 0.95))
		fmt.Printf("  p99: %s\n", percentile(samples, 0.99))
		fmt.Printf("  max: %s\n", samples[len(samples)-1])
	}
	fmt.Println()

	gcCount := after.NumGC - before.NumGC
	fmt.Println("Go runtime / GC (process-wide):")
	fmt.Printf("  alloc:     %.2f MB\n", float64(after.TotalAlloc-before.TotalAlloc)/(1024*1024))
	fmt.Printf("  heap_live: %.2f MB\n", float64(after.HeapAlloc)/(1024*1024))
	fmt.Printf("  num_gc:    %d\n", gcCount)
	fmt.Printf("  gc_pause:  %s (total)\n", time.Duration(after.PauseTotalNs-before.PauseTotalNs))
	if gcCount > 0 {
		fmt.Printf("  gc_pause:  %s (avg)\n", time.Duration((after.PauseTotalNs-before.PauseTotalNs)/uint64(gcCount)))
	}
	cpuTotal := afterMetrics.cpuTotalSeconds - beforeMetrics.cpuTotalSeconds
	if cpuTotal > 0 {
		fmt.Printf("  gc_cpu:    %.2f%%\n", 100*(afterMetrics.cpuGCSeconds-beforeMetrics.cpuGCSeconds)/cpuTotal)
	}
	fmt.Printf("  allocs:    %.2f M objects\n", float64(afterMetrics.heapAllocsObjects-beforeMetrics.heapAllocsObjects)/1_000_000)
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

type runtimeMetricsSnapshot struct {
	cpuTotalSeconds   float64
	cpuGCSeconds      float64
	heapAllocsObjects uint64
}

func readRuntimeMetrics() runtimeMetricsSnapshot {
	samples := []metrics.Sample{
		{Name: "/cpu/classes/total:cpu-seconds"},
		{Name: "/cpu/classes/gc/total:cpu-seconds"},
		{Name: "/gc/heap/allocs:objects"},
	}
	metrics.Read(samples)

	var out runtimeMetricsSnapshot
	for _, s := range samples {
		switch s.Name {
		case "/cpu/classes/total:cpu-seconds":
			out.cpuTotalSeconds = s.Value.Float64()
		case "/cpu/classes/gc/total:cpu-seconds":
			out.cpuGCSeconds = s.Value.Float64()
		case "/gc/heap/allocs:objects":
			out.heapAllocsObjects = s.Value.Uint64()
		}
	}
	return out
}
