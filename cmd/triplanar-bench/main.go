package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/plus3/facet/app"
	"github.com/plus3/facet/core"
	"github.com/plus3/facet/ecs"
	"github.com/plus3/facet/internal/scene"
	"github.com/plus3/facet/render"
	"github.com/plus3/facet/render/gfx/record"
	"github.com/plus3/facet/render/pass"
	"github.com/plus3/facet/render/pipe"
)

func main() {
	configPath := flag.String("config", "", "Optional TOML or YAML application config.")
	duration := flag.Duration("duration", 10*time.Second, "The total duration the benchmark should run for.")
	objects := flag.Int("objects", 2000, "The number of tri-planar objects to spawn.")
	depth := flag.Int("depth", 4, "The length of each parent chain.")
	transparent := flag.Float64("transparent", 0.1, "The fraction of objects drawn back to front.")
	threads := flag.Int("threads", 0, "Thread pool size; zero uses GOMAXPROCS.")
	noSorting := flag.Bool("no-sorting", false, "Skip visibility sorting and draw in storage order.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg := app.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = app.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *threads != 0 {
		cfg.Threads = *threads
	}
	cfg.FrameLimit.Strategy = "unlimited"

	logger, err := cfg.Logging.NewLogger(os.Stderr)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	log.Println("Starting tri-planar benchmark...")

	application, err := app.New(cfg, app.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	pipeline := pipe.NewPipeline(
		pipe.NewStage("").
			ClearTarget([4]float32{0.1, 0.1, 0.12, 1}, 1).
			WithPass(pass.NewDrawTriplanar[render.PosNormTex]()),
	)
	encoder := &record.Encoder{}
	if err := application.AddBundle(pipe.Bundle{
		Render:   render.Bundle{NoSorting: *noSorting},
		Pipeline: pipeline,
		Factory:  &record.Factory{},
		Encoder:  encoder,
		Logger:   logger,
	}); err != nil {
		log.Fatalf("Failed to install renderer: %v", err)
	}

	log.Printf("Populating scene with %d objects...\n", *objects)
	if err := application.AddBundle(scene.Bundle{
		Objects:     *objects,
		Depth:       *depth,
		Transparent: *transparent,
		Aspect:      float32(cfg.Width) / float32(cfg.Height),
		Seed:        uint64(time.Now().UnixNano()),
	}); err != nil {
		log.Fatalf("Failed to build scene: %v", err)
	}
	log.Println("Population complete.")

	report := &Report{
		Duration:       *duration,
		Objects:        *objects,
		Depth:          *depth,
		Transparent:    *transparent,
		Threads:        ecs.Resource[core.ThreadPool](application.World).Size(),
		Sorting:        !*noSorting,
		GCPauseMetrics: *gcPauseMetrics,
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running benchmark for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			encoder.Reset()

			updateStart := time.Now()
			if err := application.Step(ctx); err != nil {
				log.Fatalf("Frame failed: %v", err)
			}
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
			report.TotalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	report.Render = *ecs.Resource[pipe.RenderStats](application.World)
	report.Systems = application.World.Scheduler.GetStats().Systems
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Benchmark finished.")

	fmt.Println("\n\n--- Tri-planar Benchmark Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")
}
