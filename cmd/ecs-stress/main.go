package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/plus3/kestrel/config"
	"github.com/plus3/kestrel/ecs"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities to create.")
	seed := flag.Int64("seed", 1, "Seed for the random entity layout.")
	logLevel := flag.String("log-level", "info", "Log level (trace, debug, info, warn, error).")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	logger, err := config.NewLogger(config.LogConfig{Level: *logLevel, Pretty: true}, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid flags: %v\n", err)
		os.Exit(2)
	}

	logger.Info().Msg("Starting ECS stress test...")

	// 1. Setup entities and scheduler
	entities := ecs.NewEntities(ecs.WithEntitiesLogger(logger.With().Str("component", "entities").Logger()))
	scheduler := ecs.NewScheduler(entities, ecs.WithSchedulerLogger(logger))
	state := ecs.NewAppState(nil, nil)

	// 2. Populate the world
	logger.Info().Int("entities", *entityCount).Msg("populating world")
	rng := rand.New(rand.NewSource(*seed))
	decay, respawn := setupWorld(entities, scheduler, *entityCount, rng)
	scheduler.Setup(state)
	logger.Info().Msg("population complete")

	// 3. Run the simulation loop
	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		GCPauseMetrics: *gcPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info().Dur("duration", *duration).Msg("running simulation")
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			scheduler.Once(deltaTime.Seconds(), state)
			updateDuration := time.Since(updateStart)

			report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
			totalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.UpdateTime.Finalize()
	report.Despawned = decay.Despawned
	report.Respawned = respawn.Spawned
	report.World = entities.CollectStats()
	report.Scheduler = scheduler.GetStats()
	runtime.ReadMemStats(&report.MemStatsEnd)

	logger.Info().Msg("simulation finished")

	// 4. Generate Report to Console
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal().Err(err).Msg("failed to generate report")
	}
	fmt.Println("--- End of Report ---")

	logger.Info().Msg("stress test complete")
}
