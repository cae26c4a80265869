// Command kestrel-demo opens a window with a field of spinning sprites, a
// frame counter and, when enabled, the ImGui debug UI.
package main

import (
	"fmt"
	"os"

	"github.com/plus3/kestrel/components"
	"github.com/plus3/kestrel/config"
	"github.com/plus3/kestrel/ecs"
	"github.com/plus3/kestrel/ecs/debugui"
	debugui_ebiten "github.com/plus3/kestrel/ecs/debugui/ebiten"
	"github.com/plus3/kestrel/platform/ebitenapp"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(run).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command line. Flags that were set explicitly
// override the values from the config file.
func newRootCmd(start func(*config.Config) error) *cobra.Command {
	var (
		configPath string
		debugUI    bool
		sprites    int
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "kestrel-demo",
		Short:         "Run the kestrel sprite demo",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			flags := cmd.Flags()
			if flags.Changed("debug-ui") {
				cfg.DebugUI = debugUI
			}
			if flags.Changed("sprites") {
				cfg.Demo.Sprites = sprites
			}
			if flags.Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return start(cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().BoolVar(&debugUI, "debug-ui", false, "show the ImGui debug panels")
	cmd.Flags().IntVar(&sprites, "sprites", 0, "number of sprites in the ring")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	return cmd
}

func run(cfg *config.Config) error {
	logger, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	background, err := config.ParseColor(cfg.Window.Background)
	if err != nil {
		return err
	}

	// Every entity starts with a Transform at the origin; spawning code
	// replaces it where a position matters.
	entities := ecs.NewEntities(
		ecs.WithEntitiesLogger(logger.With().Str("component", "entities").Logger()),
		ecs.WithSetupHook(func(b *ecs.EntityBuilder) {
			b.With(components.NewTransform(0, 0))
		}),
	)
	scheduler := ecs.NewScheduler(entities, ecs.WithSchedulerLogger(logger))

	shaders, err := ebitenapp.CompileShaders(map[string]string{tintShaderName: ebitenapp.TintShader})
	if err != nil {
		return err
	}

	ecs.Register(scheduler, ecs.PhaseUpdate, &QuitSystem{})
	ecs.Register(scheduler, ecs.PhaseUpdate, &components.SpinSystem{})
	ecs.Register(scheduler, ecs.PhaseUpdate, &components.DiagSystem{Smoothing: 0.9})
	ecs.Register(scheduler, ecs.PhaseRender, &ebitenapp.RenderSystem{Background: background, Shaders: shaders})
	ecs.Register(scheduler, ecs.PhaseRender, &ebitenapp.DiagOverlaySystem{})

	spawnScene(entities, cfg)
	logger.Info().Int("entities", entities.Len()).Bool("debug_ui", cfg.DebugUI).Msg("scene ready")

	opts := []ebitenapp.Option{ebitenapp.WithLogger(logger)}
	if cfg.DebugUI {
		backend := debugui_ebiten.NewImguiBackend(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
		debugui.SpawnDebugUI(entities)
		debugui.RegisterDebugUI(scheduler)
		opts = append(opts, ebitenapp.WithOverlay(backend))
	}

	return ebitenapp.Run(cfg, scheduler, opts...)
}
