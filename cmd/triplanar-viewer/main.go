package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/facet/app"
	"github.com/plus3/facet/config"
	"github.com/plus3/facet/ecs"
	"github.com/plus3/facet/ecs/debugui"
	debugui_ebiten "github.com/plus3/facet/ecs/debugui/ebiten"
	"github.com/plus3/facet/internal/scene"
	"github.com/plus3/facet/render"
	"github.com/plus3/facet/render/gfx/ebitengfx"
	"github.com/plus3/facet/render/pass"
	"github.com/plus3/facet/render/pipe"
)

// viewerConfig is the file form of the viewer settings.
type viewerConfig struct {
	App     app.Config           `toml:"app" yaml:"app"`
	Display render.DisplayConfig `toml:"display" yaml:"display"`
	Scene   sceneConfig          `toml:"scene" yaml:"scene"`
}

type sceneConfig struct {
	Objects     int     `toml:"objects" yaml:"objects"`
	Depth       int     `toml:"depth" yaml:"depth"`
	Transparent float64 `toml:"transparent" yaml:"transparent"`
}

func defaultViewerConfig() viewerConfig {
	return viewerConfig{
		App:     app.DefaultConfig(),
		Display: render.DefaultDisplayConfig(),
		Scene:   sceneConfig{Objects: 60, Depth: 3, Transparent: 0.15},
	}
}

// Game implements ebiten.Game: systems run in Update, the encoder and the
// ImGui overlay present in Draw.
type Game struct {
	app     *app.Application
	encoder *ebitengfx.Encoder
	imgui   debugui_ebiten.ImguiBackend
	camera  ecs.EntityId
	width   int
	height  int
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		clock := g.app.Time()
		clock.SetTimeScale(1 - min(clock.TimeScale(), 1))
	}

	g.imgui.BeginFrame()
	err := g.app.Step(context.Background())
	g.imgui.EndFrame()
	return err
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.encoder.Present(screen)
	g.imgui.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.imgui.Layout(outsideWidth, outsideHeight)
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.encoder.Resize(outsideWidth, outsideHeight)
		if cam := ecs.ReadComponent[render.Camera](g.app.World.Storage, g.camera); cam != nil {
			aspect := float32(outsideWidth) / float32(max(outsideHeight, 1))
			*cam = render.Perspective(aspect, mgl32.DegToRad(60), 0.1, 200)
		}
	}
	return outsideWidth, outsideHeight
}

func main() {
	configPath := flag.String("config", "", "Optional TOML or YAML viewer config.")
	objects := flag.Int("objects", 0, "Override the number of objects.")
	flag.Parse()

	cfg := defaultViewerConfig()
	if *configPath != "" {
		if err := config.Load(*configPath, &cfg, config.Strict()); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *objects > 0 {
		cfg.Scene.Objects = *objects
	}

	logger, err := cfg.App.Logging.NewLogger(os.Stderr)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	slog.SetDefault(logger)

	display := cfg.Display
	backend := debugui_ebiten.NewImguiBackend(display.Title, display.Width, display.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(display.VSync)
	ebiten.SetFullscreen(display.Fullscreen)

	orbit := orbitBundle(Orbit{Radius: 18, Height: 6, Step: math32.Pi / 3, Duration: 4})
	// The orbit moves the camera before transforms propagate and the frame
	// is rendered.
	application, err := app.New(cfg.App, app.WithLogger(logger), app.WithBundles(orbit))
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	encoder := ebitengfx.NewEncoder(display.Width, display.Height)
	pipeline := pipe.NewPipeline(
		pipe.NewStage("").
			ClearTarget(display.ClearColor, 1).
			WithPass(pass.NewDrawTriplanar[render.PosNormTex]()),
	)
	bundles := []ecs.Bundle{
		pipe.Bundle{
			Render:   render.Bundle{Ambient: render.AmbientColor{Color: mgl32.Vec3{0.15, 0.15, 0.2}}},
			Pipeline: pipeline,
			Factory:  ebitengfx.NewFactory(),
			Encoder:  encoder,
			Logger:   logger,
		},
		scene.Bundle{
			Objects:     cfg.Scene.Objects,
			Depth:       cfg.Scene.Depth,
			Transparent: cfg.Scene.Transparent,
			Aspect:      display.Aspect(),
			Seed:        1,
		},
		debugui.Bundle{HistoryFrames: 120},
	}
	for _, b := range bundles {
		if err := application.AddBundle(b); err != nil {
			log.Fatalf("Failed to install %T: %v", b, err)
		}
	}

	game := &Game{
		app:     application,
		encoder: encoder,
		imgui:   backend,
		camera:  ecs.Resource[scene.Scene](application.World).Camera,
	}

	logger.Info("viewer started", "objects", cfg.Scene.Objects, "width", display.Width, "height", display.Height)
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatalf("Viewer failed: %v", err)
	}
}
