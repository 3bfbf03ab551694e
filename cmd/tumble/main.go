// tumble - roll a six-sided die in your terminal.
//
// The die is thrown onto a wooden table by a small rigid-body simulation
// and drawn with colored half blocks. The face that ends up on top is the
// result.
//
// Controls:
//
//	Space/Enter - Roll (or click the Roll button)
//	Mouse drag  - Orbit the camera
//	Scroll      - Zoom in/out
//	Arrows/WASD - Orbit the camera
//	=/-         - Zoom in/out
//	Q/Esc       - Quit
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/tumble/internal/config"
	"github.com/taigrr/tumble/internal/scene"
	"github.com/taigrr/tumble/pkg/models"
	"github.com/taigrr/tumble/pkg/render"
)

var version = "dev"

func main() {
	// flags may still fix bad values; PersistentPreRunE validates
	cfg, err := config.Parse()
	if err != nil {
		config.Exitf("tumble: %v", err)
	}
	err = fang.Execute(context.Background(), newRootCmd(&options{cfg: cfg}),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
	if err != nil {
		os.Exit(1)
	}
}

// options is the environment config plus the command-line overrides.
type options struct {
	cfg     config.Config
	model   string
	texture string
}

func newRootCmd(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "tumble",
		Short: "Roll a die in your terminal",
		Long: "tumble throws a six-sided die onto a table, lets it bounce and\n" +
			"tumble until it rests, and shows the face that ends up on top.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return o.cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd.Context(), o)
		},
	}

	f := root.PersistentFlags()
	f.IntVar(&o.cfg.FPS, "fps", o.cfg.FPS, "target frames per second")
	f.Uint64Var(&o.cfg.Seed, "seed", o.cfg.Seed, "throw seed (0 picks one at random)")
	f.StringVar(&o.cfg.LogFile, "log-file", o.cfg.LogFile, "write logs to this file")
	f.StringVar(&o.model, "model", "", "die model to draw (.glb or .gltf)")
	f.StringVar(&o.texture, "texture", "", "die texture (PNG/JPG) laid out as a 3x2 face atlas")

	root.AddCommand(newPlayCmd(o), newRollCmd(o), newExportCmd())
	return root
}

// sceneOptions turns the config and flags into scene options, loading the
// model and texture files if any were given.
func (o *options) sceneOptions(log *slog.Logger) (scene.Options, error) {
	opts := scene.Options{
		World:  o.cfg.PhysicsConfig(),
		Throw:  o.cfg.ThrowConfig(),
		Settle: o.cfg.SettleConfig(),
		Seed:   o.cfg.Seed,
		FPS:    o.cfg.FPS,
		Logger: log,
	}

	if o.model != "" {
		switch ext := strings.ToLower(filepath.Ext(o.model)); ext {
		case ".glb", ".gltf":
		default:
			return opts, fmt.Errorf("unsupported model format: %s (use .glb or .gltf)", ext)
		}
		mesh, img, err := models.NewGLTFLoader().Load(o.model)
		if err != nil {
			return opts, fmt.Errorf("load model: %w", err)
		}
		opts.Mesh = mesh
		if img != nil {
			opts.Texture = render.TextureFromImage(img)
		}
		log.Info("model loaded", "path", o.model, "triangles", mesh.TriangleCount(), "textured", img != nil)
	}

	if o.texture != "" {
		tex, err := render.LoadTexture(o.texture)
		if err != nil {
			return opts, fmt.Errorf("load texture: %w", err)
		}
		opts.Texture = tex
	}
	return opts, nil
}

// openLog returns a logger writing to path, or a discarding one when path
// is empty. The returned func closes the file.
func openLog(path string, level slog.Level) (*slog.Logger, func() error, error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(f, level), f.Close, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
