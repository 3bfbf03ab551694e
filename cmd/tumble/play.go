package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"github.com/taigrr/tumble/internal/scene"
	"github.com/taigrr/tumble/pkg/render"
	"golang.org/x/sync/errgroup"
)

const (
	mouseOn  = "\x1b[?1003h\x1b[?1006h" // any-event tracking, SGR encoding
	mouseOff = "\x1b[?1003l\x1b[?1006l"
)

var (
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5A623"))
	resultStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5D76E"))
)

func newPlayCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Open the interactive table (the default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd.Context(), o)
		},
	}
}

// runPlay shows the interactive scene until the user quits or ctx ends. A
// terminal that cannot show the scene gets a short message instead.
func runPlay(ctx context.Context, o *options) error {
	if err := render.Supported(); err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render("This terminal cannot show the die.")+
			" Try `tumble roll` for a text-only roll.")
		return nil
	}

	log, closeLog, err := openLog(o.cfg.LogFile, o.cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	opts, err := o.sceneOptions(log)
	if err != nil {
		return err
	}
	s, err := scene.New(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)
	fmt.Fprint(os.Stdout, mouseOn)

	cleanup := func() {
		fmt.Fprint(os.Stdout, mouseOff)
		term.ExitAltScreen()
		term.ShowCursor()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := term.Shutdown(shutdownCtx); err != nil {
			log.Warn("terminal shutdown", "err", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan uv.Event, 64)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pumpEvents(gctx, term.Events(), events)
	})
	g.Go(func() error {
		// the pump stops once the frame loop returns
		defer cancel()
		return scene.Guard(func() error {
			return frameLoop(gctx, term, s, events, o.cfg.FrameInterval())
		})
	})
	err = g.Wait()
	cleanup()

	if err != nil {
		log.Error("frame loop failed", "err", err)
		if errors.Is(err, scene.ErrCrashed) {
			fmt.Fprintln(os.Stderr, warnStyle.Render("Something went wrong with the table.")+
				" The terminal has been restored.")
		}
		return err
	}
	if res, ok := s.Result(); ok {
		fmt.Println(resultStyle.Render(fmt.Sprintf("You rolled %d", int(res.Face))))
	}
	return nil
}

// pumpEvents forwards terminal events to out until ctx ends or in closes.
func pumpEvents(ctx context.Context, in <-chan uv.Event, out chan<- uv.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-in:
			if !ok {
				return nil
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// frameLoop owns the scene: it applies events as they arrive and steps and
// draws once per tick.
func frameLoop(ctx context.Context, term *uv.Terminal, s *scene.Scene, events <-chan uv.Event, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if ev, ok := ev.(uv.WindowSizeEvent); ok {
				term.Erase()
				term.Resize(ev.Width, ev.Height)
			}
			if s.HandleEvent(ev) {
				return nil
			}

		case now := <-ticker.C:
			s.Update(now.Sub(last))
			last = now
			term.Draw(s)
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}
