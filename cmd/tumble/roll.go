package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/taigrr/tumble/internal/scene"
)

// settleLimit is how much simulation time one headless roll may take.
const settleLimit = 60 * time.Second

func newRollCmd(o *options) *cobra.Command {
	var (
		count   int
		png     string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "roll",
		Short: "Roll without drawing and print each face",
		Long: "roll runs the same simulation as the interactive view without a\n" +
			"terminal and prints one face value per line.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("count %d must be at least 1", count)
			}
			out := io.Discard
			if verbose {
				out = cmd.ErrOrStderr()
			}
			log := newLogger(out, o.cfg.LogLevel)
			opts, err := o.sceneOptions(log)
			if err != nil {
				return err
			}
			s, err := scene.New(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			step := o.cfg.FrameInterval()
			for range count {
				res, err := s.RollToRest(step, settleLimit)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), int(res.Face))
			}
			if png != "" {
				if err := s.Snapshot(png, 320, 240); err != nil {
					return fmt.Errorf("snapshot: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of rolls")
	cmd.Flags().StringVar(&png, "png", "", "save a picture of the final roll")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log each roll to stderr")
	return cmd
}
