package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taigrr/tumble/pkg/models"
	"github.com/taigrr/tumble/pkg/render"
)

func newExportCmd() *cobra.Command {
	var cell int
	cmd := &cobra.Command{
		Use:   "export [file.glb]",
		Short: "Write the built-in die as a binary glTF file",
		Long: "export saves the built-in die with its pip atlas so it can be edited\n" +
			"in a 3D tool and loaded back with --model.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cell < 8 {
				return fmt.Errorf("cell size %d is below 8 pixels", cell)
			}
			path := "die.glb"
			if len(args) > 0 {
				path = args[0]
			}
			atlas := render.NewPipAtlas(cell, render.ColorIvory, render.ColorBlack, render.ColorRed)
			if err := models.SaveGLB(path, models.NewDie(), atlas.ToImage()); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return nil
		},
	}
	cmd.Flags().IntVar(&cell, "cell", 128, "atlas cell size in pixels")
	return cmd
}
