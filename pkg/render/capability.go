package render

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/x/term"
)

// ErrUnsupported is returned when the terminal cannot show the scene.
var ErrUnsupported = errors.New("terminal cannot render the scene")

// Supported reports whether stdout can show the interactive scene. The
// check runs once per process.
var Supported = sync.OnceValue(func() error {
	return checkTerminal(os.Stdout, os.Environ())
})

// checkTerminal needs a TTY with at least 256 colors, since the scene is
// drawn with colored half blocks.
func checkTerminal(f *os.File, env []string) error {
	if !term.IsTerminal(f.Fd()) {
		return fmt.Errorf("%s is not a terminal: %w", f.Name(), ErrUnsupported)
	}
	switch p := colorprofile.Detect(f, env); p {
	case colorprofile.TrueColor, colorprofile.ANSI256:
		return nil
	default:
		return fmt.Errorf("color profile %v: %w", p, ErrUnsupported)
	}
}
