package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/taigrr/tumble/internal/config"
	"github.com/taigrr/tumble/pkg/models"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("config.Parse: %v", err)
	}
	root := newRootCmd(&options{cfg: cfg})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRollPrintsFaces(t *testing.T) {
	out, err := execute(t, "roll", "--count", "3", "--seed", "11")
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	lines := strings.Fields(out)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), out)
	}
	for _, l := range lines {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > 6 {
			t.Errorf("line %q is not a face", l)
		}
	}
}

func TestRollIsRepeatableWithSeed(t *testing.T) {
	a, err := execute(t, "roll", "-n", "2", "--seed", "21")
	if err != nil {
		t.Fatal(err)
	}
	b, err := execute(t, "roll", "-n", "2", "--seed", "21")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same seed gave %q and %q", a, b)
	}
}

func TestRollErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero count", []string{"roll", "--count", "0"}},
		{"bad fps", []string{"roll", "--fps", "0"}},
		{"bad model format", []string{"roll", "--model", "die.obj"}},
		{"missing model", []string{"roll", "--model", "missing.glb"}},
		{"missing texture", []string{"roll", "--texture", "missing.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Errorf("%v: expected error", tt.args)
			}
		})
	}
}

func TestExportThenRollWithModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "die.glb")
	out, err := execute(t, "export", "--cell", "32", path)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output %q does not name %s", out, path)
	}

	mesh, img, err := models.NewGLTFLoader().Load(path)
	if err != nil {
		t.Fatalf("load exported die: %v", err)
	}
	if mesh.TriangleCount() != 12 {
		t.Errorf("triangles = %d, want 12", mesh.TriangleCount())
	}
	if img == nil || img.Bounds().Dx() != 96 || img.Bounds().Dy() != 64 {
		t.Errorf("atlas image %v, want 96x64", img)
	}

	png := filepath.Join(t.TempDir(), "roll.png")
	if _, err := execute(t, "roll", "--seed", "5", "--model", path, "--png", png); err != nil {
		t.Fatalf("roll with exported model: %v", err)
	}
}

func TestExportRejectsTinyCell(t *testing.T) {
	if _, err := execute(t, "export", "--cell", "2", filepath.Join(t.TempDir(), "x.glb")); err == nil {
		t.Error("expected error for cell 2")
	}
}

func TestCommands(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	root := newRootCmd(&options{cfg: cfg})
	want := map[string]bool{"play": false, "roll": false, "export": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing %s command", name)
		}
	}
}

func TestFlagOverridesInvalidEnv(t *testing.T) {
	t.Setenv("TUMBLE_FPS", "0")
	if _, err := execute(t, "roll", "--seed", "3"); err == nil {
		t.Fatal("fps 0 from the environment was accepted")
	}
	if _, err := execute(t, "roll", "--seed", "3", "--fps", "30"); err != nil {
		t.Errorf("--fps 30 did not override TUMBLE_FPS=0: %v", err)
	}
}
