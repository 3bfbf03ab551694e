package render

import (
	"math"
	"math/rand/v2"

	"github.com/taigrr/tumble/pkg/dice"
	"github.com/taigrr/tumble/pkg/models"
)

// pipLayout places pips on a 3x3 grid per face value, as (column, row).
var pipLayout = [7][][2]int{
	1: {{1, 1}},
	2: {{0, 0}, {2, 2}},
	3: {{0, 0}, {1, 1}, {2, 2}},
	4: {{0, 0}, {2, 0}, {0, 2}, {2, 2}},
	5: {{0, 0}, {2, 0}, {1, 1}, {0, 2}, {2, 2}},
	6: {{0, 0}, {0, 1}, {0, 2}, {2, 0}, {2, 1}, {2, 2}},
}

// NewPipAtlas paints the six die faces into the atlas laid out by
// models.AtlasCell, each cell cell pixels square. The single pip of face
// one is drawn in ace color.
func NewPipAtlas(cell int, body, pip, ace Color) *Texture {
	tex := NewTexture(cell*models.AtlasColumns, cell*models.AtlasRows)
	tex.WrapU, tex.WrapV = WrapClamp, WrapClamp
	tex.FilterMode = FilterBilinear

	radius := 0.11 * float64(cell)
	border := max(1, cell/24)
	edge := MultiplyColor(body, 0.8)

	for f := dice.Face(1); f <= 6; f++ {
		col, row := models.AtlasCell(f)
		ox, oy := col*cell, row*cell
		ink := pip
		if f == 1 {
			ink = ace
		}

		for y := range cell {
			for x := range cell {
				c := body
				if x < border || y < border || x >= cell-border || y >= cell-border {
					c = edge
				}
				for _, p := range pipLayout[f] {
					cx := (0.25 + 0.25*float64(p[0])) * float64(cell)
					cy := (0.25 + 0.25*float64(p[1])) * float64(cell)
					d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
					if d <= radius {
						c = ink
						break
					}
				}
				tex.SetPixel(ox+x, oy+y, c)
			}
		}
	}
	return tex
}

// NewWoodTexture paints five horizontal planks with wavy grain and a few
// knots. The same seed always gives the same boards.
func NewWoodTexture(width, height int, seed uint64) *Texture {
	tex := NewTexture(width, height)
	tex.WrapU, tex.WrapV = WrapRepeat, WrapRepeat

	rng := rand.New(rand.NewPCG(seed, seed^0x2545f4914f6cdd1d))
	dark := RGB(92, 56, 30)
	light := RGB(168, 112, 64)
	seam := RGB(52, 30, 16)

	const planks = 5
	plankH := max(1, height/planks)
	type board struct {
		tone, phase float64
		joint       int
	}
	boards := make([]board, planks+1)
	for i := range boards {
		boards[i] = board{
			tone:  rng.Float64()*0.2 - 0.1,
			phase: rng.Float64() * 2 * math.Pi,
			joint: rng.IntN(max(1, width)),
		}
	}

	type knot struct{ x, y, r float64 }
	knots := make([]knot, 3)
	for i := range knots {
		knots[i] = knot{
			x: rng.Float64() * float64(width),
			y: rng.Float64() * float64(height),
			r: 1.5 + rng.Float64()*float64(plankH)/4,
		}
	}

	for y := range height {
		b := boards[min(y/plankH, planks)]
		for x := range width {
			if y%plankH == 0 || x == b.joint {
				tex.SetPixel(x, y, seam)
				continue
			}
			wave := 3 * math.Sin(float64(x)*0.04+b.phase)
			grain := 0.5 + 0.5*math.Sin((float64(y%plankH)+wave)*1.3)
			t := 0.25 + 0.55*grain + b.tone
			for _, k := range knots {
				// stretched along the grain
				d := math.Hypot((float64(x)-k.x)/2, float64(y)-k.y)
				if d < k.r {
					t -= 0.5 * (1 - d/k.r)
				}
			}
			t = math.Max(0, math.Min(1, t))
			tex.SetPixel(x, y, lerpColor(dark, light, t))
		}
	}
	return tex
}
