package project

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// PresetPalette is the ordered set of visually distinct colors handed out to
// new codes before falling back to random generation.
var PresetPalette = []string{
	"#ef4444", // red
	"#3b82f6", // blue
	"#10b981", // green
	"#f59e0b", // amber
	"#8b5cf6", // purple
	"#06b6d4", // cyan
	"#f97316", // orange
	"#84cc16", // lime
	"#ec4899", // pink
	"#6366f1", // indigo
	"#14b8a6", // teal
	"#eab308", // yellow
	"#dc2626", // dark red
	"#2563eb", // dark blue
	"#059669", // dark green
	"#d97706", // dark amber
	"#7c3aed", // dark purple
	"#0891b2", // dark cyan
	"#ea580c", // dark orange
	"#65a30d", // dark lime
	"#db2777", // dark pink
	"#4f46e5", // dark indigo
	"#0d9488", // dark teal
	"#ca8a04", // dark yellow
}

// Allocator assigns display colors to codes, tracking which colors are in use
// so that codes within one project stay visually distinct while the preset
// palette lasts. It must be re-initialized from the project's existing codes
// whenever the active project changes; a stale used-set can hand out colors
// the loaded project already occupies.
type Allocator struct {
	used map[string]bool
	rng  *rand.Rand
}

// NewAllocator returns an allocator with an empty used-set.
func NewAllocator() *Allocator {
	return &Allocator{used: make(map[string]bool)}
}

// NewSeededAllocator returns an allocator whose random fallback is
// deterministic. Used by tests.
func NewSeededAllocator(seed uint64) *Allocator {
	return &Allocator{
		used: make(map[string]bool),
		rng:  rand.New(rand.NewPCG(seed, seed)),
	}
}

// NextPreset returns the first palette color not currently in use, marking it
// used. Once all 24 presets are taken it degrades to Random, which does not
// guarantee uniqueness.
func (a *Allocator) NextPreset() string {
	for _, color := range PresetPalette {
		if !a.used[color] {
			a.used[color] = true
			return color
		}
	}
	return a.Random()
}

// Random produces a color in HSL space with hue in [0,360), saturation in
// [60,90), and lightness in [45,65), converted to hex. Neither checked nor
// recorded for uniqueness.
func (a *Allocator) Random() string {
	hue := a.intN(360)
	saturation := 60 + a.intN(30)
	lightness := 45 + a.intN(20)
	return hslToHex(float64(hue), float64(saturation), float64(lightness))
}

func (a *Allocator) intN(n int) int {
	if a.rng != nil {
		return a.rng.IntN(n)
	}
	return rand.IntN(n)
}

// MarkUsed records a color as taken. Empty strings are ignored.
func (a *Allocator) MarkUsed(color string) {
	if color != "" {
		a.used[strings.ToLower(color)] = true
	}
}

// Reset clears the used-set. Called on project reset.
func (a *Allocator) Reset() {
	a.used = make(map[string]bool)
}

// Initialize resets the used-set and marks every existing code's color as
// taken. Call at every project-swap boundary before allocating new colors.
func (a *Allocator) Initialize(codes []Code) {
	a.Reset()
	for i := range codes {
		a.MarkUsed(codes[i].Color)
	}
}

// ColorForNewCode returns a color for a new code. If the used-set is empty
// but codes already exist, it lazily re-initializes from them first.
func (a *Allocator) ColorForNewCode(existing []Code) string {
	if len(a.used) == 0 && len(existing) > 0 {
		a.Initialize(existing)
	}
	return a.NextPreset()
}

// hslToHex converts an HSL triple (h in degrees, s and l in percent) to a
// lowercase #rrggbb string.
func hslToHex(h, s, l float64) string {
	l /= 100
	amp := s * min(l, 1-l) / 100
	f := func(n float64) int {
		k := mod(n+h/30, 12)
		color := l - amp*max(min(k-3, min(9-k, 1)), -1)
		return int(color*255 + 0.5)
	}
	return fmt.Sprintf("#%02x%02x%02x", f(0), f(8), f(4))
}

func mod(x, m float64) float64 {
	r := x - m*float64(int(x/m))
	if r < 0 {
		r += m
	}
	return r
}
