// Package layout models the geometry of a soft keyboard: which layer every
// character lives on, the bounding box of its key, and the reverse lookup
// from a tap position back to a character.
package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"unicode"
)

const (
	// Button type for regular character keys. Anything else is a special
	// button (shift, backspace, spacebar, ...).
	buttonTypeChar = 1

	spacebarLabel   = "spacebar"
	pointLabel      = "."
	accentsPerLine = 4
	noLayerCutoff  = -1
)

// DefaultLayerID is the id of the base (lowercase) keyboard layer.
const DefaultLayerID = 0

// ErrKeyNotFound is returned when a character does not exist on any modeled
// layer of the keyboard.
var ErrKeyNotFound = fmt.Errorf("key not found on keyboard")

// Rect is a key bounding box in keyboard coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Width returns the horizontal extent of the box.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent of the box.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

func (r Rect) center() (float64, float64) {
	return r.Left + r.Width()/2, r.Top + r.Height()/2
}

func (r Rect) contains(x, y float64) bool {
	return r.Left <= x && x <= r.Right && r.Top <= y && y <= r.Bottom
}

// Point is a position in keyboard coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Button is one key of a keyboard layer, as declared by the external layout
// format. Labels holds the primary character first, then accent variants.
type Button struct {
	Type   int      `json:"type"`
	Labels []string `json:"labels"`
	Bounds Rect     `json:"boundingRect"`
	Center Point    `json:"centerPoint"`
}

// Layer is an ordered list of buttons sharing one keyboard layer id.
type Layer struct {
	ID      int      `json:"id"`
	Buttons []Button `json:"buttons"`
}

// Settings carries the language configuration shipped with a layout.
type Settings struct {
	AllowedSymbolsInWords string `json:"allowed_symbols_in_words"`
}

// Keyboard is the external keyboard description: an ordered list of layers
// plus language settings.
type Keyboard struct {
	Layout   []Layer  `json:"layout"`
	Settings Settings `json:"settings"`
	Name     string   `json:"default-layout"`
}

// KeyInfo is the canonical geometry of one character.
type KeyInfo struct {
	LayerID int
	Width   float64
	Height  float64
	CenterX float64
	CenterY float64
}

// layerKey is one (character, box) entry of a per-layer lookup table.
type layerKey struct {
	char   rune
	bounds Rect
}

// Helper answers geometry queries for a keyboard layout.
type Helper struct {
	keys            map[rune]KeyInfo
	layers          map[int][]layerKey
	accents         []rune
	letterAccents   []rune
	spellingSymbols map[rune]struct{}
	name            string
}

// Option tunes layout construction.
type Option func(*options)

type options struct {
	ignoreLayersAfter int
}

// IgnoreLayersAfter drops layers whose id is above the given cutoff.
func IgnoreLayersAfter(id int) Option {
	return func(o *options) { o.ignoreLayersAfter = id }
}

// LoadKeyboard parses a keyboard description from a JSON file.
func LoadKeyboard(path string) (Keyboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Keyboard{}, fmt.Errorf("failed to read keyboard layout: %w", err)
	}
	var kb Keyboard
	if err := json.Unmarshal(data, &kb); err != nil {
		return Keyboard{}, fmt.Errorf("failed to decode keyboard layout: %w", err)
	}
	return kb, nil
}

// Load parses a keyboard description from a JSON file and builds a Helper.
func Load(path string, opts ...Option) (*Helper, error) {
	kb, err := LoadKeyboard(path)
	if err != nil {
		return nil, err
	}
	return New(kb, opts...), nil
}

// New builds a Helper from an already loaded keyboard description.
func New(kb Keyboard, opts ...Option) *Helper {
	o := options{ignoreLayersAfter: noLayerCutoff}
	for _, opt := range opts {
		opt(&o)
	}

	h := &Helper{
		keys:            make(map[rune]KeyInfo),
		layers:          make(map[int][]layerKey),
		spellingSymbols: make(map[rune]struct{}),
		name:            kb.Name,
	}
	for _, r := range kb.Settings.AllowedSymbolsInWords {
		h.spellingSymbols[r] = struct{}{}
	}

	accentSet := make(map[rune]struct{})

	// Virtual layers for accent groups are allocated after the real ones.
	nextVirtualID := len(kb.Layout)

	for _, layer := range kb.Layout {
		if layer.Buttons == nil {
			continue
		}
		if o.ignoreLayersAfter != noLayerCutoff && layer.ID > o.ignoreLayersAfter {
			continue
		}
		for _, button := range layer.Buttons {
			if len(button.Labels) == 0 {
				continue
			}
			label, accents := button.Labels[0], button.Labels[1:]

			if button.Type != buttonTypeChar {
				switch {
				case lower(label) == spacebarLabel:
					label = " "
				case label == pointLabel:
					// The point key keeps its character.
				default:
					// Shift, backspace, numbers, magic keys...
					continue
				}
			}

			char := firstRune(label)

			// The flat table keeps the lowest layer id seen for a character.
			if prev, ok := h.keys[char]; !ok || prev.LayerID > layer.ID {
				cx, cy := button.Center.X, button.Center.Y
				h.keys[char] = KeyInfo{
					LayerID: layer.ID,
					Width:   button.Bounds.Width(),
					Height:  button.Bounds.Height(),
					CenterX: cx,
					CenterY: cy,
				}
			}
			h.layers[layer.ID] = append(h.layers[layer.ID], layerKey{char: char, bounds: button.Bounds})

			for i, accent := range accents {
				ar := firstRune(accent)
				accentSet[ar] = struct{}{}

				bounds := virtualKeyBounds(i, button.Bounds)
				if _, ok := h.keys[ar]; !ok {
					cx, cy := bounds.center()
					h.keys[ar] = KeyInfo{
						LayerID: nextVirtualID,
						Width:   bounds.Width(),
						Height:  bounds.Height(),
						CenterX: cx,
						CenterY: cy,
					}
				}
				h.layers[nextVirtualID] = append(h.layers[nextVirtualID], layerKey{char: ar, bounds: bounds})
			}
			if len(accents) > 0 {
				nextVirtualID++
			}
		}
	}

	h.accents = sortedRunes(accentSet)
	for _, r := range h.accents {
		if unicode.IsLetter(r) {
			h.letterAccents = append(h.letterAccents, r)
		}
	}
	return h
}

// virtualKeyBounds places the idx-th accent of a button on a synthetic grid
// anchored at the base key: 4 accents per line, lines stacked upward.
func virtualKeyBounds(idx int, base Rect) Rect {
	width := base.Width()
	height := base.Height()
	startX := base.Left + float64(idx%accentsPerLine)*width
	startY := base.Bottom - float64(idx/accentsPerLine)*height
	return Rect{
		Left:   startX,
		Right:  startX + width,
		Top:    startY - height,
		Bottom: startY,
	}
}

// KeyInfo returns the canonical geometry for a character, or ErrKeyNotFound
// if the character does not exist on any modeled layer.
func (h *Helper) KeyInfo(char rune) (KeyInfo, error) {
	k, ok := h.keys[char]
	if !ok {
		return KeyInfo{}, fmt.Errorf("%w: %q", ErrKeyNotFound, char)
	}
	return k, nil
}

// KeyAt returns the character under the given position in the given layer.
// Positions outside every bounding box resolve to the key with the nearest
// box center (first minimum wins on ties).
func (h *Helper) KeyAt(x, y float64, layerID int) rune {
	layer := h.layers[layerID]
	for _, k := range layer {
		if k.bounds.contains(x, y) {
			return k.char
		}
	}

	var closest rune
	best := math.Inf(1)
	for _, k := range layer {
		cx, cy := k.bounds.center()
		if d := euclideanDist(x, y, cx, cy); d < best {
			best = d
			closest = k.char
		}
	}
	return closest
}

// IsSpellingSymbol reports whether the character is allowed mid-word.
func (h *Helper) IsSpellingSymbol(char rune) bool {
	_, ok := h.spellingSymbols[char]
	return ok
}

// LetterAccents returns the accented characters that are letters.
func (h *Helper) LetterAccents() []rune { return h.letterAccents }

// Accents returns every accent variant present on the keyboard.
func (h *Helper) Accents() []rune { return h.accents }

// Name returns the default layout identifier.
func (h *Helper) Name() string { return h.name }

func euclideanDist(x1, y1, x2, y2 float64) float64 {
	dx, dy := x1-x2, y1-y2
	return math.Sqrt(dx*dx + dy*dy)
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lower(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, unicode.ToLower(r))
	}
	return string(out)
}

func sortedRunes(set map[rune]struct{}) []rune {
	out := make([]rune, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
