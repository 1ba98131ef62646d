package layout

import "fmt"

// Builtin QWERTY geometry, in abstract keyboard units.
const (
	keyWidth   = 36.0
	keyHeight  = 54.0
	rowSpacing = 2.0
	colSpacing = 2.0
)

// Accent variants attached to base keys, iOS-style long-press groups.
var builtinAccents = map[rune]string{
	'a': "àáâäæãåā",
	'e': "èéêëēėę",
	'i': "îïíīįì",
	'o': "ôöòóœøōõ",
	'u': "ûüùú",
	'n': "ñń",
	'c': "çćč",
	's': "śš",
	'y': "ÿ",
	'z': "žźż",
	'A': "ÀÁÂÄÆÃÅĀ",
	'E': "ÈÉÊËĒĖĘ",
	'I': "ÎÏÍĪĮÌ",
	'O': "ÔÖÒÓŒØŌÕ",
	'U': "ÛÜÙÚ",
	'N': "ÑŃ",
	'C': "ÇĆČ",
	'S': "ŚŠ",
	'Y': "Ÿ",
	'Z': "ŽŹŻ",
}

var builtinRows = map[string][][]string{
	"en-US": {
		{"qwertyuiop", "asdfghjkl", "zxcvbnm"},
		{"QWERTYUIOP", "ASDFGHJKL", "ZXCVBNM"},
		{"1234567890", "-/:;()$&@\"", ".,?!'"},
	},
}

// Builtin returns the built-in keyboard description for a language, expressed
// in the same structure as an externally supplied layout.
func Builtin(lang string) (Keyboard, error) {
	rows, ok := builtinRows[lang]
	if !ok {
		return Keyboard{}, fmt.Errorf("no built-in keyboard layout for language %q", lang)
	}

	kb := Keyboard{
		Name: lang,
		Settings: Settings{
			AllowedSymbolsInWords: "'-",
		},
	}
	for id, layerRows := range rows {
		layer := Layer{ID: id}
		for rowIdx, row := range layerRows {
			indent := rowIndent(len([]rune(row)))
			for colIdx, char := range row {
				layer.Buttons = append(layer.Buttons, charButton(char, rowIdx, colIdx, indent, id == DefaultLayerID || id == 1))
			}
		}
		layer.Buttons = append(layer.Buttons, spacebarButton(len(layerRows)))
		if id == DefaultLayerID {
			layer.Buttons = append(layer.Buttons, pointButton(len(layerRows)))
		}
		kb.Layout = append(kb.Layout, layer)
	}
	return kb, nil
}

// rowIndent centers shorter rows under a 10-key top row.
func rowIndent(rowLen int) float64 {
	full := 10
	return float64(full-rowLen) * (keyWidth + colSpacing) / 2
}

func charButton(char rune, row, col int, indent float64, withAccents bool) Button {
	left := indent + float64(col)*(keyWidth+colSpacing)
	top := float64(row) * (keyHeight + rowSpacing)
	bounds := Rect{Left: left, Right: left + keyWidth, Top: top, Bottom: top + keyHeight}
	labels := []string{string(char)}
	if withAccents {
		for _, accent := range builtinAccents[char] {
			labels = append(labels, string(accent))
		}
	}
	return Button{
		Type:   buttonTypeChar,
		Labels: labels,
		Bounds: bounds,
		Center: Point{X: left + keyWidth/2, Y: top + keyHeight/2},
	}
}

// spacebarButton places a wide special key below the letter rows, with the
// point key to its right.
func spacebarButton(belowRows int) Button {
	top := float64(belowRows) * (keyHeight + rowSpacing)
	width := 5 * (keyWidth + colSpacing)
	left := 2.5 * (keyWidth + colSpacing)
	return Button{
		Type:   2,
		Labels: []string{"spacebar"},
		Bounds: Rect{Left: left, Right: left + width, Top: top, Bottom: top + keyHeight},
		Center: Point{X: left + width/2, Y: top + keyHeight/2},
	}
}

// pointButton is the period key next to the spacebar. It is a special button
// in the external format, but its character is still typable.
func pointButton(belowRows int) Button {
	top := float64(belowRows) * (keyHeight + rowSpacing)
	left := 7.5 * (keyWidth + colSpacing)
	return Button{
		Type:   2,
		Labels: []string{"."},
		Bounds: Rect{Left: left, Right: left + keyWidth, Top: top, Bottom: top + keyHeight},
		Center: Point{X: left + keyWidth/2, Y: top + keyHeight/2},
	}
}
