package fonts

import (
	"bytes"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

type FontName string

const (
	Regular FontName = "regular"
	Title   FontName = "title"
	Small   FontName = "small"
)

func (f FontName) Get() text.Face {
	return getFont(f)
}

var (
	source *text.GoTextFaceSource
	fonts  = map[FontName]text.Face{}
)

// LoadDefaults registers the bundled Go Regular face at the sizes the viewer
// draws with.
func LoadDefaults() error {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return fmt.Errorf("load font source: %w", err)
	}
	source = s
	LoadFontWithSize(Regular, 14)
	LoadFontWithSize(Title, 24)
	LoadFontWithSize(Small, 11)
	return nil
}

func LoadFontWithSize(name FontName, size float64) {
	fonts[name] = &text.GoTextFace{Source: source, Size: size}
}

func getFont(name FontName) text.Face {
	f, ok := fonts[name]
	if !ok {
		panic(fmt.Sprintf("Font %s not found", name))
	}
	return f
}
