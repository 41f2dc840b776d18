package fonts

import (
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// BuiltinFamily is the family name used when nothing else matches.
const BuiltinFamily = "Go"

// Builtin 返回内置字体（Go 字体）的字节数据，作为找不到字体时的兜底。
func Builtin(bold, italic bool) []byte {
	switch {
	case bold && italic:
		return gobolditalic.TTF
	case bold:
		return gobold.TTF
	case italic:
		return goitalic.TTF
	default:
		return goregular.TTF
	}
}

// BuiltinMono returns the monospace face used for generic `monospace` families.
func BuiltinMono() []byte { return gomono.TTF }

// IsBold reports whether a CSS font-weight value selects a bold face.
func IsBold(weight string) bool {
	w := strings.ToLower(strings.TrimSpace(weight))
	switch w {
	case "bold", "bolder", "600", "700", "800", "900":
		return true
	}
	return false
}

// IsItalic reports whether a CSS font-style value selects an italic face.
func IsItalic(style string) bool {
	s := strings.ToLower(strings.TrimSpace(style))
	return s == "italic" || strings.HasPrefix(s, "oblique")
}
