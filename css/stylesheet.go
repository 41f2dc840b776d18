package css

import (
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	tdcss "github.com/tdewolff/parse/v2/css"
)

// FontFace is an @font-face rule.
type FontFace struct {
	Family string
	Src    string // first url(...) of the src descriptor, unquoted
	Weight string
	Style  string
}

// Rule is a qualified rule with its selectors split on commas.
type Rule struct {
	Selectors    []string
	Declarations map[string]string
}

// Stylesheet holds what the renderer understands from a global stylesheet.
type Stylesheet struct {
	FontFaces []FontFace
	Rules     []Rule
}

// ParseStylesheet reads @font-face rules and plain rulesets. Other at-rules
// are skipped.
func ParseStylesheet(src string) (*Stylesheet, error) {
	sheet := &Stylesheet{}
	if strings.TrimSpace(src) == "" {
		return sheet, nil
	}
	p := tdcss.NewParser(parse.NewInputString(src), false)

	var (
		inFontFace bool
		face       FontFace
		rule       *Rule
		pending    []string // 选择器列表中最后一个之前的部分
		skipDepth  int
	)
	for {
		gt, _, data := p.Next()
		switch gt {
		case tdcss.ErrorGrammar:
			if err := p.Err(); err != nil && err != io.EOF {
				return nil, fmt.Errorf("解析样式表失败: %w", err)
			}
			return sheet, nil
		case tdcss.BeginAtRuleGrammar:
			if skipDepth == 0 && strings.EqualFold(string(data), "@font-face") {
				inFontFace = true
				face = FontFace{Weight: "normal", Style: "normal"}
				continue
			}
			skipDepth++
		case tdcss.EndAtRuleGrammar:
			if inFontFace {
				inFontFace = false
				if face.Family != "" {
					sheet.FontFaces = append(sheet.FontFaces, face)
				}
				continue
			}
			if skipDepth > 0 {
				skipDepth--
			}
		case tdcss.QualifiedRuleGrammar:
			if skipDepth > 0 {
				continue
			}
			pending = append(pending, splitSelectors(tokensString(p.Values()))...)
		case tdcss.BeginRulesetGrammar:
			if skipDepth > 0 {
				pending = nil
				continue
			}
			rule = &Rule{
				Selectors:    append(pending, splitSelectors(tokensString(p.Values()))...),
				Declarations: map[string]string{},
			}
			pending = nil
		case tdcss.EndRulesetGrammar:
			pending = nil
			if rule != nil {
				sheet.Rules = append(sheet.Rules, *rule)
				rule = nil
			}
		case tdcss.DeclarationGrammar:
			prop := strings.ToLower(string(data))
			value := strings.TrimSpace(tokensString(p.Values()))
			switch {
			case inFontFace:
				applyFontFace(&face, prop, value)
			case rule != nil:
				rule.Declarations[prop] = value
			}
		}
	}
}

func applyFontFace(face *FontFace, prop, value string) {
	switch prop {
	case "font-family":
		face.Family = Unquote(value)
	case "src":
		face.Src = firstURL(value)
	case "font-weight":
		face.Weight = value
	case "font-style":
		face.Style = value
	}
}

func tokensString(tokens []tdcss.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.Write(t.Data)
	}
	return b.String()
}

func splitSelectors(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstURL(value string) string {
	i := strings.Index(strings.ToLower(value), "url(")
	if i < 0 {
		return Unquote(value)
	}
	rest := value[i+4:]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return Unquote(rest)
	}
	return Unquote(strings.TrimSpace(rest[:end]))
}

// Unquote strips one pair of matching single or double quotes.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
