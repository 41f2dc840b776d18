package css

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ErrInvalidDeclaration is returned when a declaration list cannot be parsed.
var ErrInvalidDeclaration = errors.New("invalid css declaration")

var (
	declLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Comment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"|'(?:\\.|[^'])*'`},
		{Name: "URL", Pattern: `url\([^)]*\)`},
		{Name: "Function", Pattern: `-?[A-Za-z_][A-Za-z0-9_-]*\([^)]*\)`},
		{Name: "Important", Pattern: `!\s*important`},
		{Name: "Ident", Pattern: `-{0,2}[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Colon", Pattern: `:`},
		{Name: "Semi", Pattern: `;`},
		{Name: "Comma", Pattern: `,`},
		{Name: "Other", Pattern: `[^;:,\s"'()]+`},
	})

	declParser = participle.MustBuild[List](
		participle.Lexer(declLexer),
		participle.Elide("Whitespace", "Comment"),
	)
)

// List is a `;`-separated declaration list, as found in a style attribute.
type List struct {
	Declarations []*Declaration `parser:"Semi* ( @@ Semi* )*"`
}

// Declaration is one `property: value` pair.
type Declaration struct {
	Property  string   `parser:"@Ident Colon"`
	Tokens    []string `parser:"@( Function | URL | String | Ident | Other | Comma | Colon )*"`
	Important bool     `parser:"@Important?"`
}

// Value joins the captured tokens back into a single CSS value.
func (d *Declaration) Value() string {
	var b strings.Builder
	for i, tok := range d.Tokens {
		if i > 0 && tok != "," {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
	}
	return b.String()
}

// String renders the declaration the way it was written, minus extra whitespace.
func (d *Declaration) String() string {
	s := strings.ToLower(d.Property) + ": " + d.Value()
	if d.Important {
		s += " !important"
	}
	return s
}

// Parse parses a declaration list such as "color: red; font-size: 12px".
func Parse(input string) (*List, error) {
	list, err := declParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidDeclaration, input, err)
	}
	return list, nil
}

// ParseOne parses exactly one declaration.
func ParseOne(input string) (*Declaration, error) {
	list, err := Parse(input)
	if err != nil {
		return nil, err
	}
	if len(list.Declarations) != 1 {
		return nil, fmt.Errorf("%w: %q: expected one declaration, got %d", ErrInvalidDeclaration, input, len(list.Declarations))
	}
	return list.Declarations[0], nil
}

// Map flattens the list into property → value; later declarations win unless
// an earlier one was marked !important.
func (l *List) Map() map[string]string {
	out := make(map[string]string, len(l.Declarations))
	important := map[string]bool{}
	for _, d := range l.Declarations {
		prop := strings.ToLower(d.Property)
		if important[prop] && !d.Important {
			continue
		}
		out[prop] = d.Value()
		if d.Important {
			important[prop] = true
		}
	}
	return out
}
