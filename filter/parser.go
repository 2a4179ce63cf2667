package filter

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	filterLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Or", Pattern: `\|\|`},
		{Name: "And", Pattern: `&&`},
		{Name: "Compare", Pattern: `==|!=|<=|>=|<|>`},
		{Name: "Not", Pattern: `!`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Number", Pattern: `\d+`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Paren", Pattern: `[()]`},
	})

	exprParser = participle.MustBuild[expression](
		participle.Lexer(filterLexer),
		participle.Elide("Whitespace"),
	)
)

// expression is the root node: conjunctions joined by ||.
type expression struct {
	Clauses []*conjunction `parser:"@@ ( Or @@ )*"`
}

// conjunction is a run of conditions joined by &&.
type conjunction struct {
	Terms []*condition `parser:"@@ ( And @@ )*"`
}

// condition is a negation, a parenthesised group, or a comparison.
type condition struct {
	Not        *condition  `parser:"  Not @@"`
	Group      *expression `parser:"| '(' @@ ')'"`
	Comparison *comparison `parser:"| @@"`
}

// comparison is field <op> operand.
type comparison struct {
	Pos   lexer.Position `parser:""`
	Field string         `parser:"@Ident"`
	Op    string         `parser:"@Compare"`
	Value *operand       `parser:"@@"`
}

// operand is a quoted string, an integer, or a bare word such as a
// severity level.
type operand struct {
	Str   *StringLiteral `parser:"  @String"`
	Num   *int           `parser:"| @Number"`
	Ident *string        `parser:"| @Ident"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

func parse(src string) (*expression, error) {
	return exprParser.ParseString("", src)
}
