// Package fieldexpr compiles small arithmetic expressions over vertex
// coordinates x, y and z into scalar fields.
package fieldexpr

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

type Expression struct {
	Left  *Term     `parser:"@@"`
	Right []*OpTerm `parser:"@@*"`
}

type OpTerm struct {
	Op   string `parser:"@(\"+\" | \"-\")"`
	Term *Term  `parser:"@@"`
}

type Term struct {
	Left  *Factor     `parser:"@@"`
	Right []*OpFactor `parser:"@@*"`
}

type OpFactor struct {
	Op     string  `parser:"@(\"*\" | \"/\")"`
	Factor *Factor `parser:"@@"`
}

// Factor binds looser than ^, so -x^2 is -(x^2).
type Factor struct {
	Signs []string `parser:"@(\"-\" | \"+\")*"`
	Power *Power   `parser:"@@"`
}

// Power is right associative.
type Power struct {
	Base     *Primary `parser:"@@"`
	Exponent *Factor  `parser:"(\"^\" @@)?"`
}

type Primary struct {
	Number *float64    `parser:"  @Number"`
	Call   *Call       `parser:"| @@"`
	Var    *string     `parser:"| @Ident"`
	Sub    *Expression `parser:"| \"(\" @@ \")\""`
}

type Call struct {
	Name string        `parser:"@Ident \"(\""`
	Args []*Expression `parser:"(@@ (\",\" @@)*)? \")\""`
}

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[-+*/^(),]`},
	{Name: "whitespace", Pattern: `\s+`},
})

var parseExpression = participle.MustBuild[Expression](
	participle.Lexer(exprLexer),
	participle.UseLookahead(2),
)
