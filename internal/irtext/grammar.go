// Package irtext is a small test/demo fixture language for the block-merge
// pass: a Lisp-ish textual notation for ir.Expr trees, parsed with
// participle the same way kanso's own grammar package parses its source
// language. It is not a general IR-construction frontend — only the node
// kinds the pass itself cares about are representable, and the grammar
// stays deliberately small.
package irtext

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var textLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `;[^\n]*`},
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.]*`},
	{Name: "Dollar", Pattern: `\$[A-Za-z0-9_]*`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

// SExpr is one parenthesized form: a head identifier followed by zero or
// more arguments. Build walks this generic shape into an ir.Expr the way
// kanso's internal/semantic walks ast.Expr into internal/ir instructions.
type SExpr struct {
	Pos  lexer.Position
	Head string `"(" @Ident`
	Args []*Arg `@@* ")"`
}

// Arg is one argument slot: a nested form, an integer, a quoted string, a
// "$label" token, or a bare identifier (used for function names).
type Arg struct {
	Pos   lexer.Position
	Sub   *SExpr  `  @@`
	Int   *int64  `| @Int`
	Str   *string `| @String`
	Label *string `| @Dollar`
	Ident *string `| @Ident`
}

// File is a sequence of top-level "(func name body)" forms, the textual
// format cmd/blockmerge-cli and the package's own fixtures load.
type File struct {
	Funcs []*SExpr `@@*`
}

var exprParser = participle.MustBuild[SExpr](
	participle.Lexer(textLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

var fileParser = participle.MustBuild[File](
	participle.Lexer(textLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

// ParseSExpr parses one top-level form from src.
func ParseSExpr(name, src string) (*SExpr, error) {
	expr, err := exprParser.ParseString(name, src)
	if err != nil {
		return nil, fmt.Errorf("irtext: %w", err)
	}
	return expr, nil
}

// ParseFile parses a sequence of "(func name body)" forms from src.
func ParseFile(name, src string) (*File, error) {
	file, err := fileParser.ParseString(name, src)
	if err != nil {
		return nil, fmt.Errorf("irtext: %w", err)
	}
	return file, nil
}
