package filter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// exprLexer tokenizes the compact filter syntax used by the CLI, e.g.
//
//	age >= 18 and (name icontains "jo" or email endsWith ".com")
var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `\b(and|or|AND|OR)\b`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Compare", Pattern: `>=|<=|=|>|<`},
	{Name: "Punct", Pattern: `[()]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type orExpr struct {
	Left  *andExpr   `@@`
	Right []*andExpr `( ( "or" | "OR" ) @@ )*`
}

type andExpr struct {
	Left  *termExpr   `@@`
	Right []*termExpr `( ( "and" | "AND" ) @@ )*`
}

type termExpr struct {
	Group      *orExpr         `  "(" @@ ")"`
	Comparison *comparisonExpr `| @@`
}

type comparisonExpr struct {
	Field string     `@Ident`
	Op    string     `@( Compare | "contains" | "startsWith" | "endsWith" | "icontains" )`
	Value *valueExpr `@@`
}

type valueExpr struct {
	Number *string `  @Number`
	String *string `| @String`
}

var exprParser = participle.MustBuild[orExpr](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

var exprOperators = map[string]string{
	"=":          "equals",
	">":          "gt",
	"<":          "lt",
	">=":         "gte",
	"<=":         "lte",
	"contains":   "contains",
	"startsWith": "startsWith",
	"endsWith":   "endsWith",
	"icontains":  "containsInsensitive",
}

// ParseExpr parses the compact filter syntax into a Node for entity.
// Field names may be given as input names or column names.
func ParseExpr(entity *Entity, src string) (*Node, error) {
	if strings.TrimSpace(src) == "" {
		return &Node{}, nil
	}

	ast, err := exprParser.ParseString("filter", src)
	if err != nil {
		return nil, fmt.Errorf("parse filter expression: %w", err)
	}
	return entity.Decode(ast.lower())
}

func (e *orExpr) lower() map[string]any {
	if len(e.Right) == 0 {
		return e.Left.lower()
	}
	items := []any{e.Left.lower()}
	for _, r := range e.Right {
		items = append(items, r.lower())
	}
	return map[string]any{"or": items}
}

func (e *andExpr) lower() map[string]any {
	if len(e.Right) == 0 {
		return e.Left.lower()
	}
	items := []any{e.Left.lower()}
	for _, r := range e.Right {
		items = append(items, r.lower())
	}
	return map[string]any{"and": items}
}

func (t *termExpr) lower() map[string]any {
	if t.Group != nil {
		return t.Group.lower()
	}
	c := t.Comparison

	var v any
	switch {
	case c.Value.Number != nil:
		v = json.Number(*c.Value.Number)
	case c.Value.String != nil:
		v = *c.Value.String
	}
	return map[string]any{
		c.Field: map[string]any{exprOperators[c.Op]: v},
	}
}
