package parser

import (
	"fmt"

	"github.com/schemaforge-labs/schemaforge/pkg/schema"
	"github.com/schemaforge-labs/schemaforge/pkg/token"
)

// describe renders a token for defect messages.
func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.STRING:
		return fmt.Sprintf("string '%s'", tok.Literal)
	case token.NUMBER:
		return fmt.Sprintf("number %s", tok.Literal)
	default:
		if tok.Literal != "" {
			return fmt.Sprintf("%q", tok.Literal)
		}
		return tok.Type.String()
	}
}

// addDefect records a defect located at tok. Table and attr may be empty
// when the subject is not known yet.
func (p *Parser) addDefect(kind schema.DefectKind, tok token.Token, table, attr, format string, args ...any) {
	p.defects = append(p.defects, schema.Defect{
		Kind:      kind,
		Table:     table,
		Attribute: attr,
		Line:      tok.Pos.Line,
		Column:    tok.Pos.Column,
		Message:   fmt.Sprintf(format, args...),
	})
}

// malformedAt records a malformed-statement defect at tok.
func (p *Parser) malformedAt(tok token.Token, format string, args ...any) {
	p.addDefect(schema.DefectMalformedStatement, tok, "", "", format, args...)
}
