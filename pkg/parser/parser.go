// Package parser reconstructs a schema graph from DDL text. It reads
// CREATE TABLE statements across the supported dialect syntaxes without
// needing to be told which dialect produced them, collects every defect
// it finds instead of stopping at the first, and resynchronizes at
// statement boundaries after malformed input. Foreign-key targets are
// resolved only after the whole input has been read, so tables may
// reference tables declared later.
package parser

import (
	"strconv"
	"strings"

	"github.com/schemaforge-labs/schemaforge/pkg/dialect"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
	"github.com/schemaforge-labs/schemaforge/pkg/token"
)

// Parser turns DDL text into a schema graph.
type Parser struct {
	lexer *Lexer
	input string

	cur  token.Token
	peek token.Token

	defects   []schema.Defect
	tables    []*schema.Table
	sawCreate bool
}

// NewParser returns a parser over the given DDL text.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input), input: input}
	p.next()
	p.next()
	return p
}

// Parse is shorthand for NewParser(input).Parse().
func Parse(input string) (*schema.Schema, error) {
	return NewParser(input).Parse()
}

// Parse consumes the whole input and returns the reconstructed schema.
// On any defect it returns nil and a *schema.DefectError carrying every
// defect found, from both parsing and the structural validation that
// runs once all tables are in.
func (p *Parser) Parse() (*schema.Schema, error) {
	if p.cur.Type == token.EOF {
		p.defects = append(p.defects, schema.Defect{
			Kind:    schema.DefectEmptyInput,
			Message: "input contains no statements",
		})
		return nil, &schema.DefectError{Defects: p.defects}
	}

	for p.cur.Type != token.EOF {
		p.parseStatement()
	}

	if !p.sawCreate {
		p.defects = append(p.defects, schema.Defect{
			Kind:    schema.DefectNoTables,
			Message: "input contains no CREATE TABLE statements",
		})
	}

	s := &schema.Schema{Tables: p.tables}
	p.defects = append(p.defects, schema.Validate(s)...)
	if len(p.defects) > 0 {
		return nil, &schema.DefectError{Defects: p.defects}
	}
	return s, nil
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

// expect consumes the current token when it matches t, otherwise records
// a defect and leaves the token in place.
func (p *Parser) expect(t token.TokenType) bool {
	if p.cur.Type != t {
		p.malformedAt(p.cur, "unexpected %s, expected %s", describe(p.cur), t)
		return false
	}
	p.next()
	return true
}

func (p *Parser) parseStatement() {
	switch p.cur.Type {
	case token.SEMICOLON:
		p.next()
	case token.CREATE:
		switch p.peek.Type {
		case token.TABLE:
			p.sawCreate = true
			p.parseCreateTable()
		case token.INDEX, token.UNIQUE:
			// index definitions carry no schema structure we model
			p.next()
			p.resync()
		default:
			p.malformedAt(p.peek, "unexpected %s after CREATE, expected TABLE or INDEX", describe(p.peek))
			p.next()
			p.resync()
		}
	case token.DROP, token.SET:
		// DROP TABLE preambles and session SET statements are dump noise
		p.next()
		p.resync()
	default:
		p.malformedAt(p.cur, "unexpected %s at start of statement", describe(p.cur))
		p.resync()
	}
}

// resync skips ahead to the next statement boundary: past the next
// semicolon, or to a CREATE or DROP when a separator is missing, so one
// bad statement cannot swallow the next.
func (p *Parser) resync() {
	for {
		switch p.cur.Type {
		case token.EOF, token.CREATE, token.DROP:
			return
		case token.SEMICOLON:
			p.next()
			return
		}
		p.next()
	}
}

// tableConstraint is a table-level constraint held until the whole table
// body has been read, so constraints may name columns defined after them.
type tableConstraint struct {
	tok  token.Token
	kind constraintKind
	cols []string
	ref  *schema.ForeignRef
}

type constraintKind int

const (
	constraintPrimary constraintKind = iota
	constraintUnique
	constraintForeign
)

func (p *Parser) parseCreateTable() {
	p.next() // CREATE
	p.next() // TABLE
	if p.cur.Type == token.IF {
		p.next()
		if p.cur.Type == token.NOT {
			p.next()
		}
		if p.cur.Type == token.EXISTS {
			p.next()
		}
	}

	name, ok := p.parseQualifiedName("table name")
	if !ok {
		p.resync()
		return
	}
	tbl := schema.NewTable(name)

	if !p.expect(token.LPAREN) {
		p.resync()
		p.tables = append(p.tables, tbl)
		return
	}

	var constraints []tableConstraint
	for p.cur.Type != token.RPAREN && p.cur.Type != token.EOF {
		p.parseTableItem(tbl, &constraints)
		if p.cur.Type == token.COMMA {
			p.next()
			continue
		}
		break
	}
	p.expect(token.RPAREN)

	for _, c := range constraints {
		p.applyConstraint(tbl, c)
	}

	// trailing table options (ENGINE=..., WITHOUT ROWID, ...) are not modeled
	p.resync()
	p.tables = append(p.tables, tbl)
}

func (p *Parser) parseQualifiedName(what string) (string, bool) {
	if p.cur.Type != token.IDENT {
		p.malformedAt(p.cur, "unexpected %s, expected %s", describe(p.cur), what)
		return "", false
	}
	name := p.cur.Literal
	p.next()
	for p.cur.Type == token.DOT {
		p.next()
		if p.cur.Type != token.IDENT {
			p.malformedAt(p.cur, "unexpected %s after %q., expected identifier", describe(p.cur), name)
			return "", false
		}
		// schema qualifiers are dropped; the graph is single-namespace
		name = p.cur.Literal
		p.next()
	}
	return name, true
}

func (p *Parser) parseTableItem(tbl *schema.Table, constraints *[]tableConstraint) {
	switch p.cur.Type {
	case token.CONSTRAINT:
		p.next()
		if p.cur.Type == token.IDENT {
			p.next() // constraint names are not modeled
		}
		p.parseTableItem(tbl, constraints)
	case token.PRIMARY:
		start := p.cur
		p.next()
		if !p.expect(token.KEY) {
			p.recoverTableItem()
			return
		}
		cols, ok := p.parseColumnList()
		if !ok {
			p.recoverTableItem()
			return
		}
		*constraints = append(*constraints, tableConstraint{tok: start, kind: constraintPrimary, cols: cols})
	case token.FOREIGN:
		start := p.cur
		p.next()
		if !p.expect(token.KEY) {
			p.recoverTableItem()
			return
		}
		cols, ok := p.parseColumnList()
		if !ok {
			p.recoverTableItem()
			return
		}
		if !p.expect(token.REFERENCES) {
			p.recoverTableItem()
			return
		}
		ref, ok := p.parseReference()
		if !ok {
			p.recoverTableItem()
			return
		}
		*constraints = append(*constraints, tableConstraint{tok: start, kind: constraintForeign, cols: cols, ref: ref})
	case token.UNIQUE:
		start := p.cur
		p.next()
		if p.cur.Type == token.KEY || p.cur.Type == token.INDEX {
			p.next()
		}
		if p.cur.Type == token.IDENT {
			p.next() // index name, not modeled
		}
		cols, ok := p.parseColumnList()
		if !ok {
			p.recoverTableItem()
			return
		}
		*constraints = append(*constraints, tableConstraint{tok: start, kind: constraintUnique, cols: cols})
	case token.CHECK:
		// table-level checks have no single owning attribute; dropped
		p.next()
		if _, ok := p.scanParenExpr(); !ok {
			p.recoverTableItem()
		}
	case token.KEY, token.INDEX:
		// inline index definitions (MySQL KEY idx (col)) carry no structure
		p.next()
		if p.cur.Type == token.IDENT {
			p.next()
		}
		if _, ok := p.scanParenExpr(); !ok {
			p.recoverTableItem()
		}
	case token.IDENT:
		p.parseColumnDef(tbl)
	default:
		p.malformedAt(p.cur, "unexpected %s in table %q", describe(p.cur), tbl.Name)
		p.recoverTableItem()
	}
}

// recoverTableItem skips ahead to the end of the current table item: the
// comma or closing paren at nesting depth zero, or a statement boundary.
// Neither terminator is consumed.
func (p *Parser) recoverTableItem() {
	depth := 0
	for {
		switch p.cur.Type {
		case token.EOF, token.SEMICOLON:
			return
		case token.LPAREN:
			depth++
		case token.RPAREN:
			if depth == 0 {
				return
			}
			depth--
		case token.COMMA:
			if depth == 0 {
				return
			}
		}
		p.next()
	}
}

func (p *Parser) parseColumnList() ([]string, bool) {
	if !p.expect(token.LPAREN) {
		return nil, false
	}
	var cols []string
	for {
		if p.cur.Type != token.IDENT {
			p.malformedAt(p.cur, "unexpected %s in column list", describe(p.cur))
			return nil, false
		}
		cols = append(cols, p.cur.Literal)
		p.next()
		if p.cur.Type == token.COMMA {
			p.next()
			continue
		}
		break
	}
	if !p.expect(token.RPAREN) {
		return nil, false
	}
	return cols, true
}

// parseReference parses the tail of a REFERENCES clause: the target table,
// its column in parentheses, and any ON DELETE / ON UPDATE actions. The
// target is recorded by name only; resolution happens after the whole
// input has been read.
func (p *Parser) parseReference() (*schema.ForeignRef, bool) {
	target, ok := p.parseQualifiedName("referenced table")
	if !ok {
		return nil, false
	}
	if p.cur.Type != token.LPAREN {
		p.malformedAt(p.cur, "REFERENCES %s requires an explicit column", target)
		return nil, false
	}
	p.next()
	if p.cur.Type != token.IDENT {
		p.malformedAt(p.cur, "unexpected %s, expected referenced column", describe(p.cur))
		return nil, false
	}
	ref := &schema.ForeignRef{
		Table:       target,
		Attr:        p.cur.Literal,
		Cardinality: schema.OneToMany,
		OnDelete:    schema.NoAction,
		OnUpdate:    schema.NoAction,
	}
	p.next()
	if !p.expect(token.RPAREN) {
		return nil, false
	}
	for p.cur.Type == token.ON {
		p.next()
		event := p.cur
		if event.Type != token.DELETE && event.Type != token.UPDATE {
			p.malformedAt(event, "unexpected %s after ON, expected DELETE or UPDATE", describe(event))
			return nil, false
		}
		p.next()
		action, ok := p.parseAction()
		if !ok {
			return nil, false
		}
		if event.Type == token.DELETE {
			ref.OnDelete = action
		} else {
			ref.OnUpdate = action
		}
	}
	return ref, true
}

func (p *Parser) parseAction() (schema.Action, bool) {
	switch p.cur.Type {
	case token.CASCADE:
		p.next()
		return schema.Cascade, true
	case token.RESTRICT:
		p.next()
		return schema.Restrict, true
	case token.NO:
		p.next()
		if p.cur.Type != token.ACTION {
			p.malformedAt(p.cur, "unexpected %s after NO, expected ACTION", describe(p.cur))
			return "", false
		}
		p.next()
		return schema.NoAction, true
	case token.SET:
		p.next()
		switch p.cur.Type {
		case token.NULL:
			p.next()
			return schema.SetNull, true
		case token.DEFAULT:
			p.next()
			return schema.SetDefault, true
		}
		p.malformedAt(p.cur, "unexpected %s after SET, expected NULL or DEFAULT", describe(p.cur))
		return "", false
	}
	p.malformedAt(p.cur, "unexpected %s, expected referential action", describe(p.cur))
	return "", false
}

func (p *Parser) parseColumnDef(tbl *schema.Table) {
	nameTok := p.cur
	name := nameTok.Literal
	p.next()

	if p.cur.Type == token.COMMA || p.cur.Type == token.RPAREN {
		p.malformedAt(nameTok, "column %q has no type", name)
		return
	}
	attr, ok := p.parseTypeSpec(name)
	if !ok {
		p.recoverTableItem()
		return
	}
	p.parseColumnOptions(attr)
	if attr.Ref != nil {
		attr.Ref.Optional = !attr.NotNull
	}
	tbl.Attributes = append(tbl.Attributes, attr)
}

// parseTypeSpec reads the column type, joining multiword forms (DOUBLE
// PRECISION, TIMESTAMP WITH TIME ZONE) and absorbing a parameter list.
// Recognized tokens map onto the abstract vocabulary; anything else is
// preserved verbatim as a raw type, parameters included.
func (p *Parser) parseTypeSpec(name string) (*schema.Attribute, bool) {
	typeTok := p.cur
	if typeTok.Type != token.IDENT {
		p.malformedAt(typeTok, "unexpected %s, expected a type for column %q", describe(typeTok), name)
		return nil, false
	}
	base := typeTok.Literal
	p.next()

	if p.cur.Type == token.IDENT {
		if _, known := dialect.Resolve(base + " " + p.cur.Literal); known {
			base += " " + p.cur.Literal
			p.next()
		} else if strings.EqualFold(p.cur.Literal, "WITH") || strings.EqualFold(p.cur.Literal, "WITHOUT") {
			for p.cur.Type == token.IDENT && isTimeZoneWord(p.cur.Literal) {
				base += " " + p.cur.Literal
				p.next()
			}
		}
	}

	var nums []int
	var strVals []string
	sawMax := false
	end := p.cur.Pos.Offset
	if p.cur.Type == token.LPAREN {
		p.next()
		depth := 1
		for depth > 0 && p.cur.Type != token.EOF {
			switch p.cur.Type {
			case token.LPAREN:
				depth++
			case token.RPAREN:
				depth--
				if depth == 0 {
					end = p.cur.Pos.Offset + 1
				}
			case token.NUMBER:
				if depth == 1 {
					if n, err := strconv.Atoi(p.cur.Literal); err == nil {
						nums = append(nums, n)
					}
				}
			case token.STRING:
				if depth == 1 {
					strVals = append(strVals, p.cur.Literal)
				}
			case token.IDENT:
				if depth == 1 && strings.EqualFold(p.cur.Literal, "MAX") {
					sawMax = true
				}
			}
			p.next()
		}
	}

	info, known := dialect.Resolve(base)
	if !known {
		attr := schema.NewAttribute(name, schema.TypeRaw)
		attr.Raw = strings.TrimSpace(p.input[typeTok.Pos.Offset:end])
		return attr, true
	}

	attr := schema.NewAttribute(name, info.Type)
	attr.AutoIncrement = info.AutoIncrement
	switch info.Type {
	case schema.TypeVarchar:
		if sawMax {
			attr.Type = schema.TypeText
		} else if len(nums) > 0 {
			attr.Size = nums[0]
		}
	case schema.TypeChar:
		if len(nums) > 0 {
			attr.Size = nums[0]
		}
	case schema.TypeDecimal:
		if len(nums) > 0 {
			attr.Precision = nums[0]
		}
		if len(nums) > 1 {
			attr.Scale = nums[1]
		}
	case schema.TypeEnum:
		attr.EnumValues = strVals
	}
	return attr, true
}

func isTimeZoneWord(word string) bool {
	return strings.EqualFold(word, "WITH") ||
		strings.EqualFold(word, "WITHOUT") ||
		strings.EqualFold(word, "TIME") ||
		strings.EqualFold(word, "ZONE")
}

func (p *Parser) parseColumnOptions(attr *schema.Attribute) {
	for {
		switch p.cur.Type {
		case token.COMMA, token.RPAREN, token.SEMICOLON, token.EOF:
			return
		case token.CONSTRAINT:
			p.next()
			if p.cur.Type == token.IDENT {
				p.next() // constraint names are not modeled
			}
		case token.PRIMARY:
			start := p.cur
			p.next()
			if !p.expect(token.KEY) {
				p.recoverTableItem()
				return
			}
			if attr.Ref != nil {
				p.malformedAt(start, "column %q cannot be both primary key and foreign key", attr.Name)
				continue
			}
			attr.Role = schema.RolePrimary
			attr.NotNull = true
		case token.NOT:
			p.next()
			if !p.expect(token.NULL) {
				p.recoverTableItem()
				return
			}
			attr.NotNull = true
		case token.NULL:
			p.next()
			attr.NotNull = false
		case token.UNIQUE:
			p.next()
			attr.Unique = true
		case token.AUTOINCREMENT:
			p.next()
			attr.AutoIncrement = true
		case token.IDENTITY:
			p.next()
			attr.AutoIncrement = true
			if p.cur.Type == token.LPAREN {
				if _, ok := p.scanParenExpr(); !ok {
					p.recoverTableItem()
					return
				}
			}
		case token.DEFAULT:
			p.next()
			raw, ok := p.scanDefaultExpr()
			if !ok {
				p.recoverTableItem()
				return
			}
			attr.Default = raw
		case token.CHECK:
			p.next()
			raw, ok := p.scanParenExpr()
			if !ok {
				p.recoverTableItem()
				return
			}
			attr.Check = raw
		case token.REFERENCES:
			start := p.cur
			p.next()
			ref, ok := p.parseReference()
			if !ok {
				p.recoverTableItem()
				return
			}
			if attr.Role == schema.RolePrimary {
				p.malformedAt(start, "column %q cannot be both primary key and foreign key", attr.Name)
				continue
			}
			attr.Ref = ref
			attr.Role = schema.RoleForeign
		default:
			p.malformedAt(p.cur, "unexpected %s in definition of column %q", describe(p.cur), attr.Name)
			p.recoverTableItem()
			return
		}
	}
}

// scanParenExpr consumes a balanced parenthesized group and returns the
// text between the outer parens, sliced verbatim from the input.
func (p *Parser) scanParenExpr() (string, bool) {
	if p.cur.Type != token.LPAREN {
		p.malformedAt(p.cur, "unexpected %s, expected (", describe(p.cur))
		return "", false
	}
	open := p.cur
	p.next()
	depth := 1
	for {
		switch p.cur.Type {
		case token.EOF:
			p.malformedAt(open, "unterminated parenthesized expression")
			return "", false
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				raw := strings.TrimSpace(p.input[open.Pos.Offset+1 : p.cur.Pos.Offset])
				p.next()
				return raw, true
			}
		}
		p.next()
	}
}

// scanDefaultExpr consumes a DEFAULT expression and returns it sliced
// verbatim from the input. The expression runs to the next comma or
// closing paren at nesting depth zero, or to the next column option
// keyword. The first token is always taken, so DEFAULT NULL works.
func (p *Parser) scanDefaultExpr() (string, bool) {
	start := p.cur
	switch start.Type {
	case token.COMMA, token.RPAREN, token.SEMICOLON, token.EOF:
		p.malformedAt(start, "missing expression after DEFAULT")
		return "", false
	}

	depth := 0
	first := true
loop:
	for {
		switch {
		case p.cur.Type == token.EOF || p.cur.Type == token.SEMICOLON:
			break loop
		case depth == 0 && (p.cur.Type == token.COMMA || p.cur.Type == token.RPAREN):
			break loop
		case depth == 0 && !first && isColumnOptionKeyword(p.cur.Type):
			break loop
		}
		if p.cur.Type == token.LPAREN {
			depth++
		} else if p.cur.Type == token.RPAREN {
			depth--
		}
		first = false
		p.next()
	}
	return strings.TrimSpace(p.input[start.Pos.Offset:p.cur.Pos.Offset]), true
}

func isColumnOptionKeyword(t token.TokenType) bool {
	switch t {
	case token.NOT, token.NULL, token.UNIQUE, token.PRIMARY, token.CHECK,
		token.REFERENCES, token.CONSTRAINT, token.AUTOINCREMENT,
		token.IDENTITY, token.KEY, token.ON:
		return true
	}
	return false
}

// applyConstraint attaches a deferred table-level constraint to the column
// it names. Composite key constraints are rejected; the graph models
// single-column keys only.
func (p *Parser) applyConstraint(tbl *schema.Table, c tableConstraint) {
	switch c.kind {
	case constraintPrimary:
		if len(c.cols) != 1 {
			p.addDefect(schema.DefectMultiplePrimary, c.tok, tbl.Name, "",
				"composite primary key on table %q is not supported", tbl.Name)
			return
		}
		attr := tbl.Attribute(c.cols[0])
		if attr == nil {
			p.addDefect(schema.DefectUnresolvedReference, c.tok, tbl.Name, c.cols[0],
				"primary key names unknown column %q", c.cols[0])
			return
		}
		if attr.Ref != nil {
			p.malformedAt(c.tok, "column %q cannot be both primary key and foreign key", attr.Name)
			return
		}
		attr.Role = schema.RolePrimary
		attr.NotNull = true
	case constraintUnique:
		if len(c.cols) != 1 {
			p.malformedAt(c.tok, "multi-column unique constraints are not supported")
			return
		}
		attr := tbl.Attribute(c.cols[0])
		if attr == nil {
			p.addDefect(schema.DefectUnresolvedReference, c.tok, tbl.Name, c.cols[0],
				"unique constraint names unknown column %q", c.cols[0])
			return
		}
		attr.Unique = true
	case constraintForeign:
		if len(c.cols) != 1 {
			p.malformedAt(c.tok, "composite foreign keys are not supported")
			return
		}
		attr := tbl.Attribute(c.cols[0])
		if attr == nil {
			p.addDefect(schema.DefectUnresolvedReference, c.tok, tbl.Name, c.cols[0],
				"foreign key names unknown column %q", c.cols[0])
			return
		}
		if attr.Role == schema.RolePrimary {
			p.malformedAt(c.tok, "column %q cannot be both primary key and foreign key", attr.Name)
			return
		}
		if attr.Ref != nil {
			p.malformedAt(c.tok, "column %q has more than one foreign key constraint", attr.Name)
			return
		}
		c.ref.Optional = !attr.NotNull
		attr.Ref = c.ref
		attr.Role = schema.RoleForeign
	}
}
