package parser

import (
	"unicode"

	"github.com/schemaforge-labs/schemaforge/pkg/token"
)

// Lexer tokenizes DDL text byte by byte. It understands single-quoted
// strings with doubled-quote escapes, quoted identifiers in the three
// common conventions ("x", `x`, [x]), numbers with decimal and exponent
// parts, and skips line and block comments.
type Lexer struct {
	input   string
	pos     int  // current position in input (points to current char)
	readPos int  // next reading position
	ch      byte // current char under examination
	line    int
	col     int
}

// NewLexer returns a lexer positioned at the start of input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1, col: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{Line: l.line, Column: l.col, Offset: l.pos}
}

// NextToken scans and returns the next token in the input.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Literal: "", Pos: pos}
	case '(':
		l.readChar()
		return token.Token{Type: token.LPAREN, Literal: "(", Pos: pos}
	case ')':
		l.readChar()
		return token.Token{Type: token.RPAREN, Literal: ")", Pos: pos}
	case ',':
		l.readChar()
		return token.Token{Type: token.COMMA, Literal: ",", Pos: pos}
	case ';':
		l.readChar()
		return token.Token{Type: token.SEMICOLON, Literal: ";", Pos: pos}
	case '.':
		l.readChar()
		return token.Token{Type: token.DOT, Literal: ".", Pos: pos}
	case '=':
		l.readChar()
		return token.Token{Type: token.EQ, Literal: "=", Pos: pos}
	case '+':
		l.readChar()
		return token.Token{Type: token.PLUS, Literal: "+", Pos: pos}
	case '*':
		l.readChar()
		return token.Token{Type: token.STAR, Literal: "*", Pos: pos}
	case '/':
		l.readChar()
		return token.Token{Type: token.SLASH, Literal: "/", Pos: pos}
	case '%':
		l.readChar()
		return token.Token{Type: token.PERCENT, Literal: "%", Pos: pos}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Type: token.LE, Literal: "<=", Pos: pos}
		}
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return token.Token{Type: token.NE, Literal: "<>", Pos: pos}
		}
		l.readChar()
		return token.Token{Type: token.LT, Literal: "<", Pos: pos}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Type: token.GE, Literal: ">=", Pos: pos}
		}
		l.readChar()
		return token.Token{Type: token.GT, Literal: ">", Pos: pos}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Type: token.NE, Literal: "!=", Pos: pos}
		}
		l.readChar()
		return token.Token{Type: token.ILLEGAL, Literal: "!", Pos: pos}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			l.readChar()
			return token.Token{Type: token.DPIPE, Literal: "||", Pos: pos}
		}
		l.readChar()
		return token.Token{Type: token.ILLEGAL, Literal: "|", Pos: pos}
	case '-':
		l.readChar()
		return token.Token{Type: token.MINUS, Literal: "-", Pos: pos}
	case '\'':
		return token.Token{Type: token.STRING, Literal: l.readString('\''), Pos: pos}
	case '"':
		return token.Token{Type: token.IDENT, Literal: l.readQuotedIdentifier('"'), Pos: pos}
	case '`':
		return token.Token{Type: token.IDENT, Literal: l.readQuotedIdentifier('`'), Pos: pos}
	case '[':
		return token.Token{Type: token.IDENT, Literal: l.readQuotedIdentifier(']'), Pos: pos}
	}

	if isLetter(l.ch) {
		lit := l.readIdentifier()
		return token.Token{Type: token.LookupIdent(lit), Literal: lit, Pos: pos}
	}
	if isDigit(l.ch) {
		return token.Token{Type: token.NUMBER, Literal: l.readNumber(), Pos: pos}
	}

	ch := l.ch
	l.readChar()
	return token.Token{Type: token.ILLEGAL, Literal: string(ch), Pos: pos}
}

// readString reads a quoted literal, handling escape by doubling
// ('It''s' reads as It's). The returned literal excludes the quotes.
func (l *Lexer) readString(quote byte) string {
	var out []byte
	l.readChar() // skip opening quote
	for {
		if l.ch == 0 {
			break
		}
		if l.ch == quote {
			if l.peekChar() == quote {
				out = append(out, quote)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			break
		}
		out = append(out, l.ch)
		l.readChar()
	}
	return string(out)
}

// readQuotedIdentifier reads a delimited identifier up to the given
// closing delimiter, which escapes by doubling ([weird]]name] reads as
// weird]name).
func (l *Lexer) readQuotedIdentifier(end byte) string {
	var out []byte
	l.readChar() // skip opening delimiter
	for {
		if l.ch == 0 {
			break
		}
		if l.ch == end {
			if l.peekChar() == end {
				out = append(out, end)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing delimiter
			break
		}
		out = append(out, l.ch)
		l.readChar()
	}
	return string(out)
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		peek := l.peekChar()
		if isDigit(peek) || peek == '+' || peek == '-' {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return l.input[start:l.pos]
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '-' && l.peekChar() == '-':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for {
				if l.ch == 0 {
					return
				}
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					break
				}
				l.readChar()
			}
		default:
			return
		}
	}
}

func isLetter(ch byte) bool {
	return ch == '_' || unicode.IsLetter(rune(ch))
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize scans the entire input and returns all tokens including the
// trailing EOF. Useful for tests and debugging.
func Tokenize(input string) []token.Token {
	l := NewLexer(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}
