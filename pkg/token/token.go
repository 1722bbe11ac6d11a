// Package token defines the lexical tokens for DDL parsing: the CREATE
// TABLE statement vocabulary, constraint keywords, and the literal and
// operator tokens that appear inside default and check expressions.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT  // identifier or unclassified word (type names, expressions)
	NUMBER // 123, 45.67
	STRING // 'hello'

	// Symbols
	LPAREN    // (
	RPAREN    // )
	COMMA     // ,
	SEMICOLON // ;
	DOT       // .

	// Operators. The parser never interprets these; they occur inside
	// default and check expressions, which are preserved as raw text.
	EQ      // =
	NE      // != or <>
	LT      // <
	GT      // >
	LE      // <=
	GE      // >=
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	DPIPE   // ||

	// Keywords
	ACTION
	AUTOINCREMENT // AUTO_INCREMENT and AUTOINCREMENT spellings
	CASCADE
	CHECK
	CONSTRAINT
	CREATE
	DEFAULT
	DELETE
	DROP
	EXISTS
	FOREIGN
	IDENTITY
	IF
	INDEX
	KEY
	NO
	NOT
	NULL
	ON
	PRIMARY
	REFERENCES
	RESTRICT
	SET
	TABLE
	UNIQUE
	UPDATE
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their string representations.
var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	LPAREN:    "(",
	RPAREN:    ")",
	COMMA:     ",",
	SEMICOLON: ";",
	DOT:       ".",

	EQ:      "=",
	NE:      "!=",
	LT:      "<",
	GT:      ">",
	LE:      "<=",
	GE:      ">=",
	PLUS:    "+",
	MINUS:   "-",
	STAR:    "*",
	SLASH:   "/",
	PERCENT: "%",
	DPIPE:   "||",

	ACTION:        "ACTION",
	AUTOINCREMENT: "AUTO_INCREMENT",
	CASCADE:       "CASCADE",
	CHECK:         "CHECK",
	CONSTRAINT:    "CONSTRAINT",
	CREATE:        "CREATE",
	DEFAULT:       "DEFAULT",
	DELETE:        "DELETE",
	DROP:          "DROP",
	EXISTS:        "EXISTS",
	FOREIGN:       "FOREIGN",
	IDENTITY:      "IDENTITY",
	IF:            "IF",
	INDEX:         "INDEX",
	KEY:           "KEY",
	NO:            "NO",
	NOT:           "NOT",
	NULL:          "NULL",
	ON:            "ON",
	PRIMARY:       "PRIMARY",
	REFERENCES:    "REFERENCES",
	RESTRICT:      "RESTRICT",
	SET:           "SET",
	TABLE:         "TABLE",
	UNIQUE:        "UNIQUE",
	UPDATE:        "UPDATE",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"action":         ACTION,
	"auto_increment": AUTOINCREMENT,
	"autoincrement":  AUTOINCREMENT,
	"cascade":        CASCADE,
	"check":          CHECK,
	"constraint":     CONSTRAINT,
	"create":         CREATE,
	"default":        DEFAULT,
	"delete":         DELETE,
	"drop":           DROP,
	"exists":         EXISTS,
	"foreign":        FOREIGN,
	"identity":       IDENTITY,
	"if":             IF,
	"index":          INDEX,
	"key":            KEY,
	"no":             NO,
	"not":            NOT,
	"null":           NULL,
	"on":             ON,
	"primary":        PRIMARY,
	"references":     REFERENCES,
	"restrict":       RESTRICT,
	"set":            SET,
	"table":          TABLE,
	"unique":         UNIQUE,
	"update":         UPDATE,
}

// LookupIdent returns the token type for the given identifier: the keyword
// token type for keywords, IDENT otherwise. Type names (INT, VARCHAR, …)
// deliberately stay IDENT; the dialect layer classifies them.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[lower(ident)]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= ACTION && t <= UPDATE
}

// lower is an ASCII-only lowercase fold. SQL keywords are ASCII; this
// avoids allocating through strings.ToLower on the hot lexing path when
// the input is already lowercase.
func lower(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}
