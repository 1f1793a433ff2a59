// Package lexer tokenizes photon IDL source into a flat token stream
// (spec.md §4.B).
package lexer

import "fmt"

// Kind identifies a token's lexical category.
type Kind int

const (
	// Special
	Invalid Kind = iota
	EOF

	// Literals
	Identifier
	Number

	// Whitespace / comments
	Blank
	Eol
	DocComment

	// Structural
	Comma
	Colon
	DoubleColon
	SemiColon
	LBracket
	RBracket
	LBrace
	RBrace
	LParen
	RParen
	LessThen
	MoreThen
	Star
	Ampersand
	Hash
	Equality
	Slash
	Exclamation
	RightArrow
	Dash
	DoubleDot
	Dot

	// Keywords
	KwModule
	KwImport
	KwStruct
	KwEnum
	KwVariant
	KwType
	KwComponent
	KwParameters
	KwStatuses
	KwCommands
	KwImpl
	KwFn
	KwUpperFn
	KwSelf
	KwMut
	KwConst
	KwCmdTrait
	KwGeneric
)

var names = map[Kind]string{
	Invalid: "Invalid", EOF: "EOF",
	Identifier: "Identifier", Number: "Number",
	Blank: "Blank", Eol: "Eol", DocComment: "DocComment",
	Comma: ",", Colon: ":", DoubleColon: "::", SemiColon: ";",
	LBracket: "[", RBracket: "]", LBrace: "{", RBrace: "}",
	LParen: "(", RParen: ")", LessThen: "<", MoreThen: ">",
	Star: "*", Ampersand: "&", Hash: "#", Equality: "=",
	Slash: "/", Exclamation: "!", RightArrow: "->", Dash: "-",
	DoubleDot: "..", Dot: ".",
	KwModule: "module", KwImport: "import", KwStruct: "struct",
	KwEnum: "enum", KwVariant: "variant", KwType: "type",
	KwComponent: "component", KwParameters: "parameters",
	KwStatuses: "statuses", KwCommands: "commands", KwImpl: "impl",
	KwFn: "fn", KwUpperFn: "Fn", KwSelf: "self", KwMut: "mut",
	KwConst: "const", KwCmdTrait: "CmdTrait", KwGeneric: "generic",
}

func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var keywords = map[string]Kind{
	"module": KwModule, "import": KwImport, "struct": KwStruct,
	"enum": KwEnum, "variant": KwVariant, "type": KwType,
	"component": KwComponent, "parameters": KwParameters,
	"statuses": KwStatuses, "commands": KwCommands, "impl": KwImpl,
	"fn": KwFn, "Fn": KwUpperFn, "self": KwSelf, "mut": KwMut,
	"const": KwConst, "CmdTrait": KwCmdTrait, "generic": KwGeneric,
}

// LookupIdent returns the keyword Kind for ident, or Identifier if it is a
// plain identifier.
func LookupIdent(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return Identifier
}

// Token is one lexeme with its source span.
type Token struct {
	Kind    Kind
	Literal string
	Offset  int
	Line    int
	Column  int
}

// String renders a token for debugging/error messages.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Literal, t.Line, t.Column)
}
