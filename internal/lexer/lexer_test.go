package lexer

import "testing"

func TestTokenizeStructDecl(t *testing.T) {
	src := `module m
struct S { a: u16, b: varint }
`
	toks := New(src).Tokenize()

	want := []Kind{
		KwModule, Identifier,
		KwStruct, Identifier, LBrace,
		Identifier, Colon, Identifier, Comma,
		Identifier, Colon, Identifier,
		RBrace,
		EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d: got %s, want %s (%v)", i, toks[i].Kind, k, toks[i])
		}
	}
}

func TestTokenizeNeverDivergesOnInvalidByte(t *testing.T) {
	src := "struct S { a: u8 } ` $ \x01"
	toks := New(src).Tokenize()
	if last := toks[len(toks)-1]; last.Kind != EOF {
		t.Fatalf("stream must end in EOF, got %v", last)
	}
	sawInvalid := false
	for _, tok := range toks {
		if tok.Kind == Invalid {
			sawInvalid = true
		}
	}
	if !sawInvalid {
		t.Fatal("expected at least one Invalid token for the unrecognized bytes")
	}
}

func TestTokenizeAlwaysTerminates(t *testing.T) {
	// Exercise a grab-bag of every structural rune at least once.
	src := ":: : ; [ ] { } ( ) < > * & # = / ! -> - .. . ,"
	toks := New(src).Tokenize()
	if toks[len(toks)-1].Kind != EOF {
		t.Fatal("expected EOF terminator")
	}
	for _, tok := range toks {
		if tok.Kind == Invalid {
			t.Fatalf("unexpected invalid token: %v", tok)
		}
	}
}

func TestDocCommentSeparatedFromLineComment(t *testing.T) {
	l := New("// plain\n/// doc\nstruct")
	var docs, blanks int
	for {
		tok := l.NextToken()
		if tok.Kind == EOF {
			break
		}
		switch tok.Kind {
		case DocComment:
			docs++
			if tok.Literal != " doc" {
				t.Fatalf("unexpected doc comment text %q", tok.Literal)
			}
		case Blank:
			if tok.Literal == " plain" {
				blanks++
			}
		}
	}
	if docs != 1 || blanks != 1 {
		t.Fatalf("expected exactly one doc comment and one plain comment, got docs=%d blanks=%d", docs, blanks)
	}
}

func TestNumberLiterals(t *testing.T) {
	toks := New("42 0x2A").Tokenize()
	if toks[0].Kind != Number || toks[0].Literal != "42" {
		t.Fatalf("unexpected token 0: %v", toks[0])
	}
	if toks[1].Kind != Number || toks[1].Literal != "0x2A" {
		t.Fatalf("unexpected token 1: %v", toks[1])
	}
}
