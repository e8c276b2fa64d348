package grid

import (
	"reflect"
	"testing"
)

func TestParse_Simple(t *testing.T) {
	rows := Parse("a,b,c\nd,e,f\n")
	want := [][]string{{"a", "b", "c"}, {"d", "e", "f"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Parse = %v, want %v", rows, want)
	}
}

func TestParse_QuotedFields(t *testing.T) {
	input := `Room#101,"Data Structures (CS-201)
BSCS-3A John Smith",next`
	rows := Parse(input)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	want := []string{"Room#101", "Data Structures (CS-201)\nBSCS-3A John Smith", "next"}
	if !reflect.DeepEqual(rows[0], want) {
		t.Errorf("row = %q, want %q", rows[0], want)
	}
}

func TestParse_EscapedQuote(t *testing.T) {
	rows := Parse(`a,"he said ""hi""",b`)
	if got := rows[0][1]; got != `he said "hi"` {
		t.Errorf("cell = %q, want %q", got, `he said "hi"`)
	}
}

func TestParse_SpaceAfterDelimiter(t *testing.T) {
	rows := Parse(`a, b,  c`)
	// One space after the comma is delimiter padding; further spaces are
	// stripped with the cell trim.
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(rows[0], want) {
		t.Errorf("row = %q, want %q", rows[0], want)
	}
}

func TestParse_QuotedAfterSpace(t *testing.T) {
	rows := Parse(`a, "b, c",d`)
	want := []string{"a", "b, c", "d"}
	if !reflect.DeepEqual(rows[0], want) {
		t.Errorf("row = %q, want %q", rows[0], want)
	}
}

func TestParse_CRLF(t *testing.T) {
	rows := Parse("a,b\r\nc,d\r\n")
	want := [][]string{{"a", "b"}, {"c", "d"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Parse = %v, want %v", rows, want)
	}
}

func TestParse_UnterminatedQuote(t *testing.T) {
	rows := Parse("a,\"unterminated to end\nof input")
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if got := rows[0][1]; got != "unterminated to end\nof input" {
		t.Errorf("cell = %q", got)
	}
}

func TestParse_NoTrailingNewline(t *testing.T) {
	rows := Parse("a,b")
	if len(rows) != 1 || len(rows[0]) != 2 {
		t.Fatalf("rows = %v", rows)
	}
}

func TestParse_Empty(t *testing.T) {
	if rows := Parse(""); rows != nil {
		t.Errorf("Parse(\"\") = %v, want nil", rows)
	}
}

func TestParse_RaggedRows(t *testing.T) {
	rows := Parse("a\nb,c,d\ne,f\n")
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if len(rows[0]) != 1 || len(rows[1]) != 3 || len(rows[2]) != 2 {
		t.Errorf("row widths = %d,%d,%d", len(rows[0]), len(rows[1]), len(rows[2]))
	}
}
