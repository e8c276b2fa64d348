// Package grid tokenises a delimiter-separated spreadsheet export into a
// rectangular-ish cell grid. Sheet exports are messy: quoted fields carry raw
// newlines and embedded commas, quotes go unterminated, and rows have ragged
// widths. The tokenizer never rejects input.
package grid

import "strings"

// Parse splits raw export text into rows of whitespace-trimmed cells.
//
// Rules, in order of precedence:
//   - Inside a quoted field, commas and newlines are literal and a doubled
//     quote ("") is an escaped quote character.
//   - An unterminated quote consumes everything to the end of input.
//   - A single space immediately after a comma is not part of the next field.
//   - Both \n and \r\n terminate rows.
func Parse(text string) [][]string {
	var rows [][]string
	var row []string
	var field strings.Builder
	inQuotes := false

	endField := func() {
		row = append(row, strings.TrimSpace(field.String()))
		field.Reset()
	}
	endRow := func() {
		endField()
		rows = append(rows, row)
		row = nil
	}

	i, n := 0, len(text)
	for i < n {
		c := text[i]

		if inQuotes {
			if c == '"' {
				if i+1 < n && text[i+1] == '"' {
					field.WriteByte('"')
					i += 2
					continue
				}
				inQuotes = false
				i++
				continue
			}
			field.WriteByte(c)
			i++
			continue
		}

		switch c {
		case '"':
			inQuotes = true
			i++
		case ',':
			endField()
			i++
			if i < n && text[i] == ' ' {
				i++
			}
		case '\n':
			endRow()
			i++
		case '\r':
			if i+1 < n && text[i+1] == '\n' {
				i++
			}
			endRow()
			i++
		default:
			field.WriteByte(c)
			i++
		}
	}

	if field.Len() > 0 || len(row) > 0 {
		endField()
		rows = append(rows, row)
	}

	return rows
}
