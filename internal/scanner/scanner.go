// Package scanner walks a tokenised timetable grid and produces normalized
// entries. It tracks the current department block (header, time-slot row,
// room rows), stitches merged-cell content back together, expands lab
// sessions across consecutive slots and deduplicates the result.
package scanner

import (
	"fmt"
	"regexp"
	"strings"

	"timetable_parser/internal/grid"
	"timetable_parser/internal/patterns"
	"timetable_parser/internal/session"
	"timetable_parser/internal/timetable"
)

// Engine parses one tab's grid text. The stitching and lab-classification
// heuristics are injectable so they can be tuned or stubbed in tests without
// touching the scan logic.
type Engine struct {
	// RowContinues reports whether a cell to the right of a session cell
	// is spill-over from the same session.
	RowContinues func(cell string) bool

	// ColContinues reports whether the cell directly below a session cell
	// is spill-over from the same session.
	ColContinues func(cell string) bool

	// IsLab classifies stitched cell text as a laboratory session.
	IsLab func(content string) bool

	// MaxLabSpan caps how many consecutive slots a keyword-detected lab
	// occupies.
	MaxLabSpan int
}

// New returns an Engine with the default heuristics: right-neighbour cells
// without program tokens are row continuations, cells below that start
// lowercase or lack program tokens are column continuations, and labs span
// up to three slots.
func New() *Engine {
	return &Engine{
		RowContinues: func(cell string) bool { return !patterns.HasProgramCode(cell) },
		ColContinues: func(cell string) bool {
			return (cell != "" && cell[0] >= 'a' && cell[0] <= 'z') || !patterns.HasProgramCode(cell)
		},
		IsLab:      session.IsLab,
		MaxLabSpan: 3,
	}
}

// blockState is the accumulator threaded through the row fold.
type blockState struct {
	department string
	day        string
	timeSlots  []string
}

// Parse tokenises text and scans it into deduplicated entries. Parsing is
// best-effort: malformed regions contribute nothing rather than failing the
// whole grid.
func (e *Engine) Parse(text string) []timetable.Entry {
	rows := grid.Parse(text)

	var entries []timetable.Entry
	var st blockState

	for i, row := range rows {
		if blankRow(row) {
			continue
		}

		if dept, day, ok := departmentInfo(row); ok {
			st = blockState{department: dept, day: day}
			continue
		}

		if st.department != "" && len(st.timeSlots) == 0 {
			if slots := timeSlots(row); len(slots) > 0 {
				st.timeSlots = slots
				continue
			}
		}

		if st.department != "" && len(st.timeSlots) > 0 && len(row) > 0 {
			roomName := row[0]
			if patterns.RoomHeaderPattern.MatchString(roomName) {
				continue
			}
			entries = append(entries, e.roomRow(rows, i, st, roomName)...)
		}
	}

	return dedupe(entries)
}

// roomRow processes one room row: every populated session cell within the
// slot columns yields entries.
func (e *Engine) roomRow(rows [][]string, rowIdx int, st blockState, roomName string) []timetable.Entry {
	row := rows[rowIdx]
	ctx := session.Context{
		Department:   st.department,
		Day:          st.day,
		RoomName:     roomName,
		RoomCapacity: capacity(roomName),
		SAPRoomID:    sapRoomID(roomName),
	}

	limit := len(st.timeSlots) + 1
	if len(row) < limit {
		limit = len(row)
	}

	var out []timetable.Entry
	for col := 1; col < limit; col++ {
		cell := row[col]
		if cell == "" || patterns.IsReserved(cell) {
			continue
		}

		content := session.Normalize(e.Stitch(rows, rowIdx, col))
		slotIdx := col - 1

		if e.IsLab(content) {
			// A cell that spells out the slots it occupies expands to
			// exactly those slots, one flagged entry per slot.
			if listed := listedSlots(content, st.timeSlots); len(listed) >= 2 {
				duration := fmt.Sprintf("%d_hours", len(listed))
				if flagged := e.labEntries(content, ctx, listed, duration); flagged != nil {
					out = append(out, flagged...)
					continue
				}
			}
		}

		ctx.TimeSlot = st.timeSlots[slotIdx]
		out = append(out, session.Entries(content, ctx)...)

		if e.IsLab(content) {
			span := e.MaxLabSpan
			if remaining := len(st.timeSlots) - slotIdx; span > remaining {
				span = remaining
			}
			out = append(out, e.labEntries(content, ctx, st.timeSlots[slotIdx:slotIdx+span], "3_hours")...)
		}
	}
	return out
}

// labEntries replicates a lab session over slots, one flagged entry per slot
// per program triple. Returns nil when no triple decodes; labs without
// program context stay single-slot.
func (e *Engine) labEntries(content string, ctx session.Context, slots []string, duration string) []timetable.Entry {
	triples := session.ProgramTriples(content)
	if len(triples) == 0 {
		return nil
	}

	var out []timetable.Entry
	for _, slot := range slots {
		ctx.TimeSlot = slot
		for i := range triples {
			entry := session.Entry(content, ctx, &triples[i])
			entry.IsLabSession = "true"
			entry.LabDuration = duration
			out = append(out, entry)
		}
	}
	return out
}

// Stitch combines a session cell with continuation content from up to two
// cells to its right and the cell directly below. Pure function of the grid
// and position.
func (e *Engine) Stitch(rows [][]string, rowIdx, colIdx int) string {
	row := rows[rowIdx]
	content := row[colIdx]

	for next := colIdx + 1; next < colIdx+3 && next < len(row); next++ {
		cell := row[next]
		if cell == "" || patterns.IsReserved(cell) {
			continue
		}
		if e.RowContinues(cell) {
			content += " " + cell
		}
	}

	if rowIdx+1 < len(rows) {
		below := rows[rowIdx+1]
		if colIdx < len(below) {
			cell := below[colIdx]
			if cell != "" && !patterns.IsReserved(cell) && e.ColContinues(cell) {
				content += " " + cell
			}
		}
	}

	return content
}

// departmentInfo recognizes a block header row like "CS & IT - Monday".
func departmentInfo(row []string) (string, string, bool) {
	if len(row) == 0 {
		return "", "", false
	}
	m := patterns.DepartmentPattern.FindStringSubmatch(row[0])
	if m == nil {
		return "", "", false
	}
	dept := spaceRun.ReplaceAllString(strings.TrimSpace(m[1]), " ")
	dept = strings.Trim(strings.TrimSpace(dept), `"'`)
	return dept, canonicalDay(m[2]), true
}

// timeSlots collects normalized "HH:MM-HH:MM" values from a header row.
// The first column belongs to room labels and is skipped.
func timeSlots(row []string) []string {
	if len(row) < 2 {
		return nil
	}
	var slots []string
	for _, cell := range row[1:] {
		if cell == "" {
			continue
		}
		if m := patterns.TimeSlotPattern.FindStringSubmatch(cell); m != nil {
			slots = append(slots, m[1]+"-"+m[2])
		}
	}
	return slots
}

// listedSlots returns the header slots explicitly named in cell text, in
// header order.
func listedSlots(content string, headerSlots []string) []string {
	named := make(map[string]bool)
	for _, m := range patterns.TimeSlotPattern.FindAllStringSubmatch(content, -1) {
		named[m[1]+"-"+m[2]] = true
	}
	var out []string
	for _, slot := range headerSlots {
		if named[slot] {
			out = append(out, slot)
		}
	}
	return out
}

func capacity(roomText string) string {
	if m := patterns.CapacityPattern.FindStringSubmatch(roomText); m != nil {
		return m[1]
	}
	return ""
}

func sapRoomID(roomText string) string {
	if m := patterns.SAPRoomPattern.FindStringSubmatch(roomText); m != nil {
		return m[1]
	}
	return ""
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func canonicalDay(day string) string {
	day = strings.TrimSpace(day)
	if day == "" {
		return ""
	}
	return strings.ToUpper(day[:1]) + strings.ToLower(day[1:])
}

var spaceRun = regexp.MustCompile(`\s+`)

func dedupe(entries []timetable.Entry) []timetable.Entry {
	seen := make(map[string]bool, len(entries))
	out := make([]timetable.Entry, 0, len(entries))
	for _, e := range entries {
		key := e.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}
