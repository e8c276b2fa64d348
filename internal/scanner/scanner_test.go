package scanner

import (
	"reflect"
	"testing"

	"timetable_parser/internal/timetable"
)

const sampleGrid = `CS & IT - Monday
Room/Labs,08:30 - 09:30,09:30 - 10:30
Room#101,Data Structures (CS-201) BSCS-3A John Smith 10234,
`

func TestEngine_EndToEnd(t *testing.T) {
	entries := New().Parse(sampleGrid)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1: %+v", len(entries), entries)
	}

	e := entries[0]
	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"Day", e.Day, "Monday"},
		{"Department", e.Department, "CS & IT"},
		{"SubDepartment", e.SubDepartment, "Computer Science"},
		{"TimeSlot", e.TimeSlot, "08:30-09:30"},
		{"RoomName", e.RoomName, "Room#101"},
		{"Subject", e.Subject, "Data Structures"},
		{"CourseCode", e.CourseCode, "CS 201"},
		{"Program", e.Program, "BSCS"},
		{"Semester", e.Semester, "3"},
		{"Section", e.Section, "A"},
		{"TeacherName", e.TeacherName, "John Smith"},
		{"TeacherSAPID", e.TeacherSAPID, "10234"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
}

func TestEngine_Deterministic(t *testing.T) {
	a := New().Parse(sampleGrid)
	b := New().Parse(sampleGrid)
	if !reflect.DeepEqual(a, b) {
		t.Error("same input produced different output")
	}
}

func TestEngine_SlotFidelity(t *testing.T) {
	grid := `CS & IT - Monday
Room/Labs,08:30 - 09:30,09:30 - 10:30,10:30 - 11:30
Room#101,,Algorithms (CS-301) BSCS-5B Mr. Omar 22110,
`
	entries := New().Parse(grid)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].TimeSlot != "09:30-10:30" {
		t.Errorf("TimeSlot = %q, want 09:30-10:30", entries[0].TimeSlot)
	}
}

func TestEngine_ReservedCellsSkipped(t *testing.T) {
	grid := `CS & IT - Tuesday
Room/Labs,08:30 - 09:30,09:30 - 10:30
Room#102,Reserved,Slot Used
`
	if entries := New().Parse(grid); len(entries) != 0 {
		t.Errorf("entries = %d, want 0: %+v", len(entries), entries)
	}
}

func TestEngine_ColumnsBeyondSlotsIgnored(t *testing.T) {
	grid := `CS & IT - Monday
Room/Labs,08:30 - 09:30
Room#101,Data Structures (CS-201) BSCS-3A Mr. Adeel 10234,Stray (CS-999) BSCS-7A overflow 99999
`
	entries := New().Parse(grid)
	for _, e := range entries {
		if e.CourseCode == "CS 999" {
			t.Errorf("column beyond the slot headers produced an entry: %+v", e)
		}
	}
}

func TestEngine_UniqueKeys(t *testing.T) {
	grid := `CS & IT - Monday
Room/Labs,08:30 - 09:30,09:30 - 10:30
Room#101,Data Structures (CS-201) BSCS-3A John Smith 10234,
Room#101,Data Structures (CS-201) BSCS-3A John Smith 10234,
`
	entries := New().Parse(grid)
	seen := make(map[string]bool)
	for _, e := range entries {
		key := e.Key()
		if seen[key] {
			t.Errorf("duplicate key emitted: %s", key)
		}
		seen[key] = true
	}
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1 after dedup", len(entries))
	}
}

func TestEngine_KeywordLabSpansThreeSlots(t *testing.T) {
	grid := `CS & IT - Wednesday
Room/Labs,08:30 - 09:30,09:30 - 10:30,10:30 - 11:30,11:30 - 12:30
Lab-1 S.C: 30 C-L1-01,Programming Lab (CS-212) BSCS-3A Mr. Ali Raza 11223,,,
`
	entries := New().Parse(grid)
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3: %+v", len(entries), entries)
	}

	wantSlots := []string{"08:30-09:30", "09:30-10:30", "10:30-11:30"}
	for i, e := range entries {
		if e.TimeSlot != wantSlots[i] {
			t.Errorf("entry %d slot = %q, want %q", i, e.TimeSlot, wantSlots[i])
		}
		if e.RoomCapacity != "30" {
			t.Errorf("entry %d capacity = %q, want 30", i, e.RoomCapacity)
		}
		if e.SAPRoomID != "C-L1-01" {
			t.Errorf("entry %d sap room = %q, want C-L1-01", i, e.SAPRoomID)
		}
	}

	// Replicas carry the lab flag; the base record for the first slot wins
	// dedup and stays unflagged.
	if entries[0].IsLabSession != "" {
		t.Errorf("first-slot entry flagged: %+v", entries[0])
	}
	for _, e := range entries[1:] {
		if e.IsLabSession != "true" || e.LabDuration != "3_hours" {
			t.Errorf("replica flags = (%q, %q), want (true, 3_hours)", e.IsLabSession, e.LabDuration)
		}
	}
}

func TestEngine_LabSpanClampedAtGridEnd(t *testing.T) {
	grid := `CS & IT - Wednesday
Room/Labs,08:30 - 09:30,09:30 - 10:30
Lab-2,,Database Lab (CS-305L) BSCS-5A Ms. Beenish 33445
`
	entries := New().Parse(grid)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1: %+v", len(entries), entries)
	}
	if entries[0].TimeSlot != "09:30-10:30" {
		t.Errorf("slot = %q", entries[0].TimeSlot)
	}
}

func TestEngine_ExplicitSlotMarker(t *testing.T) {
	grid := `CS & IT - Thursday
Room/Labs,08:30 - 09:30,09:30 - 10:30,10:30 - 11:30
Lab-3,"Networks Lab (CS-348L) BSCS-6A 08:30 - 09:30 09:30 - 10:30 Mr. Junaid 44556",,
`
	entries := New().Parse(grid)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2: %+v", len(entries), entries)
	}
	wantSlots := []string{"08:30-09:30", "09:30-10:30"}
	for i, e := range entries {
		if e.TimeSlot != wantSlots[i] {
			t.Errorf("entry %d slot = %q, want %q", i, e.TimeSlot, wantSlots[i])
		}
		if e.IsLabSession != "true" {
			t.Errorf("entry %d not flagged", i)
		}
		if e.LabDuration != "2_hours" {
			t.Errorf("entry %d duration = %q, want 2_hours", i, e.LabDuration)
		}
	}
}

func TestEngine_MultipleBlocks(t *testing.T) {
	grid := `CS & IT - Monday
Room/Labs,08:30 - 09:30
Room#101,Data Structures (CS-201) BSCS-3A Mr. Adeel 10234

ENGLISH - Monday
Room/Labs,09:30 - 10:30
Room#201,Poetry (ENG-301) BS-V Ms. Sana 55667
`
	entries := New().Parse(grid)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2: %+v", len(entries), entries)
	}
	if entries[0].Department != "CS & IT" || entries[1].Department != "ENGLISH" {
		t.Errorf("departments = %q, %q", entries[0].Department, entries[1].Department)
	}
	if entries[1].TimeSlot != "09:30-10:30" {
		t.Errorf("second block slot = %q", entries[1].TimeSlot)
	}
}

func TestEngine_LowercaseDayCanonicalized(t *testing.T) {
	grid := `CS & IT - monday
Room/Labs,08:30 - 09:30
Room#101,Data Structures (CS-201) BSCS-3A Mr. Adeel 10234
`
	entries := New().Parse(grid)
	if len(entries) == 0 {
		t.Fatal("no entries")
	}
	if entries[0].Day != "Monday" {
		t.Errorf("day = %q, want Monday", entries[0].Day)
	}
}

func TestStitch_RowContinuation(t *testing.T) {
	rows := [][]string{
		{"Room#101", "Data Structures (CS-201) BSCS-3A", "Mr. Adeel 10234", "Calculus (MATH-101) BS 1A"},
	}
	e := New()
	got := e.Stitch(rows, 0, 1)
	// The teacher fragment is absorbed; the neighbouring session (it has a
	// program token) is not.
	want := "Data Structures (CS-201) BSCS-3A Mr. Adeel 10234"
	if got != want {
		t.Errorf("Stitch = %q, want %q", got, want)
	}
}

func TestStitch_ColumnContinuation(t *testing.T) {
	rows := [][]string{
		{"Room#101", "Data Structures (CS-201) BSCS-3A"},
		{"", "continued by Mr. Adeel 10234"},
	}
	got := New().Stitch(rows, 0, 1)
	want := "Data Structures (CS-201) BSCS-3A continued by Mr. Adeel 10234"
	if got != want {
		t.Errorf("Stitch = %q, want %q", got, want)
	}
}

func TestStitch_InjectablePolicy(t *testing.T) {
	rows := [][]string{
		{"Room#101", "Data Structures (CS-201) BSCS-3A", "Mr. Adeel 10234"},
	}
	e := New()
	e.RowContinues = func(string) bool { return false }
	if got := e.Stitch(rows, 0, 1); got != "Data Structures (CS-201) BSCS-3A" {
		t.Errorf("Stitch with stubbed policy = %q", got)
	}
}

func TestEngine_EmptyInput(t *testing.T) {
	if entries := New().Parse(""); len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
}

func TestEngine_NoHeaderNoEntries(t *testing.T) {
	grid := `Room#101,Data Structures (CS-201) BSCS-3A Mr. Adeel 10234
`
	if entries := New().Parse(grid); len(entries) != 0 {
		t.Errorf("rows before any department header produced entries: %+v", entries)
	}
}

func TestDedupeKeepsFirst(t *testing.T) {
	a := timetable.Entry{Department: "CS & IT", Subject: "DS", TimeSlot: "08:30-09:30", RoomName: "R1", TeacherName: "First"}
	b := timetable.Entry{Department: "CS & IT", Subject: "DS", TimeSlot: "08:30-09:30", RoomName: "R1", TeacherName: "Second"}
	out := dedupe([]timetable.Entry{a, b})
	if len(out) != 1 {
		t.Fatalf("out = %d, want 1", len(out))
	}
	if out[0].TeacherName != "First" {
		t.Errorf("kept %q, want the first occurrence", out[0].TeacherName)
	}
}
