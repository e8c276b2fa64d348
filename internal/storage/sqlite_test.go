package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"timetable_parser/internal/timetable"
)

func testGroups() []timetable.DayGroup {
	return []timetable.DayGroup{
		{
			Day: "Monday",
			Entries: []timetable.Entry{
				{
					Day:           "Monday",
					Department:    "CS & IT",
					SubDepartment: "Computer Science",
					TimeSlot:      "08:30-09:30",
					RoomName:      "Room#101",
					Subject:       "Data Structures",
					CourseCode:    "CS 201",
					Program:       "BSCS",
					Semester:      "3",
					Section:       "A",
					TeacherName:   "John Smith",
					TeacherSAPID:  "10234",
					RawText:       "Data Structures (CS-201) BSCS-3A John Smith 10234",
				},
			},
		},
		{
			Day: "Tuesday",
			Entries: []timetable.Entry{
				{
					Day:          "Tuesday",
					Department:   "CS & IT",
					TimeSlot:     "09:30-10:30",
					RoomName:     "Lab-1",
					Subject:      "Programming",
					Program:      "BSCS",
					Semester:     "3",
					Section:      "A",
					IsLabSession: "true",
					LabDuration:  "3_hours",
				},
			},
		},
	}
}

func openTestArchive(t *testing.T) *ArchiveDB {
	t.Helper()
	db, err := OpenArchive(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestArchive_RoundTrip(t *testing.T) {
	db := openTestArchive(t)
	ctx := context.Background()

	groups := testGroups()
	if err := db.Store(ctx, "run-1", time.Now().UTC(), groups); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := db.LoadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("groups = %d, want 2", len(got))
	}
	if got[0].Day != "Monday" || got[1].Day != "Tuesday" {
		t.Errorf("day order = %q, %q", got[0].Day, got[1].Day)
	}

	e := got[0].Entries[0]
	want := groups[0].Entries[0]
	if e != want {
		t.Errorf("entry round trip:\n got %+v\nwant %+v", e, want)
	}

	lab := got[1].Entries[0]
	if lab.IsLabSession != "true" || lab.LabDuration != "3_hours" {
		t.Errorf("lab flags = (%q, %q)", lab.IsLabSession, lab.LabDuration)
	}
}

func TestArchive_LatestRun(t *testing.T) {
	db := openTestArchive(t)
	ctx := context.Background()

	latest, err := db.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun on empty archive: %v", err)
	}
	if latest != nil {
		t.Fatalf("latest = %+v, want nil", latest)
	}

	first := Run{ID: "run-1", StartedAt: time.Now().UTC().Add(-time.Hour), FinishedAt: time.Now().UTC(), Days: 1, Entries: 1}
	if err := db.SaveRun(ctx, first, testGroups()[:1]); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	second := Run{ID: "run-2", StartedAt: time.Now().UTC(), FinishedAt: time.Now().UTC(), ObjectKey: "master_timetable.json", Days: 2, Entries: 2}
	if err := db.SaveRun(ctx, second, testGroups()); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	latest, err = db.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if latest == nil || latest.ID != "run-2" {
		t.Fatalf("latest = %+v, want run-2", latest)
	}
	if latest.ObjectKey != "master_timetable.json" || latest.Days != 2 || latest.Entries != 2 {
		t.Errorf("latest fields = %+v", latest)
	}
}

func TestArchive_RunsIsolated(t *testing.T) {
	db := openTestArchive(t)
	ctx := context.Background()

	if err := db.Store(ctx, "run-1", time.Now().UTC(), testGroups()); err != nil {
		t.Fatalf("Store: %v", err)
	}
	got, err := db.LoadRun(ctx, "run-missing")
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("groups for unknown run = %d, want 0", len(got))
	}
}
