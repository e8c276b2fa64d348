// Package storage provides persistence for parsed timetables: the
// object-store publisher, a local SQLite archive of sync runs, a Postgres
// current-state store and a ClickHouse history.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"timetable_parser/internal/timetable"
)

// Run describes one recorded sync run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	ObjectKey  string
	Days       int
	Entries    int
}

// ArchiveDB wraps a SQLite database holding sync runs and their entries.
type ArchiveDB struct {
	db *sql.DB
}

// OpenArchive opens or creates the archive database at the given path.
func OpenArchive(path string) (*ArchiveDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createArchiveSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &ArchiveDB{db: db}, nil
}

// Close closes the database connection.
func (d *ArchiveDB) Close() error {
	return d.db.Close()
}

func createArchiveSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sync_runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		object_key TEXT,
		days INTEGER NOT NULL,
		entries INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entries (
		run_id TEXT NOT NULL,
		day TEXT NOT NULL,
		department TEXT,
		sub_department TEXT,
		time_slot TEXT,
		room_name TEXT,
		room_capacity TEXT,
		sap_room_id TEXT,
		subject TEXT,
		course_code TEXT,
		program TEXT,
		semester TEXT,
		section TEXT,
		teacher_name TEXT,
		teacher_sap_id TEXT,
		raw_text TEXT,
		is_lab_session TEXT,
		lab_duration TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_entries_run ON entries(run_id);
	CREATE INDEX IF NOT EXISTS idx_entries_day ON entries(run_id, day);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON sync_runs(started_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Store records a completed run and all its entries in one transaction.
// Satisfies the pipeline sink interface.
func (d *ArchiveDB) Store(ctx context.Context, runID string, syncedAt time.Time, groups []timetable.DayGroup) error {
	total := 0
	for _, g := range groups {
		total += len(g.Entries)
	}
	run := Run{
		ID:         runID,
		StartedAt:  syncedAt,
		FinishedAt: time.Now().UTC(),
		Days:       len(groups),
		Entries:    total,
	}
	return d.SaveRun(ctx, run, groups)
}

// SaveRun writes a run record plus its entries atomically.
func (d *ArchiveDB) SaveRun(ctx context.Context, run Run, groups []timetable.DayGroup) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sync_runs (id, started_at, finished_at, object_key, days, entries)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.ObjectKey, run.Days, run.Entries)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (
			run_id, day, department, sub_department, time_slot,
			room_name, room_capacity, sap_room_id, subject, course_code,
			program, semester, section, teacher_name, teacher_sap_id,
			raw_text, is_lab_session, lab_duration
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, g := range groups {
		for _, e := range g.Entries {
			_, err := stmt.ExecContext(ctx,
				run.ID, e.Day, e.Department, e.SubDepartment, e.TimeSlot,
				e.RoomName, e.RoomCapacity, e.SAPRoomID, e.Subject, e.CourseCode,
				e.Program, e.Semester, e.Section, e.TeacherName, e.TeacherSAPID,
				e.RawText, e.IsLabSession, e.LabDuration)
			if err != nil {
				return fmt.Errorf("insert entry: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadRun reads back the day groups recorded for a run, grouped in insertion
// order.
func (d *ArchiveDB) LoadRun(ctx context.Context, runID string) ([]timetable.DayGroup, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT day, department, sub_department, time_slot,
		        room_name, room_capacity, sap_room_id, subject, course_code,
		        program, semester, section, teacher_name, teacher_sap_id,
		        raw_text, is_lab_session, lab_duration
		 FROM entries WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var groups []timetable.DayGroup
	for rows.Next() {
		var e timetable.Entry
		err := rows.Scan(&e.Day, &e.Department, &e.SubDepartment, &e.TimeSlot,
			&e.RoomName, &e.RoomCapacity, &e.SAPRoomID, &e.Subject, &e.CourseCode,
			&e.Program, &e.Semester, &e.Section, &e.TeacherName, &e.TeacherSAPID,
			&e.RawText, &e.IsLabSession, &e.LabDuration)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if len(groups) == 0 || groups[len(groups)-1].Day != e.Day {
			groups = append(groups, timetable.DayGroup{Day: e.Day})
		}
		g := &groups[len(groups)-1]
		g.Entries = append(g.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return groups, nil
}

// LatestRun returns the most recently started run, or nil when the archive
// is empty.
func (d *ArchiveDB) LatestRun(ctx context.Context) (*Run, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, object_key, days, entries
		 FROM sync_runs ORDER BY started_at DESC LIMIT 1`)

	var run Run
	var started, finished string
	err := row.Scan(&run.ID, &started, &finished, &run.ObjectKey, &run.Days, &run.Entries)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if run.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339, finished); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	return &run, nil
}
