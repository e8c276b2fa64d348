package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"timetable_parser/internal/timetable"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Addr     string
	Database string
	User     string
	Password string
}

// ClickHouseDB wraps a ClickHouse connection for the append-only timetable
// history. Unlike the Postgres current-state store, nothing is ever replaced
// here: every sync run appends its full entry set keyed by run id, so
// schedule changes between runs stay queryable.
type ClickHouseDB struct {
	conn driver.Conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	// Test the connection.
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the history table.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS timetable_history (
		run_id          String,
		synced_at       DateTime64(3),
		day             LowCardinality(String),
		department      LowCardinality(String),
		sub_department  LowCardinality(String),
		time_slot       LowCardinality(String),
		room_name       String,
		room_capacity   String,
		sap_room_id     String,
		subject         String,
		course_code     String,
		program         LowCardinality(String),
		semester        LowCardinality(String),
		section         LowCardinality(String),
		teacher_name    String,
		teacher_sap_id  String,
		raw_text        String,
		is_lab_session  LowCardinality(String),
		lab_duration    LowCardinality(String),
		recorded_at     DateTime64(3) DEFAULT now64(3)
	)
	ENGINE = MergeTree()
	PARTITION BY toYYYYMM(synced_at)
	ORDER BY (synced_at, day, time_slot, room_name)
	SETTINGS index_granularity = 8192`

	if err := d.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("create history table: %w", err)
	}
	return nil
}

// Store appends every entry of a run to the history. Satisfies the pipeline
// sink interface.
func (d *ClickHouseDB) Store(ctx context.Context, runID string, syncedAt time.Time, groups []timetable.DayGroup) error {
	batch, err := d.conn.PrepareBatch(ctx, `INSERT INTO timetable_history (
		run_id, synced_at, day, department, sub_department, time_slot,
		room_name, room_capacity, sap_room_id, subject, course_code,
		program, semester, section, teacher_name, teacher_sap_id,
		raw_text, is_lab_session, lab_duration)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, g := range groups {
		for _, e := range g.Entries {
			err := batch.Append(
				runID, syncedAt, e.Day, e.Department, e.SubDepartment, e.TimeSlot,
				e.RoomName, e.RoomCapacity, e.SAPRoomID, e.Subject, e.CourseCode,
				e.Program, e.Semester, e.Section, e.TeacherName, e.TeacherSAPID,
				e.RawText, e.IsLabSession, e.LabDuration)
			if err != nil {
				return fmt.Errorf("append entry: %w", err)
			}
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// RunCount returns how many distinct sync runs the history holds.
func (d *ClickHouseDB) RunCount(ctx context.Context) (uint64, error) {
	row := d.conn.QueryRow(ctx, `SELECT uniqExact(run_id) FROM timetable_history`)
	var count uint64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return count, nil
}
