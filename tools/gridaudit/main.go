// Package main provides a coverage auditor for timetable grid exports.
// It parses a CSV grid, reports how many cells decoded into entries, and
// lists the non-empty cells that produced nothing so their formats can be
// inspected and new patterns added.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"timetable_parser/internal/grid"
	"timetable_parser/internal/patterns"
	"timetable_parser/internal/scanner"
	"timetable_parser/internal/session"
)

// AuditReport contains the full audit results for one grid.
type AuditReport struct {
	Summary     SummaryStats      `json:"summary"`
	Departments []DepartmentCount `json:"departments"`
	Unmatched   []UnmatchedCell   `json:"unmatched,omitempty"`
}

// SummaryStats summarises the grid and its parsing coverage.
type SummaryStats struct {
	Rows          int `json:"rows"`
	ContentCells  int `json:"content_cells"`
	ReservedCells int `json:"reserved_cells"`
	Entries       int `json:"entries"`
	LabEntries    int `json:"lab_entries"`
}

// DepartmentCount is the number of entries decoded for one department block.
type DepartmentCount struct {
	Department string `json:"department"`
	Entries    int    `json:"entries"`
}

// UnmatchedCell is a non-empty cell that carried no recognisable program
// or course token and was not a reserved marker.
type UnmatchedCell struct {
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Content string `json:"content"`
}

func main() {
	input := flag.String("input", "", "Grid CSV file (default: stdin)")
	outputFormat := flag.String("format", "text", "Output format: text, json")
	topN := flag.Int("top", 20, "Show at most N unmatched cells")
	flag.Parse()

	var raw []byte
	var err error
	if *input != "" {
		raw, err = os.ReadFile(*input)
	} else {
		raw, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	report := audit(string(raw), *topN)

	if *outputFormat == "json" {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(data))
		return
	}
	printTextReport(report, *topN)
}

func audit(text string, topN int) *AuditReport {
	rows := grid.Parse(text)
	entries := scanner.New().Parse(text)

	report := &AuditReport{}
	report.Summary.Rows = len(rows)
	report.Summary.Entries = len(entries)

	byDept := make(map[string]int)
	for _, e := range entries {
		byDept[e.Department]++
		if e.IsLabSession == "true" {
			report.Summary.LabEntries++
		}
	}
	for dept, n := range byDept {
		report.Departments = append(report.Departments, DepartmentCount{Department: dept, Entries: n})
	}
	sort.Slice(report.Departments, func(i, j int) bool {
		return report.Departments[i].Entries > report.Departments[j].Entries
	})

	// Walk the body cells and classify anything the decoder would discard.
	for r, row := range rows {
		for c, cell := range row {
			if c == 0 || cell == "" {
				continue
			}
			content := session.Normalize(cell)
			if content == "" {
				continue
			}
			// Header rows are not session content.
			if patterns.DepartmentPattern.MatchString(cell) || patterns.TimeSlotPattern.MatchString(cell) {
				continue
			}
			report.Summary.ContentCells++
			if patterns.IsReserved(content) {
				report.Summary.ReservedCells++
				continue
			}
			if !patterns.HasProgramCode(content) && !patterns.HasCourseCode(content) {
				report.Unmatched = append(report.Unmatched, UnmatchedCell{Row: r, Col: c, Content: truncate(content, 120)})
			}
		}
	}
	if len(report.Unmatched) > topN {
		report.Unmatched = report.Unmatched[:topN]
	}
	return report
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func printTextReport(report *AuditReport, topN int) {
	fmt.Println("Grid Audit")
	fmt.Println("──────────")
	fmt.Printf("Rows:           %d\n", report.Summary.Rows)
	fmt.Printf("Content cells:  %d\n", report.Summary.ContentCells)
	fmt.Printf("Reserved cells: %d\n", report.Summary.ReservedCells)
	fmt.Printf("Entries:        %d\n", report.Summary.Entries)
	fmt.Printf("Lab entries:    %d\n", report.Summary.LabEntries)

	if len(report.Departments) > 0 {
		fmt.Println("\nEntries by Department:")
		fmt.Printf("%-50s %8s\n", "Department", "Entries")
		for _, d := range report.Departments {
			fmt.Printf("%-50s %8d\n", d.Department, d.Entries)
		}
	}

	if len(report.Unmatched) > 0 {
		fmt.Printf("\nUnmatched Cells (top %d):\n", topN)
		for _, u := range report.Unmatched {
			fmt.Printf("  [%d,%d] %s\n", u.Row, u.Col, strings.ReplaceAll(u.Content, "\n", " "))
		}
	}
}
