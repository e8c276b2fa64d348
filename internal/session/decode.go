// Package session decodes stitched cell text into timetable entries:
// subject and course code, program/semester/section triples, teacher name
// and SAP id, and lab classification.
package session

import (
	"fmt"
	"regexp"
	"strings"

	"timetable_parser/internal/patterns"
	"timetable_parser/internal/timetable"
)

var (
	roomTailRe    = regexp.MustCompile(`(?i)\bRoom\b.*$`)
	nameRoomRe    = regexp.MustCompile(`(?i)\s*Room\b.*$`)
	labTailRe     = regexp.MustCompile(`(?i)\bLab\b.*$`)
	slashRunRe    = regexp.MustCompile(`/{2,}`)
	spaceRunRe    = regexp.MustCompile(`\s+`)
	leadNonAlpha  = regexp.MustCompile(`^[^A-Za-z]+`)
	nameSplitRe   = regexp.MustCompile(`\s*[,&/]\s*`)
	inlineRoomRe  = regexp.MustCompile(`(?i)Room\s*#\s*(\d+)`)
	inlineRoom2Re = regexp.MustCompile(`(?i)\bRoom\s*[#:]*\s*([A-Z0-9\-/]+)`)
	labKeywordRe  = regexp.MustCompile(`(?i)\b(?:lab|laboratory|practical)\b`)
	labCourseRe   = regexp.MustCompile(`\b[A-Z]+[- ]?\d{3,4}L\b`)
	labSubjectRe  = regexp.MustCompile(`(?i)\blab\b`)
)

// Normalize flattens multi-line cell text into one space-joined line.
func Normalize(cellText string) string {
	var parts []string
	for _, line := range strings.Split(cellText, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

// SubjectAndCourseCode extracts the subject name and the normalized course
// code ("PREFIX NUMBER") from cell text. The subject is the text before the
// course code when one exists, otherwise the text before the first program
// token, otherwise a leading-words fallback.
func SubjectAndCourseCode(text string) (string, string) {
	var subject, courseCode string

	if cc := patterns.FindCourseCode(text); cc != nil {
		courseCode = cc.Prefix + " " + cc.Number
		subject = strings.TrimSpace(text[:cc.Start])
	} else if pm := patterns.FirstProgram(text); pm != nil {
		subject = strings.TrimSpace(text[:pm.Start])
	} else {
		words := strings.Fields(text)
		if len(words) > 4 {
			subject = strings.Join(words[:4], " ")
		} else {
			subject = text
		}
	}

	subject = roomTailRe.ReplaceAllString(subject, "")
	subject = labTailRe.ReplaceAllString(subject, "")
	subject = slashRunRe.ReplaceAllString(subject, "/")
	subject = strings.TrimSpace(spaceRunRe.ReplaceAllString(subject, " "))
	subject = strings.TrimSpace(strings.TrimRight(subject, "(,-"))

	return subject, courseCode
}

// Teacher extracts the teacher name and SAP id from cell text. The decoded
// section is used to drop a stray leading section letter that the name
// patterns sometimes swallow ("… BSCS-3A John Smith" would otherwise yield
// "A John Smith").
func Teacher(text, section string) (string, string) {
	for _, re := range patterns.TeacherPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) == 3 {
			return cleanName(m[1], section), m[2]
		}
		return cleanName(m[1], section), ""
	}

	// Fallback: whatever follows the last program token.
	matches := patterns.FindPrograms(text)
	if len(matches) == 0 {
		return "", ""
	}
	last := matches[0]
	for _, m := range matches[1:] {
		if m.End > last.End {
			last = m
		}
	}
	after := strings.TrimSpace(text[last.End:])
	if after == "" {
		return "", ""
	}
	if sap := patterns.SAPIDTailPattern.FindStringSubmatchIndex(after); sap != nil {
		namePart := strings.TrimSpace(after[:sap[0]])
		if namePart != "" {
			return cleanName(namePart, section), after[sap[2]:sap[3]]
		}
		return "", ""
	}
	clean := strings.TrimSpace(spaceRunRe.ReplaceAllString(after, " "))
	clean = strings.TrimSpace(nameRoomRe.ReplaceAllString(clean, ""))
	clean = leadNonAlpha.ReplaceAllString(clean, "")
	if len(clean) > 2 {
		return nameSplitRe.Split(clean, 2)[0], ""
	}
	return "", ""
}

func cleanName(name, section string) string {
	primary := nameSplitRe.Split(strings.TrimSpace(name), 2)[0]
	primary = strings.TrimSpace(nameRoomRe.ReplaceAllString(primary, ""))
	primary = leadNonAlpha.ReplaceAllString(primary, "")
	primary = stripLeadingSection(primary, section)
	return spaceRunRe.ReplaceAllString(primary, " ")
}

// stripLeadingSection drops a single leading letter token that duplicates
// the decoded section.
func stripLeadingSection(name, section string) string {
	if len(section) != 1 {
		return name
	}
	if strings.HasPrefix(name, section+" ") {
		return strings.TrimSpace(name[2:])
	}
	return name
}

// ProgramTriples returns the distinct (program, semester, section) triples
// found in cell text, in first-occurrence order.
func ProgramTriples(text string) []patterns.ProgramMatch {
	var out []patterns.ProgramMatch
	seen := make(map[string]bool)
	for _, m := range patterns.FindPrograms(text) {
		key := m.Program + "\x1f" + m.Semester + "\x1f" + m.Section
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}

// IsLab reports whether cell text describes a laboratory session: a lab
// keyword anywhere, an L-suffixed course code, or a subject mentioning lab.
func IsLab(content string) bool {
	if labKeywordRe.MatchString(content) || labCourseRe.MatchString(content) {
		return true
	}
	subject, _ := SubjectAndCourseCode(content)
	return labSubjectRe.MatchString(subject)
}

// InlineRoom pulls a room reference out of free-form text ("Room#703",
// "Room # 605"). Used for supplemental rows whose room column is blank.
func InlineRoom(text string) string {
	if m := inlineRoomRe.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("Room#%s", m[1])
	}
	if m := inlineRoom2Re.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("Room %s", m[1])
	}
	return ""
}

// Context carries the structural values of the block a cell sits in.
type Context struct {
	Department   string
	Day          string
	TimeSlot     string
	RoomName     string
	RoomCapacity string
	SAPRoomID    string
}

// Entry builds one timetable entry for normalized cell text and an optional
// program triple. A nil triple produces a generic entry with blank
// program/semester/section.
func Entry(content string, ctx Context, m *patterns.ProgramMatch) timetable.Entry {
	var program, semester, section string
	if m != nil {
		program, semester, section = m.Program, m.Semester, m.Section
	}

	subject, courseCode := SubjectAndCourseCode(content)
	teacherName, teacherSAP := Teacher(content, section)

	roomName := ctx.RoomName
	if roomName == "" {
		roomName = InlineRoom(content)
	}

	return timetable.Entry{
		Day:           ctx.Day,
		Department:    ctx.Department,
		SubDepartment: timetable.SubDepartment(ctx.Department, program),
		TimeSlot:      ctx.TimeSlot,
		RoomName:      roomName,
		RoomCapacity:  ctx.RoomCapacity,
		SAPRoomID:     ctx.SAPRoomID,
		Subject:       subject,
		CourseCode:    courseCode,
		Program:       program,
		Semester:      semester,
		Section:       section,
		TeacherName:   teacherName,
		TeacherSAPID:  teacherSAP,
		RawText:       content,
	}
}

// Entries builds one entry per distinct program triple in the cell, or a
// single generic entry when no triple decodes.
func Entries(content string, ctx Context) []timetable.Entry {
	triples := ProgramTriples(content)
	if len(triples) == 0 {
		return []timetable.Entry{Entry(content, ctx, nil)}
	}
	out := make([]timetable.Entry, 0, len(triples))
	for i := range triples {
		out = append(out, Entry(content, ctx, &triples[i]))
	}
	return out
}
