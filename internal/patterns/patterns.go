// Package patterns provides shared regex patterns and helper functions for
// timetable grid parsing: structural markers (department headers, time slots,
// room labels) and the ordered extraction cascades (course codes,
// program/semester/section triples, teacher names, reserved markers).
//
// Cascades are plain ordered slices evaluated first-match-wins. Precedence is
// visible in the source order; there is no dynamic dispatch.
package patterns

import (
	"regexp"
	"strings"
)

// Structural markers.
var (
	// DepartmentPattern matches block headers like "CS & IT - Monday".
	// Group 1 is the department name, group 2 the weekday.
	DepartmentPattern = regexp.MustCompile(`(?i)^([A-Za-z][A-Za-z\s&/()\-']{2,60})\s*-\s*(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)`)

	// TimeSlotPattern matches a start/end pair like "08:30 - 09:30".
	TimeSlotPattern = regexp.MustCompile(`(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})`)

	// CapacityPattern matches seating-capacity markers: "S.C: 40", "SC:35".
	CapacityPattern = regexp.MustCompile(`(?i)S\.?C\.?\s*:\s*(\d+)`)

	// SAPRoomPattern matches facility codes like "C-L1-01".
	SAPRoomPattern = regexp.MustCompile(`([A-Z]-[A-Z0-9\-]+)`)

	// RoomHeaderPattern matches the "Room/Labs" column header row.
	RoomHeaderPattern = regexp.MustCompile(`(?i)Room\s*/\s*Labs`)
)

// CourseCodePatterns is the ordered course-code cascade. Group 1 is the
// letter prefix, group 2 the number; an optional /NN variant suffix is
// matched but never captured.
var CourseCodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b([A-Z]+)\s*-?\s*(\d{3,5})(?:/\d{1,2})?\b`), // CS-201, CS 201, QURT1111/14
	regexp.MustCompile(`\(([A-Z]+)\s*(\d{3,5})(?:/\d{1,2})?\)`),      // (CS 201)
	regexp.MustCompile(`\(([A-Z]+)(\d{3,5})(?:/\d{1,2})?\)`),         // (CS201)
	regexp.MustCompile(`\b([A-Z]+)\s*-\s*(\d{3,5})\b`),               // MATH - 301
}

// ProgramPattern pairs a compiled expression with a rejection test on the
// byte that follows the match. RE2 has no lookahead, so the trailing-letter
// guards are post-filters: a match immediately followed by a rejected byte
// is discarded.
type ProgramPattern struct {
	Re     *regexp.Regexp
	Reject func(b byte) bool
}

func lowerLetter(b byte) bool { return b >= 'a' && b <= 'z' }
func anyLetter(b byte) bool   { return lowerLetter(b) || (b >= 'A' && b <= 'Z') }

// ProgramPatterns is the ordered program cascade. Groups: program, semester
// (digits or Roman numerals), optional section letter. Specific programs
// outrank the generic BS forms.
var ProgramPatterns = []ProgramPattern{
	// CS programs with numeric semester and section letter.
	{regexp.MustCompile(`(BSCS)-?(\d+)([A-Z])`), lowerLetter}, // BSCS-5C, BSCS5C
	{regexp.MustCompile(`(BSSE)-?(\d+)([A-Z])`), lowerLetter}, // BSSE-7A, BSSE7A
	{regexp.MustCompile(`(BSAI)-?(\d+)([A-Z])`), lowerLetter}, // BSAI-2A, BSAI2A

	// CS programs without a section.
	{regexp.MustCompile(`(BSCS)-?(\d+)`), anyLetter}, // BSCS-6, BSCS6
	{regexp.MustCompile(`(BSSE)-?(\d+)`), anyLetter}, // BSSE-8, BSSE8
	{regexp.MustCompile(`(BSAI)-?(\d+)`), anyLetter}, // BSAI-1, BSAI1

	// Pharmacy with Roman semester.
	{regexp.MustCompile(`(Pharm-?D)\s+([IVX]+)\s*(?:-\s*([A-Z]))?`), nil}, // Pharm-D V-A
	{regexp.MustCompile(`(PharmD)\s+([IVX]+)`), anyLetter},               // PharmD V

	// Business school with Roman semester.
	{regexp.MustCompile(`(BBA)-?([IVX]+)([A-Z]?)`), lowerLetter},    // BBA-VIII, BBAVIII
	{regexp.MustCompile(`(BBA2Y)-?([IVX]+)([A-Z]?)`), lowerLetter},  // BBA2Y-IV
	{regexp.MustCompile(`(BSAF)-?([IVX]+)([A-Z]?)`), lowerLetter},   // BSAF-II
	{regexp.MustCompile(`(BSAF2Y)-?([IVX]+)([A-Z]?)`), lowerLetter}, // BSAF2Y-I
	{regexp.MustCompile(`(BSDM)-?([IVX]+)([A-Z]?)`), lowerLetter},   // BSDM-III
	{regexp.MustCompile(`(BSFT)-?([IVX]+)([A-Z]?)`), lowerLetter},   // BSFT-I

	// Generic and medical programs.
	{regexp.MustCompile(`(BS)\s+(\d+)([A-Z]?)`), lowerLetter},   // BS 3A, BS 8
	{regexp.MustCompile(`(BS)-?([IVX]+)([A-Z]?)`), lowerLetter}, // BS-V, BSV
	{regexp.MustCompile(`(DPT)-?([IVX]+)([A-Z]?)`), lowerLetter},
	{regexp.MustCompile(`(RIT)-?([IVX]+)([A-Z]?)`), lowerLetter},
	{regexp.MustCompile(`(HND)-?([IVX]+)([A-Z]?)`), lowerLetter},
}

// TeacherPatterns is the ordered teacher cascade, anchored to the end of the
// cell text. Two-group patterns capture name and SAP id; one-group patterns
// capture the name only.
var TeacherPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b((?:Dr\.?|Prof\.?|Mr\.?|Ms\.?|Miss\.?)\s+[A-Za-z\s.]+[A-Za-z])\s*(\d{4,6})\s*$`), // Dr. Sara Ahmed 12845
	regexp.MustCompile(`\b([A-Za-z][A-Za-z\s.]+[A-Za-z])\s*\((\d{4,6})\)\s*$`),                             // Dilawar Khan (16518)
	regexp.MustCompile(`\b([A-Za-z][A-Za-z\s.]+[A-Za-z])\s*(\d{4,6})\s*$`),                                 // John Smith 10234
	regexp.MustCompile(`\b((?:Dr\.?|Prof\.?|Mr\.?|Ms\.?|Miss\.?)\s+[A-Za-z\s.]+[A-Za-z])\s*$`),             // Ms. Hina Tariq
	regexp.MustCompile(`\b([A-Za-z][A-Za-z\s.]{2,}[A-Za-z])\s*$`),                                          // bare trailing name
}

// SAPIDTailPattern matches a trailing SAP id; used by the after-program
// teacher fallback.
var SAPIDTailPattern = regexp.MustCompile(`(\d{4,6})\s*$`)

// reservedRegex matches cells that are purely placeholders. A cell that also
// carries a program or course code is never treated as reserved.
var reservedRegex = regexp.MustCompile(`(?i)` +
	`^\s*reserved\s*$` +
	`|^\s*cs\s*reserved\s*$` +
	`|^\s*math\s*reserved\s*$` +
	`|^\s*dms\s*reserved\s*$` +
	`|^\s*slot\s*used\s*$` +
	`|^\s*new\s*hiring\s*$` +
	`|^\s*new\s*appointment\s*$`)

// ProgramMatch is one accepted (program, semester, section) occurrence.
// Semester is normalized to digits when the raw capture was Roman.
type ProgramMatch struct {
	Program  string
	Semester string
	Section  string
	Start    int
	End      int
}

// FindPrograms runs the ordered program cascade over text and returns every
// accepted occurrence, in cascade order then position order. Duplicate
// triples are kept; callers dedup when they need distinct triples.
func FindPrograms(text string) []ProgramMatch {
	var out []ProgramMatch
	for _, pp := range ProgramPatterns {
		for _, idx := range pp.Re.FindAllStringSubmatchIndex(text, -1) {
			end := idx[1]
			if pp.Reject != nil && end < len(text) && pp.Reject(text[end]) {
				continue
			}
			m := ProgramMatch{
				Program: submatch(text, idx, 1),
				Start:   idx[0],
				End:     end,
			}
			raw := submatch(text, idx, 2)
			if isLetters(raw) {
				m.Semester = RomanToNumeric(raw)
			} else {
				m.Semester = raw
			}
			if len(idx) >= 8 {
				m.Section = submatch(text, idx, 3)
			}
			out = append(out, m)
		}
	}
	return out
}

// FirstProgram returns the first accepted occurrence of the cascade, or nil.
func FirstProgram(text string) *ProgramMatch {
	matches := FindPrograms(text)
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

// HasProgramCode reports whether any program pattern accepts a match in text.
func HasProgramCode(text string) bool {
	return len(FindPrograms(text)) > 0
}

// CourseCodeMatch is the first course-code hit in a cell.
type CourseCodeMatch struct {
	Prefix string
	Number string
	Start  int
	End    int
}

// FindCourseCode returns the first cascade hit, or nil when the text carries
// no course code.
func FindCourseCode(text string) *CourseCodeMatch {
	for _, re := range CourseCodePatterns {
		idx := re.FindStringSubmatchIndex(text)
		if idx == nil {
			continue
		}
		return &CourseCodeMatch{
			Prefix: submatch(text, idx, 1),
			Number: submatch(text, idx, 2),
			Start:  idx[0],
			End:    idx[1],
		}
	}
	return nil
}

// HasCourseCode reports whether any course-code pattern matches text.
func HasCourseCode(text string) bool {
	return FindCourseCode(text) != nil
}

// IsReserved reports whether a cell is purely a placeholder (blank,
// "Reserved", "Slot Used", hiring notes). Program or course information
// always wins over a reserved marker.
func IsReserved(cell string) bool {
	text := strings.TrimSpace(cell)
	if text == "" {
		return true
	}
	if HasProgramCode(text) || HasCourseCode(text) {
		return false
	}
	return reservedRegex.MatchString(text)
}

var romanNumerals = map[string]string{
	"I": "1", "II": "2", "III": "3", "IV": "4", "V": "5",
	"VI": "6", "VII": "7", "VIII": "8", "IX": "9", "X": "10",
}

// RomanToNumeric converts Roman numerals I..X to decimal strings. Digit
// strings pass through; anything unrecognized is returned unchanged.
func RomanToNumeric(s string) string {
	up := strings.ToUpper(strings.TrimSpace(s))
	if up == "" {
		return ""
	}
	if isDigits(up) {
		return up
	}
	if v, ok := romanNumerals[up]; ok {
		return v
	}
	return s
}

func submatch(text string, idx []int, n int) string {
	if 2*n+1 >= len(idx) || idx[2*n] < 0 {
		return ""
	}
	return text[idx[2*n]:idx[2*n+1]]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !anyLetter(s[i]) {
			return false
		}
	}
	return true
}
