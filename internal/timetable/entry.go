// Package timetable defines the normalized session records produced by the
// parsing engine and the per-day grouping published by the sync pipeline.
package timetable

import "strings"

// Entry is one scheduled class session. String-typed throughout: values come
// straight out of messy spreadsheet text and absent fields stay "".
type Entry struct {
	Day           string `json:"day"`
	Department    string `json:"department"`
	SubDepartment string `json:"sub_department"`
	TimeSlot      string `json:"time_slot"`
	RoomName      string `json:"room_name"`
	RoomCapacity  string `json:"room_capacity,omitempty"`
	SAPRoomID     string `json:"sap_room_id,omitempty"`
	Subject       string `json:"subject"`
	CourseCode    string `json:"course_code"`
	Program       string `json:"program"`
	Semester      string `json:"semester"`
	Section       string `json:"section"`
	TeacherName   string `json:"teacher_name"`
	TeacherSAPID  string `json:"teacher_sap_id"`
	RawText       string `json:"raw_text"`
	IsLabSession  string `json:"is_lab_session,omitempty"`
	LabDuration   string `json:"lab_duration,omitempty"`
}

// Key returns the dedup identity of an entry. Teacher name is deliberately
// not part of the key: re-exports of the same grid sometimes swap or drop the
// instructor while the session itself is unchanged.
func (e *Entry) Key() string {
	return strings.Join([]string{
		e.Department,
		e.Program,
		e.Semester,
		e.Section,
		e.Subject,
		e.TimeSlot,
		e.RoomName,
	}, "\x1f")
}

// DayGroup is one element of the published aggregate document.
type DayGroup struct {
	Day     string  `json:"day"`
	Entries []Entry `json:"entries"`
}

// SubDepartment resolves the specialization for a (department, program)
// pair. Unknown departments fall back to the department name itself.
func SubDepartment(department, program string) string {
	switch department {
	case "CS & IT":
		switch program {
		case "BSCS":
			return "Computer Science"
		case "BSSE":
			return "Software Engineering"
		case "BSAI":
			return "Artificial Intelligence"
		default:
			return "CS & IT General"
		}
	case "LAHORE BUSINESS SCHOOL":
		switch program {
		case "BBA", "BBA2Y":
			return "Business Administration"
		case "BSAF", "BSAF2Y":
			return "Accounting & Finance"
		case "BSDM":
			return "Digital Marketing"
		case "BSFT":
			return "Financial Technology"
		default:
			return "Business General"
		}
	case "ENGLISH":
		return bsOrGeneral(program, "English Literature", "English General")
	case "ZOOLOGY":
		return bsOrGeneral(program, "Zoology", "Zoology General")
	case "CHEMISTRY":
		return bsOrGeneral(program, "Chemistry", "Chemistry General")
	case "MATHEMATICS":
		return bsOrGeneral(program, "Mathematics", "Mathematics General")
	case "PHYSICS":
		return bsOrGeneral(program, "Physics", "Physics General")
	case "PSYCHOLOGY":
		return bsOrGeneral(program, "Psychology", "Psychology General")
	case "BIO TECHNOLOGY":
		return bsOrGeneral(program, "Biotechnology", "Biotechnology General")
	case "DPT":
		return "Doctor of Physical Therapy"
	case "Radiology and Imaging Technology/Medical Lab Technology":
		switch program {
		case "RIT":
			return "Radiology & Imaging Technology"
		case "HND":
			return "Medical Lab Technology"
		default:
			return "Medical Technology General"
		}
	case "School of Nursing":
		return "Nursing"
	case "PHARM-D":
		return "Pharmacy"
	case "EDUCATION":
		return "Education"
	case "SSISS":
		return "Social Sciences"
	case "URDU":
		return "Urdu Literature"
	case "ISLAMIC STUDY":
		return "Islamic Studies"
	default:
		return department
	}
}

func bsOrGeneral(program, bs, general string) string {
	if program == "BS" {
		return bs
	}
	return general
}
