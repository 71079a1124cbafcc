package models

import "time"

// Course codes offered by the college.
var Courses = []string{"CSE", "IT", "AIML", "CSBS", "BBA", "BCA"}

// StudentRecord is the primary record for an enrolled library member.
type StudentRecord struct {
	UserID           string    `json:"userId"`
	Name             string    `json:"name"`
	PRN              string    `json:"prn"`
	LibraryNumber    string    `json:"libraryNumber"`
	Course           string    `json:"course"`
	Email            string    `json:"email"`
	Mobile           string    `json:"mobile"`
	ParentMobile     string    `json:"parentMobile"`
	RollNumber       string    `json:"rollNumber"`
	Gender           string    `json:"gender"`
	BloodGroup       string    `json:"bloodGroup"`
	Category         string    `json:"category"`
	DateOfBirth      time.Time `json:"dateOfBirth"`
	AdmittedYear     string    `json:"admittedYear"`
	PermanentAddress string    `json:"permanentAddress"`
	LocalAddress     string    `json:"localAddress"`
	PhotoURL         string    `json:"photoUrl,omitempty"`
	RegistrationDate time.Time `json:"registrationDate"`
}

// StudentFilter narrows the record set for listing and exports.
type StudentFilter struct {
	Search string
	Course string
	Year   string
}

// Matches applies the management-console filter: case-insensitive substring
// on name/PRN/email/library number, AND course equality, AND admitted-year
// equality.
func (f StudentFilter) Matches(r StudentRecord) bool {
	if f.Course != "" && r.Course != f.Course {
		return false
	}
	if f.Year != "" && r.AdmittedYear != f.Year {
		return false
	}
	if f.Search == "" {
		return true
	}
	return containsFold(r.Name, f.Search) ||
		containsFold(r.PRN, f.Search) ||
		containsFold(r.Email, f.Search) ||
		containsFold(r.LibraryNumber, f.Search)
}
