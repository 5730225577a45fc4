package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GraduateCode is the student level code carried by graduate students and postdocs.
const GraduateCode = "G"

// DirectoryPerson is the subset of a campus directory entry used to classify users.
type DirectoryPerson struct {
	UID              string `json:"uid"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email,omitempty"`
	StudentLevelCode string `json:"student_level_code,omitempty"`
	Student          bool   `json:"student"`
	Employee         bool   `json:"employee"`
	EmployeeExpired  bool   `json:"employee_expired"`
	EmployeeAcademic bool   `json:"employee_academic"`
}

func (p *DirectoryPerson) IsGraduate() bool {
	return p.StudentLevelCode == GraduateCode
}

// FullName returns "First Last" title-cased.
func (p *DirectoryPerson) FullName() string {
	full := strings.TrimSpace(p.FirstName + " " + p.LastName)
	return cases.Title(language.English).String(full)
}
