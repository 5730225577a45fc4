package models

import (
	"strings"
	"time"
)

// EndDateGrace is how far in the past a job end date may be and still validate.
const EndDateGrace = time.Hour

type Job struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Title        string     `json:"title" gorm:"not null;size:200" validate:"required,min=10,max=200"`
	Desc         string     `json:"desc" gorm:"type:text;not null" validate:"required"`
	DepartmentID uint       `json:"department_id" gorm:"not null;index" validate:"required"`
	UserID       *uint      `json:"user_id" gorm:"index"`
	NumPositions *int       `json:"num_positions" validate:"omitempty,min=0"`
	EndDate      *time.Time `json:"end_date" validate:"omitempty,not_in_past"`
	Active       bool       `json:"active" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Department   *Department   `json:"department,omitempty" gorm:"foreignKey:DepartmentID" validate:"-"`
	User         *User         `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" validate:"-"`
	Sponsorships []Sponsorship `json:"sponsorships,omitempty" gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" validate:"-"`
}

func (Job) TableName() string {
	return "jobs"
}

// Sponsorship links a job to its authorizing faculty member.
type Sponsorship struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	JobID     uint      `json:"job_id" gorm:"not null;index"`
	FacultyID uint      `json:"faculty_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`

	Faculty *Faculty `json:"faculty,omitempty" gorm:"foreignKey:FacultyID"`
}

func (Sponsorship) TableName() string {
	return "sponsorships"
}

// Faculties returns the sponsoring faculty loaded with the sponsorships.
func (j *Job) Faculties() []Faculty {
	faculties := make([]Faculty, 0, len(j.Sponsorships))
	for _, s := range j.Sponsorships {
		if s.Faculty != nil {
			faculties = append(faculties, *s.Faculty)
		}
	}
	return faculties
}

// Sponsor returns the first sponsoring faculty, or nil
func (j *Job) Sponsor() *Faculty {
	faculties := j.Faculties()
	if len(faculties) == 0 {
		return nil
	}
	return &faculties[0]
}

// AllowAdminBy reports whether the user may view applications and edit the job:
// the poster, or a sponsoring faculty member matched by email.
func (j *Job) AllowAdminBy(u *User) bool {
	if u == nil {
		return false
	}
	if j.UserID != nil && *j.UserID == u.ID {
		return true
	}
	if u.Email == "" {
		return false
	}
	for _, f := range j.Faculties() {
		if strings.EqualFold(f.Email, u.Email) {
			return true
		}
	}
	return false
}
