package validator

import (
	"time"
)

// ProfileUpdateRequest represents the editable part of a user's profile.
// Nil tag lists leave the corresponding tags untouched.
type ProfileUpdateRequest struct {
	Email         *string `json:"email" validate:"omitempty,email,max=255"`
	Units         *int    `json:"units"`
	FreeHours     *int    `json:"free_hours"`
	ResearchBlurb *string `json:"research_blurb" validate:"omitempty,max=300"`
	Experience    *string `json:"experience" validate:"omitempty,max=255"`
	Summer        *bool   `json:"summer"`
	URL           *string `json:"url" validate:"omitempty,max=255"`
	Year          *int    `json:"year" validate:"omitempty,min=1,max=4"`

	CourseNames   *string `json:"course_names" validate:"omitempty,max=2000"`
	CategoryNames *string `json:"category_names" validate:"omitempty,max=2000"`
	ProglangNames *string `json:"proglang_names" validate:"omitempty,max=2000"`
}

// UserCreateRequest provisions an account ahead of its first sign in
type UserCreateRequest struct {
	Login string `json:"login" validate:"required,max=255"`
	Name  string `json:"name" validate:"omitempty,max=100"`
	Email string `json:"email" validate:"omitempty,email,max=255"`
}

// JobCreateRequest represents the request structure for posting a job
type JobCreateRequest struct {
	Title        string     `json:"title" validate:"required,min=10,max=200"`
	Desc         string     `json:"desc" validate:"required"`
	DepartmentID uint       `json:"department_id" validate:"required"`
	NumPositions *int       `json:"num_positions" validate:"omitempty,min=0"`
	EndDate      *time.Time `json:"end_date" validate:"omitempty,not_in_past"`
	Active       bool       `json:"active"`
	FacultyID    *uint      `json:"faculty_id"`
}

// JobUpdateRequest represents the request structure for editing a job
type JobUpdateRequest struct {
	Title        *string    `json:"title" validate:"omitempty,min=10,max=200"`
	Desc         *string    `json:"desc" validate:"omitempty,min=1"`
	DepartmentID *uint      `json:"department_id" validate:"omitempty,min=1"`
	NumPositions *int       `json:"num_positions" validate:"omitempty,min=0"`
	EndDate      *time.Time `json:"end_date" validate:"omitempty,not_in_past"`
	Active       *bool      `json:"active"`
}

// SponsorRequest replaces a job's sponsoring faculty
type SponsorRequest struct {
	FacultyID uint `json:"faculty_id" validate:"required"`
}
