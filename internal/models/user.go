package models

import (
	"strings"
	"time"
	"unicode"

	"gorm.io/datatypes"
)

// UserRole is a simplification of directory affiliations where earlier roles take priority.
// Undergrads apply to research, everyone else posts it.
type UserRole int

const (
	RoleUndergrad UserRole = iota
	RoleGrad
	RoleFaculty
	RoleStaff
	RoleAffiliate
	RoleAdmin
)

// AllRoles lists every role in precedence order
var AllRoles = []UserRole{RoleUndergrad, RoleGrad, RoleFaculty, RoleStaff, RoleAffiliate, RoleAdmin}

func (r UserRole) IsValid() bool {
	switch r {
	case RoleUndergrad, RoleGrad, RoleFaculty, RoleStaff, RoleAffiliate, RoleAdmin:
		return true
	}
	return false
}

func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

// CanApply reports whether the role may apply to jobs
func (r UserRole) CanApply() bool {
	switch r {
	case RoleUndergrad, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanPost reports whether the role may post jobs
func (r UserRole) CanPost() bool {
	switch r {
	case RoleGrad, RoleFaculty, RoleStaff, RoleAffiliate, RoleAdmin:
		return true
	default:
		return false
	}
}

// Label returns the readable role name, or "Unknown user type" for values outside the enum.
func (r UserRole) Label() string {
	switch r {
	case RoleGrad:
		return "Graduate or postdoc"
	case RoleUndergrad:
		return "Undergraduate"
	case RoleFaculty:
		return "Faculty"
	case RoleStaff:
		return "Staff"
	case RoleAdmin:
		return "Administrator"
	case RoleAffiliate:
		return "Affiliate"
	default:
		return "Unknown user type"
	}
}

func (r UserRole) String() string {
	switch r {
	case RoleUndergrad:
		return "undergrad"
	case RoleGrad:
		return "grad"
	case RoleFaculty:
		return "faculty"
	case RoleStaff:
		return "staff"
	case RoleAffiliate:
		return "affiliate"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// ParseUserRole is the inverse of String
func ParseUserRole(name string) (UserRole, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, role := range AllRoles {
		if role.String() == name {
			return role, true
		}
	}
	return 0, false
}

type User struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"not null;size:100" validate:"required,max=100"`
	Login string `json:"login" gorm:"uniqueIndex;not null;size:255" validate:"required"`
	Email string `json:"email" gorm:"size:255"`

	// Profile info
	Units         *int    `json:"units"`
	FreeHours     *int    `json:"free_hours"`
	ResearchBlurb *string `json:"research_blurb" gorm:"type:text" validate:"omitempty,max=300"`
	Experience    *string `json:"experience" gorm:"size:255" validate:"omitempty,max=255"`
	Summer        bool    `json:"summer" gorm:"default:false"`
	URL           *string `json:"url" gorm:"size:255" validate:"omitempty,max=255"`
	Year          *int    `json:"year" validate:"omitempty,min=1,max=4"`

	Role              UserRole       `json:"role" gorm:"column:user_type;not null" validate:"user_role"`
	DirectorySnapshot datatypes.JSON `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Courses    []Course   `json:"courses,omitempty" gorm:"many2many:enrollments;constraint:OnDelete:CASCADE"`
	Categories []Category `json:"categories,omitempty" gorm:"many2many:interests;constraint:OnDelete:CASCADE"`
	Proglangs  []Proglang `json:"proglangs,omitempty" gorm:"many2many:proficiencies;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

// SetEmail stores the address lower-cased. Empty values keep the current address.
func (u *User) SetEmail(value string) {
	if value == "" {
		return
	}
	u.Email = strings.ToLower(value)
}

// CourseList returns the course names held by this user, e.g. "CS61A,CS61B"
func (u *User) CourseList(addSpaces bool) string {
	names := make([]string, len(u.Courses))
	for i, c := range u.Courses {
		names[i] = c.Name
	}
	return strings.ToUpper(joinList(names, addSpaces))
}

// CategoryList returns the category names held by this user, e.g. "robotics,signal processing"
func (u *User) CategoryList(addSpaces bool) string {
	names := make([]string, len(u.Categories))
	for i, c := range u.Categories {
		names[i] = c.Name
	}
	return strings.ToLower(joinList(names, addSpaces))
}

// ProglangList returns the capitalized proglang names, e.g. "Java,Scheme,C++"
func (u *User) ProglangList(addSpaces bool) string {
	names := make([]string, len(u.Proglangs))
	for i, p := range u.Proglangs {
		names[i] = capitalize(p.Name)
	}
	return joinList(names, addSpaces)
}

func joinList(names []string, addSpaces bool) string {
	if addSpaces {
		return strings.Join(names, ", ")
	}
	return strings.Join(names, ",")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
