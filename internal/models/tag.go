package models

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// TagKind identifies one of the three parallel tag tables attached to users.
type TagKind string

const (
	TagCourse   TagKind = "course"
	TagCategory TagKind = "category"
	TagProglang TagKind = "proglang"
)

// MaxTagNameLength is the column size of every tag name, in characters
const MaxTagNameLength = 100

// Course is a required/taken course label, stored upper-cased ("CS61A")
type Course struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null;size:100"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Users []User `json:"-" gorm:"many2many:enrollments"`
}

func (Course) TableName() string {
	return "courses"
}

// Category is a research interest label, stored lower-cased ("signal processing")
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null;size:100"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Users []User `json:"-" gorm:"many2many:interests"`
}

func (Category) TableName() string {
	return "categories"
}

// Proglang is a programming language label, stored lower-cased ("c++")
type Proglang struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null;size:100"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Users []User `json:"-" gorm:"many2many:proficiencies"`
}

func (Proglang) TableName() string {
	return "proglangs"
}

// Tag is the kind-agnostic view of a Course, Category or Proglang row.
type Tag struct {
	ID   uint    `json:"id"`
	Name string  `json:"name"`
	Kind TagKind `json:"kind" gorm:"-"`
}

func (k TagKind) IsValid() bool {
	switch k {
	case TagCourse, TagCategory, TagProglang:
		return true
	}
	return false
}

// Table is the tag table for the kind
func (k TagKind) Table() string {
	switch k {
	case TagCourse:
		return Course{}.TableName()
	case TagCategory:
		return Category{}.TableName()
	case TagProglang:
		return Proglang{}.TableName()
	}
	return ""
}

// JoinTable is the user join table for the kind
func (k TagKind) JoinTable() string {
	switch k {
	case TagCourse:
		return "enrollments"
	case TagCategory:
		return "interests"
	case TagProglang:
		return "proficiencies"
	}
	return ""
}

// ForeignKey is the tag column in the join table
func (k TagKind) ForeignKey() string {
	switch k {
	case TagCourse:
		return "course_id"
	case TagCategory:
		return "category_id"
	case TagProglang:
		return "proglang_id"
	}
	return ""
}

// Normalize trims and case-folds a raw tag name the way the kind stores it.
func (k TagKind) Normalize(name string) string {
	name = strings.TrimSpace(norm.NFKC.String(name))
	if k == TagCourse {
		return strings.ToUpper(name)
	}
	return strings.ToLower(name)
}
