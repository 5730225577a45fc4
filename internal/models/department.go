package models

import "time"

type Department struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;size:200;uniqueIndex:idx_departments_name_abbrev"`
	Abbrev    string    `json:"abbrev" gorm:"not null;size:20;uniqueIndex:idx_departments_name_abbrev"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Department) TableName() string {
	return "departments"
}

type Faculty struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null;size:100"`
	Email        string    `json:"email" gorm:"not null;size:255;index"`
	DepartmentID *uint     `json:"department_id" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Department *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
}

func (Faculty) TableName() string {
	return "faculties"
}
