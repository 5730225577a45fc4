package models

// AllModels lists every table in migration order
func AllModels() []interface{} {
	return []interface{}{
		&Department{},
		&Faculty{},
		&User{},
		&Course{},
		&Category{},
		&Proglang{},
		&Job{},
		&Sponsorship{},
	}
}
