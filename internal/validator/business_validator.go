package validator

import (
	"github.com/researchmatch/job-service/internal/models"
)

// ValidateUser validates a user record before it is persisted.
// Login uniqueness needs storage and is checked via ValidateLoginUnique.
func (v *Validator) ValidateUser(user *models.User) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, v.validateStruct(user)...)

	if user.Units != nil && *user.Units < 0 {
		errors = append(errors, ValidationError{
			Field:   "units",
			Message: "must be greater than or equal to 0",
			Value:   *user.Units,
			Rule:    "business_logic",
		})
	}

	if user.FreeHours != nil && *user.FreeHours < 0 {
		errors = append(errors, ValidationError{
			Field:   "free_hours",
			Message: "must be greater than or equal to 0",
			Value:   *user.FreeHours,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateLoginUnique reports a taken login as a field error
func (v *Validator) ValidateLoginUnique(login string, taken bool) ValidationErrors {
	if !taken {
		return nil
	}
	return ValidationErrors{{
		Field:   "login",
		Message: "has already been taken",
		Value:   login,
		Rule:    "uniqueness",
	}}
}

// ValidateJob validates a job record before it is persisted
func (v *Validator) ValidateJob(job *models.Job) ValidationErrors {
	return v.validateStruct(job)
}
