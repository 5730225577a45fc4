package services

import (
	"errors"
	"fmt"

	"github.com/researchmatch/job-service/internal/repositories"
	"github.com/researchmatch/job-service/internal/validator"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrJobNotFound        = errors.New("job not found")
	ErrFacultyNotFound    = errors.New("faculty not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrForbidden          = errors.New("forbidden")
	// ErrDirectoryUnavailable is the repository sentinel, re-exported for handlers
	ErrDirectoryUnavailable = repositories.ErrDirectoryUnavailable
)

type ValidationErrors = validator.ValidationErrors

// PermissionError describes an action the user is not allowed to take
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}

// notFound maps a repository miss onto the service sentinel
func notFound(err error, sentinel error) error {
	if repositories.IsNotFoundError(err) {
		return sentinel
	}
	return err
}
