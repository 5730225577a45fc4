package seed

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/researchmatch/job-service/internal/repositories"
)

const (
	DepartmentName   = "Electrical Engineering and Computer Science"
	DepartmentAbbrev = "EECS"

	TestFacultyName  = "Test Faculty"
	TestFacultyEmail = "test@faculty.com"
)

// Run ensures the default department exists and, in development, a sample
// faculty attached to the first department. Running it again changes nothing.
func Run(ctx context.Context, db *gorm.DB, repo repositories.Repository, development bool, logger *slog.Logger) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		department, err := repo.Department().FindOrCreate(ctx, tx, DepartmentName, DepartmentAbbrev)
		if err != nil {
			return fmt.Errorf("failed to seed department: %w", err)
		}
		logger.Info("Seeded department", "department_id", department.ID, "abbrev", department.Abbrev)

		if !development {
			return nil
		}

		faculty, err := repo.Faculty().FindOrInit(ctx, tx, TestFacultyName, TestFacultyEmail)
		if err != nil {
			return fmt.Errorf("failed to find test faculty: %w", err)
		}

		first, err := repo.Department().First(ctx, tx)
		if err != nil {
			return fmt.Errorf("failed to get first department: %w", err)
		}
		faculty.DepartmentID = &first.ID

		if err := repo.Faculty().Save(ctx, tx, faculty); err != nil {
			return fmt.Errorf("failed to seed test faculty: %w", err)
		}
		logger.Info("Seeded test faculty", "faculty_id", faculty.ID, "department_id", first.ID)

		return nil
	})
}
