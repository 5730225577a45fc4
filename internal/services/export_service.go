package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
)

const jobsSheet = "Jobs"

var jobExportHeader = []interface{}{"Title", "Department", "Sponsor", "Sponsor Email", "Positions", "End Date"}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

func (s *exportService) ExportActiveJobs(ctx context.Context, w io.Writer) error {
	jobs, err := s.repo.Job().ListActive(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list active jobs: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", jobsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(jobsSheet, "A1", &jobExportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, job := range jobs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := jobExportRow(job)
		if err := f.SetSheetRow(jobsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write job %d: %w", job.ID, err)
		}
	}

	if err := f.SetPanes(jobsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	s.logger.Info("Exporting active jobs", "count", len(jobs))

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func jobExportRow(job *models.Job) []interface{} {
	row := []interface{}{job.Title, "", "", "", "", ""}

	if job.Department != nil {
		row[1] = job.Department.Name
	}
	if sponsor := job.Sponsor(); sponsor != nil {
		row[2] = sponsor.Name
		row[3] = sponsor.Email
	}
	if job.NumPositions != nil {
		row[4] = *job.NumPositions
	}
	if job.EndDate != nil {
		row[5] = job.EndDate.Format("2006-01-02")
	}

	return row
}
