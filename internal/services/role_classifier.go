package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/researchmatch/job-service/internal/events"
	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
)

type roleRule struct {
	matches func(p *models.DirectoryPerson) bool
	role    models.UserRole
}

// roleRules are checked in order; the first match wins
var roleRules = []roleRule{
	{func(p *models.DirectoryPerson) bool { return p.IsGraduate() }, models.RoleGrad},
	{func(p *models.DirectoryPerson) bool { return p.Student }, models.RoleUndergrad},
	{func(p *models.DirectoryPerson) bool { return p.EmployeeExpired }, models.RoleAffiliate},
	{func(p *models.DirectoryPerson) bool { return p.EmployeeAcademic }, models.RoleFaculty},
	{func(p *models.DirectoryPerson) bool { return p.Employee }, models.RoleStaff},
}

// ClassifyPerson maps a directory entry onto a role. People missing from the
// directory, and entries no rule matches, are affiliates. Admin is never
// produced here.
func ClassifyPerson(person *models.DirectoryPerson) models.UserRole {
	if person == nil {
		return models.RoleAffiliate
	}
	for _, rule := range roleRules {
		if rule.matches(person) {
			return rule.role
		}
	}
	return models.RoleAffiliate
}

type roleClassifier struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewRoleClassifier(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger) RoleClassifier {
	return &roleClassifier{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Classify looks the login up and returns the role with the entry it came from.
// Directory errors are returned as is.
func (c *roleClassifier) Classify(ctx context.Context, login string) (models.UserRole, *models.DirectoryPerson, error) {
	person, err := c.repo.Directory().FindByLogin(ctx, login)
	if err != nil {
		return models.RoleAffiliate, nil, err
	}
	return ClassifyPerson(person), person, nil
}

// UpdateUserType recomputes the user's role in place and returns it. With save
// set the role and directory snapshot are persisted, and a change is announced.
func (c *roleClassifier) UpdateUserType(ctx context.Context, user *models.User, save bool) (models.UserRole, error) {
	role, person, err := c.Classify(ctx, user.Login)
	if err != nil {
		return user.Role, err
	}

	snapshot, err := directorySnapshot(person)
	if err != nil {
		return user.Role, err
	}

	previous := user.Role
	user.Role = role
	user.DirectorySnapshot = snapshot

	if !save {
		return role, nil
	}

	if err := c.repo.User().UpdateRole(ctx, nil, user.ID, role, snapshot); err != nil {
		return role, notFound(err, ErrUserNotFound)
	}

	c.logger.Info("User role recomputed", "user_id", user.ID, "old_role", previous.String(), "new_role", role.String())

	if previous != role {
		c.publish(ctx, events.NewEvent(events.EventUserRoleChanged, events.RoleChangedEvent{
			UserID:   user.ID,
			Login:    user.Login,
			OldRole:  previous,
			NewRole:  role,
			NewLabel: role.Label(),
		}))
	}

	return role, nil
}

func (c *roleClassifier) publish(ctx context.Context, event *events.Event) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("Failed to publish event", "event_type", event.Type, "error", err)
	}
}

func directorySnapshot(person *models.DirectoryPerson) (datatypes.JSON, error) {
	if person == nil {
		return nil, nil
	}
	raw, err := json.Marshal(person)
	if err != nil {
		return nil, fmt.Errorf("failed to encode directory snapshot: %w", err)
	}
	return datatypes.JSON(raw), nil
}
