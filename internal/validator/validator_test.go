package validator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/researchmatch/job-service/internal/models"
)

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func validUser() *models.User {
	return &models.User{Name: "Ada Lovelace", Login: "123456", Role: models.RoleUndergrad}
}

func TestValidateUser_Valid(t *testing.T) {
	v := New()
	assert.Empty(t, v.ValidateUser(validUser()))
}

func TestValidateUser_FieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(u *models.User)
		field  string
	}{
		{"missing name", func(u *models.User) { u.Name = "" }, "name"},
		{"long name", func(u *models.User) { u.Name = strings.Repeat("a", 101) }, "name"},
		{"missing login", func(u *models.User) { u.Login = "" }, "login"},
		{"year zero", func(u *models.User) { u.Year = intPtr(0) }, "year"},
		{"year five", func(u *models.User) { u.Year = intPtr(5) }, "year"},
		{"long experience", func(u *models.User) { u.Experience = strPtr(strings.Repeat("x", 256)) }, "experience"},
		{"long blurb", func(u *models.User) { u.ResearchBlurb = strPtr(strings.Repeat("x", 301)) }, "research_blurb"},
		{"long url", func(u *models.User) { u.URL = strPtr(strings.Repeat("x", 256)) }, "url"},
		{"invalid role", func(u *models.User) { u.Role = models.UserRole(9) }, "role"},
		{"negative units", func(u *models.User) { u.Units = intPtr(-1) }, "units"},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUser()
			tt.mutate(u)
			errs := v.ValidateUser(u)
			require.NotEmpty(t, errs)
			assert.Contains(t, errs.Fields(), tt.field)
		})
	}
}

func TestValidateUser_InvalidRoleMessage(t *testing.T) {
	u := validUser()
	u.Role = models.UserRole(-1)

	errs := New().ValidateUser(u)
	require.Len(t, errs, 1)
	assert.Equal(t, "is invalid", errs[0].Message)
}

func TestValidateUser_AllRolesAccepted(t *testing.T) {
	v := New()
	for _, role := range models.AllRoles {
		u := validUser()
		u.Role = role
		assert.Empty(t, v.ValidateUser(u), role.String())
	}
}

func TestValidateJob(t *testing.T) {
	v := New()
	now := time.Now()
	v.now = func() time.Time { return now }

	valid := func() *models.Job {
		return &models.Job{Title: "Robot arm calibration", Desc: "Help calibrate", DepartmentID: 1}
	}

	t.Run("valid", func(t *testing.T) {
		assert.Empty(t, v.ValidateJob(valid()))
	})

	t.Run("short title", func(t *testing.T) {
		j := valid()
		j.Title = "Short"
		assert.Contains(t, v.ValidateJob(j).Fields(), "title")
	})

	t.Run("missing department and desc", func(t *testing.T) {
		j := valid()
		j.DepartmentID = 0
		j.Desc = ""
		fields := v.ValidateJob(j).Fields()
		assert.Contains(t, fields, "department_id")
		assert.Contains(t, fields, "desc")
	})

	t.Run("end date within grace period", func(t *testing.T) {
		j := valid()
		end := now.Add(-30 * time.Minute)
		j.EndDate = &end
		assert.Empty(t, v.ValidateJob(j))
	})

	t.Run("end date in the past", func(t *testing.T) {
		j := valid()
		end := now.Add(-2 * time.Hour)
		j.EndDate = &end
		errs := v.ValidateJob(j)
		require.Len(t, errs, 1)
		assert.Equal(t, "end_date", errs[0].Field)
		assert.Equal(t, "cannot be earlier than now", errs[0].Message)
	})
}

func TestValidate_ReturnsValidationErrors(t *testing.T) {
	v := New()
	err := v.Validate(&SponsorRequest{})
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"faculty_id"}, verrs.Fields())
	assert.Nil(t, v.Validate(&SponsorRequest{FacultyID: 3}))
}

func TestValidateUserCreateRequest(t *testing.T) {
	v := New()

	err := v.Validate(&UserCreateRequest{Email: "not-an-email"})
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.ElementsMatch(t, []string{"login", "email"}, verrs.Fields())

	assert.Nil(t, v.Validate(&UserCreateRequest{Login: "oski", Email: "oski@berkeley.edu"}))
}

func TestValidateLoginUnique(t *testing.T) {
	v := New()
	assert.Nil(t, v.ValidateLoginUnique("oski", false))

	errs := v.ValidateLoginUnique("oski", true)
	require.Len(t, errs, 1)
	assert.Equal(t, "login", errs[0].Field)
	assert.Equal(t, "has already been taken", errs[0].Message)
}
