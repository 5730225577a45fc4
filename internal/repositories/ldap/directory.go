package ldap

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
)

// Directory attributes read for each person
const (
	AttrUID          = "uid"
	AttrFirstName    = "givenName"
	AttrLastName     = "sn"
	AttrMail         = "mail"
	AttrUGCode       = "berkeleyEduStuUGCode"
	AttrAffiliations = "berkeleyEduAffiliations"
)

// Affiliation values and prefixes carried in berkeleyEduAffiliations
const (
	studentTypePrefix  = "STUDENT-TYPE-"
	employeeTypePrefix = "EMPLOYEE-TYPE-"
	employeeExpired    = "EMPLOYEE-STATUS-EXPIRED"
	employeeAcademic   = "EMPLOYEE-TYPE-ACADEMIC"
)

var personAttributes = []string{AttrUID, AttrFirstName, AttrLastName, AttrMail, AttrUGCode, AttrAffiliations}

// Config holds the directory connection settings
type Config struct {
	URL          string
	BaseDN       string
	BindDN       string
	BindPassword string
	Timeout      time.Duration
}

// Directory looks people up over LDAP. Each lookup uses its own connection.
type Directory struct {
	config Config
}

func NewDirectory(config Config) repositories.DirectoryRepository {
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	return &Directory{config: config}
}

// FindByLogin searches for the person whose uid is login
func (d *Directory) FindByLogin(ctx context.Context, login string) (*models.DirectoryPerson, error) {
	if login == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := ldap.DialURL(d.config.URL, ldap.DialWithDialer(&net.Dialer{Timeout: d.config.Timeout}))
	if err != nil {
		return nil, fmt.Errorf("%w: ldap dial failed: %w", repositories.ErrDirectoryUnavailable, err)
	}
	defer conn.Close()

	conn.SetTimeout(d.deadline(ctx))

	if d.config.BindDN != "" {
		if err := conn.Bind(d.config.BindDN, d.config.BindPassword); err != nil {
			return nil, fmt.Errorf("%w: ldap bind failed: %w", repositories.ErrDirectoryUnavailable, err)
		}
	}

	req := ldap.NewSearchRequest(
		d.config.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		1,
		int(d.config.Timeout.Seconds()),
		false,
		fmt.Sprintf("(%s=%s)", AttrUID, ldap.EscapeFilter(login)),
		personAttributes,
		nil,
	)

	result, err := conn.Search(req)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			return nil, nil
		}
		// More than one match still returns the first entry
		if !ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) || result == nil {
			return nil, fmt.Errorf("%w: ldap search failed: %w", repositories.ErrDirectoryUnavailable, err)
		}
	}

	if len(result.Entries) == 0 {
		return nil, nil
	}

	return PersonFromEntry(result.Entries[0]), nil
}

func (d *Directory) deadline(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if remaining := time.Until(dl); remaining < d.config.Timeout {
			return remaining
		}
	}
	return d.config.Timeout
}

// PersonFromEntry maps a directory entry onto the attributes used for classification
func PersonFromEntry(entry *ldap.Entry) *models.DirectoryPerson {
	if entry == nil {
		return nil
	}

	person := &models.DirectoryPerson{
		UID:              entry.GetAttributeValue(AttrUID),
		FirstName:        entry.GetAttributeValue(AttrFirstName),
		LastName:         entry.GetAttributeValue(AttrLastName),
		Email:            strings.ToLower(entry.GetAttributeValue(AttrMail)),
		StudentLevelCode: strings.TrimSpace(entry.GetAttributeValue(AttrUGCode)),
	}

	for _, affiliation := range entry.GetAttributeValues(AttrAffiliations) {
		affiliation = strings.ToUpper(strings.TrimSpace(affiliation))
		switch {
		case affiliation == employeeExpired:
			person.EmployeeExpired = true
		case affiliation == employeeAcademic:
			person.EmployeeAcademic = true
			person.Employee = true
		case strings.HasPrefix(affiliation, employeeTypePrefix):
			person.Employee = true
		case strings.HasPrefix(affiliation, studentTypePrefix):
			person.Student = true
		}
	}

	return person
}

// EmptyDirectory finds nobody. Used when no directory is configured.
type EmptyDirectory struct{}

func (EmptyDirectory) FindByLogin(context.Context, string) (*models.DirectoryPerson, error) {
	return nil, nil
}
