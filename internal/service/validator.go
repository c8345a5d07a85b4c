package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mtlprog/taskpulse/internal/domain"
	"github.com/mtlprog/taskpulse/internal/repository"
)

const maxTitleLength = 200

var workHoursPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

// Validator handles input and state validation for service operations.
type Validator struct {
	now func() time.Time
}

// NewValidator creates a new Validator.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// ValidateNewTask checks the fields of a task about to be created.
func (v *Validator) ValidateNewTask(in CreateTaskInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.ErrInvalidTitle
	}
	if len(title) > maxTitleLength {
		return fmt.Errorf("%w: title longer than %d characters", domain.ErrInvalidTitle, maxTitleLength)
	}

	if in.AssigneeID == "" {
		return domain.ErrInvalidAssignee
	}

	if in.Deadline.IsZero() {
		return fmt.Errorf("%w: deadline is required", domain.ErrInvalidDeadline)
	}

	return nil
}

// ValidateSort checks a list of sort keys against the sortable task columns.
func (v *Validator) ValidateSort(keys []string) error {
	for _, key := range keys {
		if field, _, ok := repository.SortField(key); !ok {
			return fmt.Errorf("%w: %q", domain.ErrInvalidSort, field)
		}
	}
	return nil
}

// ValidateStatuses checks a list of status filter values.
func (v *Validator) ValidateStatuses(statuses []string) error {
	for _, s := range statuses {
		if !domain.TaskStatus(s).IsValid() {
			return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, s)
		}
	}
	return nil
}

// ValidateSettings checks user-editable AI settings and normalizes work hours
// to HH:MM.
func (v *Validator) ValidateSettings(s *domain.AISettings) error {
	if !s.Personality.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidPersonality, s.Personality)
	}
	if !s.FollowupFrequency.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidFrequency, s.FollowupFrequency)
	}

	var err error
	if s.WorkHoursStart, err = normalizeWorkHours(s.WorkHoursStart); err != nil {
		return err
	}
	if s.WorkHoursEnd, err = normalizeWorkHours(s.WorkHoursEnd); err != nil {
		return err
	}
	if (s.WorkHoursStart == nil) != (s.WorkHoursEnd == nil) {
		return fmt.Errorf("%w: both start and end must be set", domain.ErrInvalidWorkHours)
	}

	if s.Timezone == "" {
		s.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidTimezone, s.Timezone)
	}

	return nil
}

func normalizeWorkHours(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil, nil
	}
	if !workHoursPattern.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidWorkHours, s)
	}
	s = s[:5]
	return &s, nil
}
