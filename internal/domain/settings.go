package domain

import "time"

// Personality selects the tone of automated replies.
type Personality string

const (
	PersonalityProfessional Personality = "professional"
	PersonalityFriendly     Personality = "friendly"
	PersonalityStrict       Personality = "strict"
)

// IsValid checks if the personality is one of the allowed values.
func (p Personality) IsValid() bool {
	switch p {
	case PersonalityProfessional, PersonalityFriendly, PersonalityStrict:
		return true
	default:
		return false
	}
}

// FollowupFrequency is the user's preferred follow-up cadence. Informational only.
type FollowupFrequency string

const (
	FollowupAggressive FollowupFrequency = "aggressive"
	FollowupBalanced   FollowupFrequency = "balanced"
	FollowupRelaxed    FollowupFrequency = "relaxed"
)

// IsValid checks if the frequency is one of the allowed values.
func (f FollowupFrequency) IsValid() bool {
	switch f {
	case FollowupAggressive, FollowupBalanced, FollowupRelaxed:
		return true
	default:
		return false
	}
}

// AISettings holds per-user preferences for the assistant.
type AISettings struct {
	UserID            string
	Personality       Personality
	FollowupFrequency FollowupFrequency
	WorkHoursStart    *string // local time of day, "HH:MM"
	WorkHoursEnd      *string
	Timezone          string // IANA name, empty means UTC
	IncludeWeekends   bool
	OptimizeCosts     bool
	LastActiveAt      *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DefaultSettings describes a user without a stored row. It places no
// restriction on replies, matching what the scheduling gate applies to nil settings.
func DefaultSettings(userID string) *AISettings {
	return &AISettings{
		UserID:            userID,
		Personality:       PersonalityProfessional,
		FollowupFrequency: FollowupBalanced,
		Timezone:          "UTC",
		IncludeWeekends:   true,
	}
}

// PersonalityOrDefault returns the configured personality, falling back to professional.
func (s *AISettings) PersonalityOrDefault() Personality {
	if s == nil || !s.Personality.IsValid() {
		return PersonalityProfessional
	}
	return s.Personality
}
