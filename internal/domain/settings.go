package domain

import "time"

// Settings carries the tunables consumed by the rotation core. Everything is
// injectable so tests can run with small numbers.
type Settings struct {
	RotationPeriodDays      int
	MaxGroupSize            int
	MembersPerArea          int
	ConsistentBadgeMinTasks int
	ConsistentBadgeWindow   time.Duration
	CleanerBadgeThreshold   float64
}

// DefaultSettings returns the production defaults.
func DefaultSettings() Settings {
	return Settings{
		RotationPeriodDays:      3,
		MaxGroupSize:            4,
		MembersPerArea:          2,
		ConsistentBadgeMinTasks: 10,
		ConsistentBadgeWindow:   30 * 24 * time.Hour,
		CleanerBadgeThreshold:   0.9,
	}
}
