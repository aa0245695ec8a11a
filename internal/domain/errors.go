package domain

import "errors"

var (
	// ErrDuplicateGroup indicates the group id is already taken.
	ErrDuplicateGroup = errors.New("group id already exists")
	// ErrTooManyMembers indicates the member list exceeds the configured group size.
	ErrTooManyMembers = errors.New("group exceeds maximum member count")
	// ErrMemberNotInBuilding indicates a member id outside the building's resident set.
	ErrMemberNotInBuilding = errors.New("member does not belong to building")
	// ErrBlockMismatch indicates a member living outside the group's block restriction.
	ErrBlockMismatch = errors.New("member resides outside restricted block")
	// ErrInvalidQuality indicates a quality score outside the 1..5 range.
	ErrInvalidQuality = errors.New("quality score must be between 1 and 5")
	// ErrGroupNotFound is returned when a group cannot be located.
	ErrGroupNotFound = errors.New("group not found")
	// ErrBuildingNotFound is returned when a building cannot be located.
	ErrBuildingNotFound = errors.New("building not found")
	// ErrResidentNotFound is returned when a resident cannot be located.
	ErrResidentNotFound = errors.New("resident not found")
)
