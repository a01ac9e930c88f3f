package schema

import "errors"

// Sentinel errors shared by scoring, configuration and lookups.
var (
	// ErrInvalidMetric is returned when a metric is negative or not a finite number.
	ErrInvalidMetric = errors.New("invalid metric")

	// ErrUnknownGroup is returned by detail lookups that find no matching record.
	ErrUnknownGroup = errors.New("unknown group")

	// ErrConfigurationOutOfRange is returned when a threshold or scoring config is rejected.
	ErrConfigurationOutOfRange = errors.New("configuration out of range")
)
