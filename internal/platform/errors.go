package platform

import (
	"errors"
)

var (
	// ErrCycleInProgress is returned when poll is triggered while previous cycle is not finished yet.
	ErrCycleInProgress = errors.New("poll cycle already in progress")
	// ErrUnknownRegion is returned for region codes which are not in the catalog.
	ErrUnknownRegion = errors.New("unknown region")
	// ErrUnknownItem is returned when there is no item with provided identifier.
	ErrUnknownItem = errors.New("unknown item")
)
