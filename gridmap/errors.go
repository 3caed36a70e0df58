package gridmap

import "errors"

var (
	// ErrInvalidGrid is returned when a grid is not rectangular, is smaller
	// than 3x3 or has a free cell on its border.
	ErrInvalidGrid = errors.New("invalid grid")
	// ErrTooManyRooms is returned when segmentation finds more rooms than
	// there are variation labels.
	ErrTooManyRooms = errors.New("too many rooms")
	// ErrUnknownVariationStyle is returned for an unsupported variation style.
	ErrUnknownVariationStyle = errors.New("unknown variation style")
)
