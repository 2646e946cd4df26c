package editor

import "errors"

var (
	// ErrPlacementRejected is returned when a placed or transformed component
	// would overlap another one anywhere but an exact pin-on-pin contact.
	// The document is left unchanged.
	ErrPlacementRejected = errors.New("editor: placement rejected")

	// ErrNotFound is returned for element ids that are not on the active sheet.
	ErrNotFound = errors.New("editor: element not found")

	ErrNothingToUndo = errors.New("editor: nothing to undo")
	ErrNothingToRedo = errors.New("editor: nothing to redo")
)
