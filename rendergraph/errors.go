package rendergraph

import "errors"

// Registry errors. All of them indicate a pass authoring bug and abort the
// frame that produced them.
var (
	// ErrInvalidHandle is returned for zero, stale or mistyped handles.
	ErrInvalidHandle = errors.New("rendergraph: invalid resource handle")

	// ErrHandleOutOfRange is returned when a handle index exceeds the
	// current frame's resource table.
	ErrHandleOutOfRange = errors.New("rendergraph: resource handle out of range")

	// ErrResourceAlreadyCreated is returned when a resource is realized twice
	// without an intervening release.
	ErrResourceAlreadyCreated = errors.New("rendergraph: resource already created")

	// ErrResourceNeverCreated is returned when releasing a resource that was
	// never realized.
	ErrResourceNeverCreated = errors.New("rendergraph: resource never created")

	// ErrImportedResource is returned when realizing or releasing an
	// imported resource.
	ErrImportedResource = errors.New("rendergraph: imported resources are externally owned")

	// ErrResourceLeak is returned by EndRender when resources were still
	// checked out at the end of the frame.
	ErrResourceLeak = errors.New("rendergraph: resources leaked at end of frame")

	// ErrInvalidDescriptor is returned for descriptors with zero size.
	ErrInvalidDescriptor = errors.New("rendergraph: invalid resource descriptor")

	// ErrNotRendering is returned when resources are declared outside a
	// BeginRender/EndRender bracket.
	ErrNotRendering = errors.New("rendergraph: registry is not rendering")

	// ErrAlreadyRendering is returned by BeginRender when the previous frame
	// was never ended.
	ErrAlreadyRendering = errors.New("rendergraph: frame already in progress")
)
