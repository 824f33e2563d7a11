package gridview

import "errors"

// Errors returned by grid components. They are always wrapped with context,
// compare them with errors.Is.
var (
	// ErrInvalidArgument is returned when a setter, formatter or renderer
	// receives a value of the wrong type or shape.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupportedFormat is returned for an unknown column format name.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnknownAttribute is returned when a sort or filter references an
	// attribute key that was never registered.
	ErrUnknownAttribute = errors.New("unknown attribute")
	// ErrMissingAccessor is returned when a row has no accessor for a
	// requested attribute.
	ErrMissingAccessor = errors.New("missing accessor")
	// ErrMissingLabel is returned by a column that has neither a label nor an
	// attribute name.
	ErrMissingLabel = errors.New("missing label")
	// ErrMissingDependency is returned when a required collaborator was not
	// attached before use.
	ErrMissingDependency = errors.New("missing dependency")
)
