package dataset

import "errors"

// Sentinel errors returned by the dataset constructors and lookups. Callers
// match them with errors.Is; the wrapped messages carry the offending paths.
var (
	// ErrNoMatchingClass means none of the requested class names exist as
	// subdirectories of the dataset root.
	ErrNoMatchingClass = errors.New("no matching class folder")

	// ErrEmptyClassIndex means sample collection was asked to run with no
	// retained classes.
	ErrEmptyClassIndex = errors.New("class index must have at least one entry")

	// ErrFilterSpec means the file filter was misconfigured.
	ErrFilterSpec = errors.New("invalid filter spec")

	// ErrEmptyClass means a retained class directory contained no valid files.
	ErrEmptyClass = errors.New("no valid file for class")

	// ErrIndexOutOfRange means a lookup index fell outside [0, Len).
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrManifestParse means a manifest row had fewer than two fields.
	ErrManifestParse = errors.New("malformed manifest row")
)
