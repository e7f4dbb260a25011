package conversion

import (
	"errors"

	"github.com/ignite/bee-importer/internal/beefree"
)

// Sentinel errors for the conversion service layer.
var (
	ErrNotFound      = errors.New("email template not found")
	ErrDuplicateName = errors.New("an email template with this name already exists")
)

// Stage names a step of the single-import pipeline.
type Stage string

const (
	StageValidating  Stage = "validating"
	StageNormalizing Stage = "normalizing"
	StageConverting  Stage = "converting"
	StageAdapting    Stage = "adapting"
	StagePersisting  Stage = "persisting"
	StageDone        Stage = "done"
)

// Kind classifies why an import failed. Remote failures reuse the
// beefree.ErrorType values.
type Kind string

const (
	KindValidation       Kind = Kind(beefree.TypeValidation)
	KindPersistence      Kind = "persistence_error"
	KindImportInProgress Kind = "import_in_progress"
	// KindInfrastructure marks faults outside the conversion itself, such as
	// an unreachable lock backend. Batch imports abort on these.
	KindInfrastructure Kind = "infrastructure"
)

// ValidationError is a local input rejection, raised before any remote call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// RemoteError carries a failed Beefree conversion.
type RemoteError struct {
	Failure beefree.Failure
}

func (e *RemoteError) Error() string { return e.Failure.Message }

// ConversionError is the single error surfaced by Service.Convert. The
// originating error stays reachable through errors.As / errors.Is.
type ConversionError struct {
	Stage Stage
	Kind  Kind
	Err   error
}

func (e *ConversionError) Error() string {
	return "HTML to Bee conversion failed: " + e.Err.Error()
}

func (e *ConversionError) Unwrap() error { return e.Err }

func fail(stage Stage, kind Kind, err error) *ConversionError {
	return &ConversionError{Stage: stage, Kind: kind, Err: err}
}
