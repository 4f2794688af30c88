package journey

import "errors"

var (
	ErrJourneyActive      = errors.New("journey: a journey is already in progress")
	ErrFinishedPending    = errors.New("journey: a finished journey is waiting to be submitted")
	ErrNoActiveJourney    = errors.New("journey: no journey in progress")
	ErrNoFinishedJourney  = errors.New("journey: no finished journey")
	ErrNotPlacing         = errors.New("journey: not placing an object")
	ErrNotAwaitingType    = errors.New("journey: no object is waiting for a type")
	ErrNotEnoughPoints    = errors.New("journey: not enough points")
	ErrInvalidGeometry    = errors.New("journey: unknown geometry type")
	ErrInvalidPoint       = errors.New("journey: point is out of range")
	ErrObjectNotFound     = errors.New("journey: object not found")
	ErrSyncInProgress     = errors.New("journey: object is already being synced")
	ErrNothingToSubmit    = errors.New("journey: journey has no server draft to submit")
	ErrNoState            = errors.New("journey: no saved state")
	ErrUnsupportedVersion = errors.New("journey: unsupported state version")
)
