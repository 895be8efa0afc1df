package errors

import (
	"errors"
)

// Error kinds shared by every bounded context. Application services wrap
// their domain errors with one of these so transport adapters can classify
// failures with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidState      = errors.New("invalid state")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrRateLimited       = errors.New("rate limited")
)

// TransitionDetail is implemented by errors that know which move was attempted.
type TransitionDetail interface {
	TransitionFrom() string
	TransitionTo() string
	TransitionRole() string
}

// ProblemFromError classifies err into a ProblemDetail. The boolean is false
// when err carries none of the known kinds.
func ProblemFromError(err error) (ProblemDetail, bool) {
	if err == nil {
		return ProblemDetail{}, false
	}
	var problem ProblemDetail
	switch {
	case errors.As(err, &problem):
		return problem, true
	case errors.Is(err, ErrNotFound):
		problem = ProblemNotFound
	case errors.Is(err, ErrValidation):
		problem = ProblemValidation
	case errors.Is(err, ErrForbidden):
		problem = ProblemForbidden
	case errors.Is(err, ErrInvalidTransition):
		problem = ProblemInvalidTransition
	case errors.Is(err, ErrInvalidState):
		problem = ProblemInvalidState
	case errors.Is(err, ErrConflict):
		problem = ProblemConflict
	case errors.Is(err, ErrUnauthorized):
		problem = ProblemUnauthorized
	case errors.Is(err, ErrRateLimited):
		problem = ProblemTooManyRequests
	default:
		return ProblemDetail{}, false
	}
	problem = problem.WithDetail(err.Error())
	var td TransitionDetail
	if errors.As(err, &td) {
		problem = problem.
			WithExtension("from", td.TransitionFrom()).
			WithExtension("to", td.TransitionTo()).
			WithExtension("role", td.TransitionRole())
	}
	return problem, true
}

var kinds = map[string]error{
	"NotFound":          ErrNotFound,
	"Validation":        ErrValidation,
	"Forbidden":         ErrForbidden,
	"InvalidTransition": ErrInvalidTransition,
	"InvalidState":      ErrInvalidState,
	"Conflict":          ErrConflict,
	"Unauthorized":      ErrUnauthorized,
	"RateLimited":       ErrRateLimited,
}

// KindName returns the stable name of the kind err carries, or "" when it
// carries none. Used to ship kinds across serialization boundaries.
func KindName(err error) string {
	if err == nil {
		return ""
	}
	for name, kind := range kinds {
		if errors.Is(err, kind) {
			return name
		}
	}
	return ""
}

// KindByName is the inverse of KindName.
func KindByName(name string) (error, bool) {
	kind, ok := kinds[name]
	return kind, ok
}
