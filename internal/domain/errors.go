package domain

import "errors"

var (
	// ErrEmptyAnswers is returned when a scoring request carries no answers.
	ErrEmptyAnswers = errors.New("answer set is empty")
	// ErrUnknownVariant is returned for a variant other than simple/detailed.
	ErrUnknownVariant = errors.New("unknown test variant")
	// ErrQuestionNotFound indicates an answer references a question that is
	// not in the loaded catalog.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidLabel indicates a selected label none of the question's
	// options carry.
	ErrInvalidLabel = errors.New("invalid option label")
	// ErrPositionOutOfRange indicates navigation or selection outside the
	// question range.
	ErrPositionOutOfRange = errors.New("position out of range")
	// ErrSessionNotFound is returned when a test session has not been started.
	ErrSessionNotFound = errors.New("test session not found")
	// ErrSessionNotInProgress rejects answer selection before start or after
	// completion.
	ErrSessionNotInProgress = errors.New("test session not in progress")
	// ErrSessionNotCompleted rejects scoring of an unfinished session.
	ErrSessionNotCompleted = errors.New("test session not completed")
	// ErrReportNotFound indicates no report exists for a type code.
	ErrReportNotFound = errors.New("report not found")
	// ErrResultNotFound indicates a stored test result does not exist.
	ErrResultNotFound = errors.New("test result not found")
	// ErrIdentityRequired is returned when a persistence operation needs a
	// user identity and none is available.
	ErrIdentityRequired = errors.New("user identity required, please sign in again")
	// ErrResultForbidden is returned when a result belongs to another user.
	ErrResultForbidden = errors.New("result belongs to another user")
	// ErrCatalogUnavailable indicates the question catalog could not be loaded.
	ErrCatalogUnavailable = errors.New("question catalog unavailable")
)

// ErrorKind buckets errors for the transport layer and callers that need to
// decide between fail-fast, fallback and silent-degrade handling.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindAuthorization ErrorKind = "authorization"
	KindNotFound      ErrorKind = "not_found"
	KindPersistence   ErrorKind = "persistence"
	KindUnknown       ErrorKind = "unknown"
)

// Kind classifies err into the error taxonomy. Wrapped errors are unwrapped
// via errors.Is.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyAnswers),
		errors.Is(err, ErrUnknownVariant),
		errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrInvalidLabel),
		errors.Is(err, ErrPositionOutOfRange),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrSessionNotInProgress),
		errors.Is(err, ErrSessionNotCompleted):
		return KindValidation
	case errors.Is(err, ErrIdentityRequired), errors.Is(err, ErrResultForbidden):
		return KindAuthorization
	case errors.Is(err, ErrReportNotFound), errors.Is(err, ErrResultNotFound):
		return KindNotFound
	case errors.Is(err, ErrCatalogUnavailable):
		return KindPersistence
	default:
		return KindUnknown
	}
}
