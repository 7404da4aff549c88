package domain

import "errors"

// Kind classifies an error for presentation.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPersistence:
		return "persistence"
	default:
		return "internal"
	}
}

// Error is a classified application error. Msg is safe to show to users.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

var (
	// ErrQuizNotFound is returned when a quiz id does not exist.
	ErrQuizNotFound = &Error{Kind: KindNotFound, Msg: "quiz not found"}
	// ErrQuestionNotFound is returned when a question id does not exist.
	ErrQuestionNotFound = &Error{Kind: KindNotFound, Msg: "question not found"}
	// ErrResultNotFound is returned when a result id does not exist.
	ErrResultNotFound = &Error{Kind: KindNotFound, Msg: "result not found"}
	// ErrIncompleteSubmission means not every question of the quiz got a valid answer.
	ErrIncompleteSubmission = &Error{Kind: KindValidation, Msg: "please answer all questions"}
	// ErrNoResultConfigured means the quiz has no results to match a score against.
	ErrNoResultConfigured = &Error{Kind: KindValidation, Msg: "no result configured for this quiz, please try again later"}
	// ErrInvalidCredentials is returned by a failed admin login.
	ErrInvalidCredentials = &Error{Kind: KindValidation, Msg: "invalid username or password"}
)

// Validation builds a user-facing validation error.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// Persistence marks err as a storage failure. The user sees a generic message.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: KindPersistence, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Message returns the user-facing text of err.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Msg != "" {
		return de.Msg
	}
	return "something went wrong, please try again"
}
