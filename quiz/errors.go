package quiz

import "errors"

var (
	// Engine misuse.
	ErrEmptyQuiz      = errors.New("quiz has no questions")
	ErrAnswerRequired = errors.New("answer required before advancing")
	ErrAnswerLocked   = errors.New("answer already recorded for this question")
	ErrInvalidOption  = errors.New("option index out of range")
	ErrRunFinished    = errors.New("quiz run already finished")

	// The server answered 2xx but the content is unusable.
	ErrNoQuestions   = errors.New("server returned no questions")
	ErrMalformedQuiz = errors.New("server returned malformed questions")
)
