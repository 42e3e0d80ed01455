// Package quiz drives one quiz attempt from a fetched question list to a
// finished report, and reconciles unlock state with the server afterwards.
package quiz

import "github.com/biolaureat/learn-client/api"

// Run is the state of a single quiz attempt: current position, recorded
// selections and per-question reveal flags. Not safe for concurrent use; one
// attempt belongs to one user interaction.
type Run struct {
	questions  []api.Question
	current    int
	selections map[int]int
	revealed   map[int]bool
	finished   bool
}

// NewRun starts an attempt at question 0 with no selections.
func NewRun(questions []api.Question) (*Run, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyQuiz
	}
	return &Run{
		questions:  questions,
		selections: make(map[int]int),
		revealed:   make(map[int]bool),
	}, nil
}

// Len returns the number of questions in the attempt.
func (r *Run) Len() int {
	return len(r.questions)
}

// Index returns the current question position.
func (r *Run) Index() int {
	return r.current
}

// Current returns the question at the current position.
func (r *Run) Current() api.Question {
	return r.questions[r.current]
}

// Finished reports whether the attempt advanced past the last question.
func (r *Run) Finished() bool {
	return r.finished
}

// Revealed reports whether feedback for the current question is visible.
func (r *Run) Revealed() bool {
	return r.revealed[r.current]
}

// Selection returns the recorded choice for the current question.
func (r *Run) Selection() (option int, ok bool) {
	option, ok = r.selections[r.current]
	return option, ok
}

// Select records the choice for the current question and reveals feedback.
// The first selection is final: once an answer is recorded it is never
// overwritten, and further calls return ErrAnswerLocked.
func (r *Run) Select(option int) (correct bool, err error) {
	if r.finished {
		return false, ErrRunFinished
	}
	if _, answered := r.selections[r.current]; answered {
		return false, ErrAnswerLocked
	}
	question := r.questions[r.current]
	if option < 0 || option >= len(question.Options) {
		return false, ErrInvalidOption
	}

	r.selections[r.current] = option
	r.revealed[r.current] = true
	return option == question.CorrectIndex, nil
}

// Advance moves to the next question, or finishes the attempt when already
// at the last one. It fails with ErrAnswerRequired (position unchanged) if
// the current question has no recorded selection.
func (r *Run) Advance() error {
	if r.finished {
		return ErrRunFinished
	}
	if _, answered := r.selections[r.current]; !answered {
		return ErrAnswerRequired
	}
	if r.current == len(r.questions)-1 {
		r.finished = true
		return nil
	}
	r.current++
	return nil
}

// Retreat steps back one question. The reveal flag for the question now
// current is cleared so it can be re-viewed; its recorded selection is
// preserved, never erased.
func (r *Run) Retreat() {
	if r.finished || r.current == 0 {
		return
	}
	r.current--
	delete(r.revealed, r.current)
}
