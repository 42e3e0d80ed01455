package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Question is one multiple-choice question as generated by the server.
// Immutable once fetched.
type Question struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	CorrectIndex   int      `json:"correct_index"`
	Explanation    string   `json:"explanation,omitempty"`
	SourceSentence int      `json:"source_sentence,omitempty"`
}

// QuizPayload is the response of the quiz generation endpoints. Msg carries
// server-side notes such as "already completed today" explanations.
type QuizPayload struct {
	Module                string     `json:"module,omitempty"`
	DocumentID            int        `json:"document_id,omitempty"`
	Questions             []Question `json:"questions"`
	AlreadyCompletedToday bool       `json:"already_completed_today,omitempty"`
	Msg                   string     `json:"msg,omitempty"`
}

// QuizSubmission reports a finished attempt. Module is empty for the daily
// challenge, which sets Daily instead.
type QuizSubmission struct {
	QuestionsCorrect int    `json:"questions_correct"`
	QuestionsTotal   int    `json:"questions_total"`
	Module           string `json:"module_id,omitempty"`
	Daily            bool   `json:"daily,omitempty"`
}

// SubmitResult is the server's acknowledgement of a submission. When present,
// ModulesProgress is the authoritative unlock state and replaces any cached
// value wholesale.
type SubmitResult struct {
	Msg             string         `json:"msg,omitempty"`
	TotalScore      int            `json:"total_score,omitempty"`
	CurrentStreak   int            `json:"current_streak,omitempty"`
	LongestStreak   int            `json:"longest_streak,omitempty"`
	LastQuizDate    string         `json:"last_quiz_date,omitempty"`
	ModulesProgress map[string]int `json:"modules_progress,omitempty"`
}

// ModuleQuiz generates a quiz for one content module. Generation is slow
// (tens of seconds); callers pass a cancellable context.
func (c *Client) ModuleQuiz(ctx context.Context, token, module string) (*QuizPayload, error) {
	query := url.Values{"module": {module}}
	var payload QuizPayload
	if err := c.do(ctx, http.MethodGet, "/api/quiz/biolaureat", query, token, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DailyQuiz generates the daily challenge. another requests a fresh set even
// when today's challenge is already completed.
func (c *Client) DailyQuiz(ctx context.Context, token string, another bool) (*QuizPayload, error) {
	var query url.Values
	if another {
		query = url.Values{"another": {"1"}}
	}
	var payload QuizPayload
	if err := c.do(ctx, http.MethodGet, "/api/quiz/daily", query, token, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DocumentQuiz generates a quiz from an uploaded PDF document.
func (c *Client) DocumentQuiz(ctx context.Context, token string, documentID int) (*QuizPayload, error) {
	path := fmt.Sprintf("/api/pdf/%d/quiz", documentID)
	var payload QuizPayload
	if err := c.do(ctx, http.MethodPost, path, nil, token, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SubmitQuiz records a finished attempt server-side.
func (c *Client) SubmitQuiz(ctx context.Context, token string, sub QuizSubmission) (*SubmitResult, error) {
	var result SubmitResult
	if err := c.do(ctx, http.MethodPost, "/api/quiz/submit", nil, token, sub, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Progress fetches the authoritative per-module unlock state.
func (c *Client) Progress(ctx context.Context, token string) (map[string]int, error) {
	progress := map[string]int{}
	if err := c.do(ctx, http.MethodGet, "/api/quiz/progress", nil, token, nil, &progress); err != nil {
		return nil, err
	}
	return progress, nil
}
