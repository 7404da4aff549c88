package domain

import "time"

// Quiz is a named set of questions plus the score ranges that describe its outcomes.
type Quiz struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	Questions   []Question `json:"questions,omitempty"`
	Results     []Result   `json:"results,omitempty"`
}

// Question is one quiz item. OrderIndex drives display order and is not unique.
type Question struct {
	ID         int64    `json:"id"`
	QuizID     int64    `json:"quizId"`
	Text       string   `json:"text"`
	OrderIndex int      `json:"orderIndex"`
	Answers    []Answer `json:"answers,omitempty"`
}

// Answer is a choice with an integer score contribution (may be zero or negative).
type Answer struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"questionId"`
	Text       string `json:"text"`
	Score      int    `json:"score"`
}

// Result is an outcome bound to the inclusive range [MinScore, MaxScore].
type Result struct {
	ID          int64  `json:"id"`
	QuizID      int64  `json:"quizId"`
	MinScore    int    `json:"minScore"`
	MaxScore    int    `json:"maxScore"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Contains reports whether score falls inside the result's inclusive range.
func (r Result) Contains(score int) bool {
	return r.MinScore <= score && score <= r.MaxScore
}

// Submission maps a question id to the chosen answer id.
type Submission map[int64]int64

// Outcome is what a respondent sees after submitting a quiz.
type Outcome struct {
	QuizID int64  `json:"quizId"`
	Score  int    `json:"score"`
	Result Result `json:"result"`
}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Session is the server-side state behind a browser session cookie.
type Session struct {
	Admin   bool    `json:"admin"`
	Flashes []Flash `json:"flashes,omitempty"`
}
