package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-outcome-service/internal/domain"
)

// QuizLoader serves the public read path from Postgres through a pgx pool.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, title, COALESCE(description, ''), created_at FROM quiz ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []domain.Quiz
	for rows.Next() {
		var q domain.Quiz
		if err := rows.Scan(&q.ID, &q.Title, &q.Description, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// LoadQuiz reads the quiz graph inside one read-only snapshot so questions,
// answers and results are mutually consistent.
func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("begin read: %w", err)
	}
	defer tx.Rollback(ctx)

	var quiz domain.Quiz
	err = tx.QueryRow(ctx, `SELECT id, title, COALESCE(description, ''), created_at FROM quiz WHERE id=$1`, quizID).
		Scan(&quiz.ID, &quiz.Title, &quiz.Description, &quiz.CreatedAt)
	if err == pgx.ErrNoRows {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	if quiz.Questions, err = loadQuestions(ctx, tx, quizID); err != nil {
		return domain.Quiz{}, err
	}
	if quiz.Results, err = loadResults(ctx, tx, quizID); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// CountAnswerPairs counts how many (question, answer) pairs name an answer of that question.
func (l *QuizLoader) CountAnswerPairs(ctx context.Context, pairs domain.Submission) (int, error) {
	if len(pairs) == 0 {
		return 0, nil
	}
	questionIDs := make([]int64, 0, len(pairs))
	answerIDs := make([]int64, 0, len(pairs))
	for questionID, answerID := range pairs {
		questionIDs = append(questionIDs, questionID)
		answerIDs = append(answerIDs, answerID)
	}

	var n int
	err := l.pool.QueryRow(ctx, `SELECT count(*) FROM answer a
		JOIN unnest($1::bigint[], $2::bigint[]) AS p(question_id, answer_id)
		ON a.id = p.answer_id AND a.question_id = p.question_id`, questionIDs, answerIDs).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count answer pairs: %w", err)
	}
	return n, nil
}

func loadQuestions(ctx context.Context, tx pgx.Tx, quizID int64) ([]domain.Question, error) {
	rows, err := tx.Query(ctx, `SELECT id, quiz_id, text, order_index FROM question WHERE quiz_id=$1 ORDER BY order_index, id`, quizID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	var questions []domain.Question
	index := make(map[int64]int)
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &q.OrderIndex); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan question: %w", err)
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	rows, err = tx.Query(ctx, `SELECT a.id, a.question_id, a.text, a.score
		FROM answer a JOIN question q ON q.id = a.question_id
		WHERE q.quiz_id=$1 ORDER BY a.id`, quizID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.Score); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		if i, ok := index[a.QuestionID]; ok {
			questions[i].Answers = append(questions[i].Answers, a)
		}
	}
	return questions, rows.Err()
}

func loadResults(ctx context.Context, tx pgx.Tx, quizID int64) ([]domain.Result, error) {
	rows, err := tx.Query(ctx, `SELECT id, quiz_id, min_score, max_score, title, COALESCE(description, ''), COALESCE(image_url, '')
		FROM result WHERE quiz_id=$1 ORDER BY id`, quizID)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		var r domain.Result
		if err := rows.Scan(&r.ID, &r.QuizID, &r.MinScore, &r.MaxScore, &r.Title, &r.Description, &r.ImageURL); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
