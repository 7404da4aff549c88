package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"quiz-outcome-service/internal/domain"
	"quiz-outcome-service/internal/infra/postgres/migrations"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quiz,alias:qz"`

	ID          int64          `bun:"id,pk,autoincrement"`
	Title       string         `bun:"title,notnull"`
	Description string         `bun:"description,nullzero"`
	CreatedAt   time.Time      `bun:"created_at,notnull,default:current_timestamp"`
	Questions   []*questionRow `bun:"rel:has-many,join:id=quiz_id"`
	Results     []*resultRow   `bun:"rel:has-many,join:id=quiz_id"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:question,alias:qs"`

	ID         int64        `bun:"id,pk,autoincrement"`
	QuizID     int64        `bun:"quiz_id,notnull"`
	Text       string       `bun:"text,notnull"`
	OrderIndex int          `bun:"order_index,notnull"`
	Answers    []*answerRow `bun:"rel:has-many,join:id=question_id"`
}

type answerRow struct {
	bun.BaseModel `bun:"table:answer,alias:an"`

	ID         int64  `bun:"id,pk,autoincrement"`
	QuestionID int64  `bun:"question_id,notnull"`
	Text       string `bun:"text,notnull"`
	Score      int    `bun:"score,notnull"`
}

type resultRow struct {
	bun.BaseModel `bun:"table:result,alias:rs"`

	ID          int64  `bun:"id,pk,autoincrement"`
	QuizID      int64  `bun:"quiz_id,notnull"`
	MinScore    int    `bun:"min_score,notnull"`
	MaxScore    int    `bun:"max_score,notnull"`
	Title       string `bun:"title,notnull"`
	Description string `bun:"description,nullzero"`
	ImageURL    string `bun:"image_url,nullzero"`
}

// Store implements app.QuizStore on top of bun. Every multi-row write runs in one transaction.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var rows []quizRow
	if err := s.db.NewSelect().Model(&rows).Order("qz.created_at ASC", "qz.id ASC").Scan(ctx); err != nil {
		return nil, errors.Wrap(err, "list quizzes")
	}
	quizzes := make([]domain.Quiz, 0, len(rows))
	for i := range rows {
		quizzes = append(quizzes, rows[i].toDomain())
	}
	return quizzes, nil
}

func (s *Store) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	row := new(quizRow)
	err := s.db.NewSelect().
		Model(row).
		Relation("Questions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("qs.order_index ASC", "qs.id ASC")
		}).
		Relation("Questions.Answers", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("an.id ASC")
		}).
		Relation("Results", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("rs.id ASC")
		}).
		Where("qz.id = ?", quizID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, errors.Wrapf(err, "get quiz %d", quizID)
	}
	return row.toDomain(), nil
}

func (s *Store) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	return insertQuiz(ctx, s.db, quiz)
}

func (s *Store) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	row := &quizRow{ID: quiz.ID, Title: quiz.Title, Description: quiz.Description}
	res, err := s.db.NewUpdate().Model(row).Column("title", "description").WherePK().Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "update quiz %d", quiz.ID)
	}
	return expectAffected(res, domain.ErrQuizNotFound)
}

// DeleteQuiz relies on ON DELETE CASCADE for questions, answers and results.
func (s *Store) DeleteQuiz(ctx context.Context, quizID int64) error {
	res, err := s.db.NewDelete().Model((*quizRow)(nil)).Where("id = ?", quizID).Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "delete quiz %d", quizID)
	}
	return expectAffected(res, domain.ErrQuizNotFound)
}

func (s *Store) GetQuestion(ctx context.Context, questionID int64) (domain.Question, error) {
	row := new(questionRow)
	err := s.db.NewSelect().
		Model(row).
		Relation("Answers", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("an.id ASC")
		}).
		Where("qs.id = ?", questionID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, errors.Wrapf(err, "get question %d", questionID)
	}
	return row.toDomain(), nil
}

func (s *Store) CreateQuestion(ctx context.Context, question *domain.Question) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*quizRow)(nil)).Where("id = ?", question.QuizID).Exists(ctx)
		if err != nil {
			return errors.Wrap(err, "check quiz")
		}
		if !exists {
			return domain.ErrQuizNotFound
		}
		return insertQuestion(ctx, tx, question)
	})
}

// UpdateQuestion rewrites the question row and replaces all of its answers.
func (s *Store) UpdateQuestion(ctx context.Context, question *domain.Question) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := &questionRow{ID: question.ID, Text: question.Text, OrderIndex: question.OrderIndex}
		res, err := tx.NewUpdate().Model(row).Column("text", "order_index").WherePK().Exec(ctx)
		if err != nil {
			return errors.Wrapf(err, "update question %d", question.ID)
		}
		if err := expectAffected(res, domain.ErrQuestionNotFound); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*answerRow)(nil)).Where("question_id = ?", question.ID).Exec(ctx); err != nil {
			return errors.Wrapf(err, "delete answers of question %d", question.ID)
		}
		return insertAnswers(ctx, tx, question.ID, question.Answers)
	})
}

func (s *Store) DeleteQuestion(ctx context.Context, questionID int64) error {
	res, err := s.db.NewDelete().Model((*questionRow)(nil)).Where("id = ?", questionID).Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "delete question %d", questionID)
	}
	return expectAffected(res, domain.ErrQuestionNotFound)
}

func (s *Store) GetResult(ctx context.Context, resultID int64) (domain.Result, error) {
	row := new(resultRow)
	err := s.db.NewSelect().Model(row).Where("rs.id = ?", resultID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Result{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.Result{}, errors.Wrapf(err, "get result %d", resultID)
	}
	return row.toDomain(), nil
}

func (s *Store) CreateResult(ctx context.Context, result *domain.Result) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*quizRow)(nil)).Where("id = ?", result.QuizID).Exists(ctx)
		if err != nil {
			return errors.Wrap(err, "check quiz")
		}
		if !exists {
			return domain.ErrQuizNotFound
		}
		return insertResult(ctx, tx, result)
	})
}

func (s *Store) UpdateResult(ctx context.Context, result *domain.Result) error {
	row := resultToRow(*result)
	res, err := s.db.NewUpdate().
		Model(row).
		Column("title", "description", "min_score", "max_score", "image_url").
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "update result %d", result.ID)
	}
	return expectAffected(res, domain.ErrResultNotFound)
}

func (s *Store) DeleteResult(ctx context.Context, resultID int64) error {
	res, err := s.db.NewDelete().Model((*resultRow)(nil)).Where("id = ?", resultID).Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "delete result %d", resultID)
	}
	return expectAffected(res, domain.ErrResultNotFound)
}

// Reset drops and recreates the schema and inserts seed, all in one transaction.
func (s *Store) Reset(ctx context.Context, seed []domain.Quiz) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, migrations.DropSchemaSQL); err != nil {
			return errors.Wrap(err, "drop schema")
		}
		if _, err := tx.ExecContext(ctx, migrations.CreateSchemaSQL); err != nil {
			return errors.Wrap(err, "create schema")
		}
		for i := range seed {
			quiz := seed[i]
			if err := insertQuiz(ctx, tx, &quiz); err != nil {
				return err
			}
			for j := range quiz.Questions {
				question := quiz.Questions[j]
				question.QuizID = quiz.ID
				if err := insertQuestion(ctx, tx, &question); err != nil {
					return err
				}
			}
			for j := range quiz.Results {
				result := quiz.Results[j]
				result.QuizID = quiz.ID
				if err := insertResult(ctx, tx, &result); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func insertQuiz(ctx context.Context, db bun.IDB, quiz *domain.Quiz) error {
	row := &quizRow{Title: quiz.Title, Description: quiz.Description, CreatedAt: quiz.CreatedAt}
	if _, err := db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return errors.Wrap(err, "insert quiz")
	}
	quiz.ID = row.ID
	return nil
}

func insertQuestion(ctx context.Context, db bun.IDB, question *domain.Question) error {
	row := &questionRow{QuizID: question.QuizID, Text: question.Text, OrderIndex: question.OrderIndex}
	if _, err := db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return errors.Wrap(err, "insert question")
	}
	question.ID = row.ID
	return insertAnswers(ctx, db, question.ID, question.Answers)
}

func insertAnswers(ctx context.Context, db bun.IDB, questionID int64, answers []domain.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	rows := make([]answerRow, len(answers))
	for i, a := range answers {
		rows[i] = answerRow{QuestionID: questionID, Text: a.Text, Score: a.Score}
	}
	if _, err := db.NewInsert().Model(&rows).Returning("id").Exec(ctx); err != nil {
		return errors.Wrapf(err, "insert answers of question %d", questionID)
	}
	for i := range answers {
		answers[i].ID = rows[i].ID
		answers[i].QuestionID = questionID
	}
	return nil
}

func insertResult(ctx context.Context, db bun.IDB, result *domain.Result) error {
	row := resultToRow(*result)
	if _, err := db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return errors.Wrap(err, "insert result")
	}
	result.ID = row.ID
	return nil
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func resultToRow(r domain.Result) *resultRow {
	return &resultRow{
		ID:          r.ID,
		QuizID:      r.QuizID,
		MinScore:    r.MinScore,
		MaxScore:    r.MaxScore,
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
	}
}

func (r *quizRow) toDomain() domain.Quiz {
	quiz := domain.Quiz{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
	for _, q := range r.Questions {
		quiz.Questions = append(quiz.Questions, q.toDomain())
	}
	for _, res := range r.Results {
		quiz.Results = append(quiz.Results, res.toDomain())
	}
	return quiz
}

func (r *questionRow) toDomain() domain.Question {
	question := domain.Question{
		ID:         r.ID,
		QuizID:     r.QuizID,
		Text:       r.Text,
		OrderIndex: r.OrderIndex,
	}
	for _, a := range r.Answers {
		question.Answers = append(question.Answers, domain.Answer{
			ID:         a.ID,
			QuestionID: a.QuestionID,
			Text:       a.Text,
			Score:      a.Score,
		})
	}
	return question
}

func (r *resultRow) toDomain() domain.Result {
	return domain.Result{
		ID:          r.ID,
		QuizID:      r.QuizID,
		MinScore:    r.MinScore,
		MaxScore:    r.MaxScore,
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
	}
}
