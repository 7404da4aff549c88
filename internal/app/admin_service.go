package app

import (
	"context"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"quiz-outcome-service/internal/domain"
)

// QuizStore persists quizzes and their children. Multi-row writes must be atomic.
type QuizStore interface {
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	// GetQuiz returns the quiz with questions (with answers) and results.
	GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
	CreateQuiz(ctx context.Context, quiz *domain.Quiz) error
	UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error
	// DeleteQuiz removes the quiz, its questions, their answers and its results.
	DeleteQuiz(ctx context.Context, quizID int64) error

	GetQuestion(ctx context.Context, questionID int64) (domain.Question, error)
	// CreateQuestion inserts the question and its answers.
	CreateQuestion(ctx context.Context, question *domain.Question) error
	// UpdateQuestion updates the question and replaces all of its answers.
	UpdateQuestion(ctx context.Context, question *domain.Question) error
	DeleteQuestion(ctx context.Context, questionID int64) error

	GetResult(ctx context.Context, resultID int64) (domain.Result, error)
	CreateResult(ctx context.Context, result *domain.Result) error
	UpdateResult(ctx context.Context, result *domain.Result) error
	DeleteResult(ctx context.Context, resultID int64) error

	// Reset drops all data, recreates the schema and inserts the given quizzes.
	Reset(ctx context.Context, seed []domain.Quiz) error
}

// QuizInput is the raw admin form for a quiz.
type QuizInput struct {
	Title       string
	Description string
}

// AnswerInput is one raw answer row. Score is parsed during validation.
type AnswerInput struct {
	Text  string
	Score string
}

// QuestionInput is the raw admin form for a question and its full answer list.
type QuestionInput struct {
	Text       string
	OrderIndex string
	Answers    []AnswerInput
}

// ResultInput is the raw admin form for a result.
type ResultInput struct {
	Title       string
	Description string
	MinScore    string
	MaxScore    string
	ImageURL    string
}

const seedTimeout = 30 * time.Second

// AdminService implements quiz authoring.
type AdminService struct {
	store QuizStore
	now   func() time.Time
	seed  singleflight.Group
}

func NewAdminService(store QuizStore) *AdminService {
	return &AdminService{store: store, now: time.Now}
}

func (s *AdminService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := s.store.ListQuizzes(ctx)
	if err != nil {
		return nil, domain.Persistence(err)
	}
	return quizzes, nil
}

func (s *AdminService) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	quiz, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, domain.Persistence(err)
	}
	sortQuestions(quiz.Questions)
	return quiz, nil
}

func (s *AdminService) CreateQuiz(ctx context.Context, in QuizInput) (domain.Quiz, error) {
	quiz, err := in.toQuiz()
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz.CreatedAt = s.now().UTC()
	if err := s.store.CreateQuiz(ctx, &quiz); err != nil {
		return domain.Quiz{}, domain.Persistence(err)
	}
	return quiz, nil
}

func (s *AdminService) UpdateQuiz(ctx context.Context, quizID int64, in QuizInput) (domain.Quiz, error) {
	quiz, err := in.toQuiz()
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz.ID = quizID
	if err := s.store.UpdateQuiz(ctx, &quiz); err != nil {
		return domain.Quiz{}, domain.Persistence(err)
	}
	return quiz, nil
}

func (s *AdminService) DeleteQuiz(ctx context.Context, quizID int64) error {
	return domain.Persistence(s.store.DeleteQuiz(ctx, quizID))
}

func (s *AdminService) GetQuestion(ctx context.Context, questionID int64) (domain.Question, error) {
	question, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return domain.Question{}, domain.Persistence(err)
	}
	return question, nil
}

func (s *AdminService) CreateQuestion(ctx context.Context, quizID int64, in QuestionInput) (domain.Question, error) {
	question, err := in.toQuestion()
	if err != nil {
		return domain.Question{}, err
	}
	question.QuizID = quizID
	if err := s.store.CreateQuestion(ctx, &question); err != nil {
		return domain.Question{}, domain.Persistence(err)
	}
	return question, nil
}

// UpdateQuestion rewrites the question and replaces its answers with the submitted list.
func (s *AdminService) UpdateQuestion(ctx context.Context, questionID int64, in QuestionInput) (domain.Question, error) {
	current, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return domain.Question{}, domain.Persistence(err)
	}
	question, err := in.toQuestion()
	if err != nil {
		return domain.Question{}, err
	}
	question.ID = current.ID
	question.QuizID = current.QuizID
	if err := s.store.UpdateQuestion(ctx, &question); err != nil {
		return domain.Question{}, domain.Persistence(err)
	}
	return question, nil
}

// DeleteQuestion removes a question and its answers, returning the owning quiz id.
func (s *AdminService) DeleteQuestion(ctx context.Context, questionID int64) (int64, error) {
	question, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return 0, domain.Persistence(err)
	}
	if err := s.store.DeleteQuestion(ctx, questionID); err != nil {
		return question.QuizID, domain.Persistence(err)
	}
	return question.QuizID, nil
}

func (s *AdminService) GetResult(ctx context.Context, resultID int64) (domain.Result, error) {
	result, err := s.store.GetResult(ctx, resultID)
	if err != nil {
		return domain.Result{}, domain.Persistence(err)
	}
	return result, nil
}

func (s *AdminService) CreateResult(ctx context.Context, quizID int64, in ResultInput) (domain.Result, error) {
	result, err := in.toResult()
	if err != nil {
		return domain.Result{}, err
	}
	result.QuizID = quizID
	if err := s.store.CreateResult(ctx, &result); err != nil {
		return domain.Result{}, domain.Persistence(err)
	}
	return result, nil
}

func (s *AdminService) UpdateResult(ctx context.Context, resultID int64, in ResultInput) (domain.Result, error) {
	current, err := s.store.GetResult(ctx, resultID)
	if err != nil {
		return domain.Result{}, domain.Persistence(err)
	}
	result, err := in.toResult()
	if err != nil {
		return domain.Result{}, err
	}
	result.ID = current.ID
	result.QuizID = current.QuizID
	if err := s.store.UpdateResult(ctx, &result); err != nil {
		return domain.Result{}, domain.Persistence(err)
	}
	return result, nil
}

// DeleteResult removes a result, returning the owning quiz id.
func (s *AdminService) DeleteResult(ctx context.Context, resultID int64) (int64, error) {
	result, err := s.store.GetResult(ctx, resultID)
	if err != nil {
		return 0, domain.Persistence(err)
	}
	if err := s.store.DeleteResult(ctx, resultID); err != nil {
		return result.QuizID, domain.Persistence(err)
	}
	return result.QuizID, nil
}

// SeedSampleData wipes the store and inserts the sample quiz. Concurrent callers
// share one run, which is detached from the first caller's cancellation.
func (s *AdminService) SeedSampleData(ctx context.Context) error {
	_, err, _ := s.seed.Do("sample", func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), seedTimeout)
		defer cancel()
		return nil, s.store.Reset(runCtx, []domain.Quiz{SampleQuiz(s.now().UTC())})
	})
	return domain.Persistence(err)
}

func (in QuizInput) toQuiz() (domain.Quiz, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Quiz{}, domain.Validation("quiz title is required")
	}
	return domain.Quiz{Title: title, Description: strings.TrimSpace(in.Description)}, nil
}

func (in QuestionInput) toQuestion() (domain.Question, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return domain.Question{}, domain.Validation("question text is required")
	}
	order, err := parseInt(in.OrderIndex, 0, "order index")
	if err != nil {
		return domain.Question{}, err
	}

	answers := make([]domain.Answer, 0, len(in.Answers))
	for _, a := range in.Answers {
		answerText := strings.TrimSpace(a.Text)
		if answerText == "" {
			continue
		}
		score, err := strconv.Atoi(strings.TrimSpace(a.Score))
		if err != nil {
			return domain.Question{}, domain.Validation("score for answer " + strconv.Quote(answerText) + " must be an integer")
		}
		answers = append(answers, domain.Answer{Text: answerText, Score: score})
	}
	return domain.Question{Text: text, OrderIndex: order, Answers: answers}, nil
}

func (in ResultInput) toResult() (domain.Result, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Result{}, domain.Validation("result title is required")
	}
	minScore, err := strconv.Atoi(strings.TrimSpace(in.MinScore))
	if err != nil {
		return domain.Result{}, domain.Validation("min score must be an integer")
	}
	maxScore, err := strconv.Atoi(strings.TrimSpace(in.MaxScore))
	if err != nil {
		return domain.Result{}, domain.Validation("max score must be an integer")
	}
	if minScore > maxScore {
		return domain.Result{}, domain.Validation("min score must not exceed max score")
	}
	return domain.Result{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		MinScore:    minScore,
		MaxScore:    maxScore,
		ImageURL:    strings.TrimSpace(in.ImageURL),
	}, nil
}

func parseInt(raw string, fallback int, field string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Validation(field + " must be an integer")
	}
	return v, nil
}
