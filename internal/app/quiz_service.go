package app

import (
	"context"
	"sort"

	"quiz-outcome-service/internal/domain"
)

// QuizReader loads quiz content for the public flow.
type QuizReader interface {
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	// LoadQuiz returns the quiz with its questions (ordered, with answers) and results.
	LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
	// CountAnswerPairs counts the entries whose answer belongs to the named question.
	CountAnswerPairs(ctx context.Context, pairs domain.Submission) (int, error)
}

// QuizService contains the public quiz use cases.
type QuizService struct {
	quizzes QuizReader
}

func NewQuizService(quizzes QuizReader) *QuizService {
	return &QuizService{quizzes: quizzes}
}

// ListQuizzes returns every quiz. Drafts without questions or results are listed too.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := s.quizzes.ListQuizzes(ctx)
	if err != nil {
		return nil, domain.Persistence(err)
	}
	return quizzes, nil
}

// StartQuiz loads a quiz for answering, questions ordered by OrderIndex.
func (s *QuizService) StartQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	quiz, err := s.quizzes.LoadQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, domain.Persistence(err)
	}
	sortQuestions(quiz.Questions)
	return quiz, nil
}

// Submit scores a submission and resolves the matching result. The valid pairs
// must answer exactly the quiz's questions: a valid pair for a question of
// another quiz makes the submission over-complete and it is rejected.
func (s *QuizService) Submit(ctx context.Context, quizID int64, submission domain.Submission) (domain.Outcome, error) {
	quiz, err := s.quizzes.LoadQuiz(ctx, quizID)
	if err != nil {
		return domain.Outcome{}, domain.Persistence(err)
	}

	total, err := Score(quiz, submission)
	if err != nil {
		return domain.Outcome{}, err
	}
	if foreign := ForeignPairs(quiz, submission); len(foreign) > 0 {
		n, err := s.quizzes.CountAnswerPairs(ctx, foreign)
		if err != nil {
			return domain.Outcome{}, domain.Persistence(err)
		}
		if n > 0 {
			return domain.Outcome{}, domain.ErrIncompleteSubmission
		}
	}

	result, err := MatchResult(quiz.Results, total)
	if err != nil {
		return domain.Outcome{}, err
	}
	return domain.Outcome{QuizID: quiz.ID, Score: total, Result: result}, nil
}

func sortQuestions(questions []domain.Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].OrderIndex != questions[j].OrderIndex {
			return questions[i].OrderIndex < questions[j].OrderIndex
		}
		return questions[i].ID < questions[j].ID
	})
}
