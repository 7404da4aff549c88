package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quiz-outcome-service/internal/domain"
)

// Store is an in-memory implementation of app.QuizStore and app.QuizReader.
// It enforces the same parent/child rules as the Postgres schema.
type Store struct {
	mu sync.RWMutex

	quizzes   map[int64]domain.Quiz
	questions map[int64]domain.Question
	answers   map[int64]domain.Answer
	results   map[int64]domain.Result

	lastQuizID, lastQuestionID, lastAnswerID, lastResultID int64
}

func NewStore() *Store {
	s := &Store{}
	s.clear()
	return s
}

func (s *Store) clear() {
	s.quizzes = make(map[int64]domain.Quiz)
	s.questions = make(map[int64]domain.Question)
	s.answers = make(map[int64]domain.Answer)
	s.results = make(map[int64]domain.Result)
	s.lastQuizID, s.lastQuestionID, s.lastAnswerID, s.lastResultID = 0, 0, 0, 0
}

func (s *Store) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quizzes := make([]domain.Quiz, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		quizzes = append(quizzes, q)
	}
	sort.Slice(quizzes, func(i, j int) bool {
		if !quizzes[i].CreatedAt.Equal(quizzes[j].CreatedAt) {
			return quizzes[i].CreatedAt.Before(quizzes[j].CreatedAt)
		}
		return quizzes[i].ID < quizzes[j].ID
	})
	return quizzes, nil
}

func (s *Store) GetQuiz(_ context.Context, quizID int64) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quizGraphLocked(quizID)
}

// LoadQuiz satisfies app.QuizReader.
func (s *Store) LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	return s.GetQuiz(ctx, quizID)
}

func (s *Store) CountAnswerPairs(_ context.Context, pairs domain.Submission) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for questionID, answerID := range pairs {
		if a, ok := s.answers[answerID]; ok && a.QuestionID == questionID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateQuiz(_ context.Context, quiz *domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertQuizLocked(quiz)
	return nil
}

func (s *Store) UpdateQuiz(_ context.Context, quiz *domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.quizzes[quiz.ID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	current.Title = quiz.Title
	current.Description = quiz.Description
	s.quizzes[quiz.ID] = current
	quiz.CreatedAt = current.CreatedAt
	return nil
}

func (s *Store) DeleteQuiz(_ context.Context, quizID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	for id, q := range s.questions {
		if q.QuizID == quizID {
			s.deleteQuestionLocked(id)
		}
	}
	for id, r := range s.results {
		if r.QuizID == quizID {
			delete(s.results, id)
		}
	}
	delete(s.quizzes, quizID)
	return nil
}

func (s *Store) GetQuestion(_ context.Context, questionID int64) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.questions[questionID]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	q.Answers = s.answersLocked(questionID)
	return q, nil
}

func (s *Store) CreateQuestion(_ context.Context, question *domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[question.QuizID]; !ok {
		return domain.ErrQuizNotFound
	}
	s.insertQuestionLocked(question)
	return nil
}

func (s *Store) UpdateQuestion(_ context.Context, question *domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.questions[question.ID]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	current.Text = question.Text
	current.OrderIndex = question.OrderIndex
	s.questions[question.ID] = current

	for id, a := range s.answers {
		if a.QuestionID == question.ID {
			delete(s.answers, id)
		}
	}
	s.insertAnswersLocked(question.ID, question.Answers)
	question.QuizID = current.QuizID
	return nil
}

func (s *Store) DeleteQuestion(_ context.Context, questionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.questions[questionID]; !ok {
		return domain.ErrQuestionNotFound
	}
	s.deleteQuestionLocked(questionID)
	return nil
}

func (s *Store) GetResult(_ context.Context, resultID int64) (domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.results[resultID]
	if !ok {
		return domain.Result{}, domain.ErrResultNotFound
	}
	return r, nil
}

func (s *Store) CreateResult(_ context.Context, result *domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[result.QuizID]; !ok {
		return domain.ErrQuizNotFound
	}
	s.insertResultLocked(result)
	return nil
}

func (s *Store) UpdateResult(_ context.Context, result *domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.results[result.ID]
	if !ok {
		return domain.ErrResultNotFound
	}
	result.QuizID = current.QuizID
	s.results[result.ID] = *result
	return nil
}

func (s *Store) DeleteResult(_ context.Context, resultID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.results[resultID]; !ok {
		return domain.ErrResultNotFound
	}
	delete(s.results, resultID)
	return nil
}

// Reset empties the store, restarts id sequences and inserts the seed quizzes.
func (s *Store) Reset(_ context.Context, seed []domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clear()
	for i := range seed {
		quiz := seed[i]
		if quiz.CreatedAt.IsZero() {
			quiz.CreatedAt = time.Now().UTC()
		}
		s.insertQuizLocked(&quiz)
		for j := range quiz.Questions {
			q := quiz.Questions[j]
			q.QuizID = quiz.ID
			s.insertQuestionLocked(&q)
		}
		for j := range quiz.Results {
			r := quiz.Results[j]
			r.QuizID = quiz.ID
			s.insertResultLocked(&r)
		}
	}
	return nil
}

func (s *Store) insertQuizLocked(quiz *domain.Quiz) {
	s.lastQuizID++
	quiz.ID = s.lastQuizID
	s.quizzes[quiz.ID] = domain.Quiz{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		CreatedAt:   quiz.CreatedAt,
	}
}

func (s *Store) insertQuestionLocked(question *domain.Question) {
	s.lastQuestionID++
	question.ID = s.lastQuestionID
	stored := *question
	stored.Answers = nil
	s.questions[question.ID] = stored
	s.insertAnswersLocked(question.ID, question.Answers)
}

func (s *Store) insertAnswersLocked(questionID int64, answers []domain.Answer) {
	for i := range answers {
		s.lastAnswerID++
		answers[i].ID = s.lastAnswerID
		answers[i].QuestionID = questionID
		s.answers[answers[i].ID] = answers[i]
	}
}

func (s *Store) insertResultLocked(result *domain.Result) {
	s.lastResultID++
	result.ID = s.lastResultID
	s.results[result.ID] = *result
}

func (s *Store) deleteQuestionLocked(questionID int64) {
	for id, a := range s.answers {
		if a.QuestionID == questionID {
			delete(s.answers, id)
		}
	}
	delete(s.questions, questionID)
}

func (s *Store) quizGraphLocked(quizID int64) (domain.Quiz, error) {
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}

	for _, q := range s.questions {
		if q.QuizID == quizID {
			q.Answers = s.answersLocked(q.ID)
			quiz.Questions = append(quiz.Questions, q)
		}
	}
	sort.Slice(quiz.Questions, func(i, j int) bool {
		a, b := quiz.Questions[i], quiz.Questions[j]
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		return a.ID < b.ID
	})

	for _, r := range s.results {
		if r.QuizID == quizID {
			quiz.Results = append(quiz.Results, r)
		}
	}
	sort.Slice(quiz.Results, func(i, j int) bool { return quiz.Results[i].ID < quiz.Results[j].ID })
	return quiz, nil
}

func (s *Store) answersLocked(questionID int64) []domain.Answer {
	var answers []domain.Answer
	for _, a := range s.answers {
		if a.QuestionID == questionID {
			answers = append(answers, a)
		}
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].ID < answers[j].ID })
	return answers
}
