package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"quiz-outcome-service/internal/app"
	"quiz-outcome-service/internal/domain"
	"quiz-outcome-service/internal/infra/memory"
)

func TestCreateQuizValidatesTitle(t *testing.T) {
	ctx := context.Background()
	admin := app.NewAdminService(memory.NewStore())

	_, err := admin.CreateQuiz(ctx, app.QuizInput{Title: "   "})
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	quizzes, _ := admin.ListQuizzes(ctx)
	if len(quizzes) != 0 {
		t.Fatalf("expected no quiz persisted, got %d", len(quizzes))
	}

	quiz, err := admin.CreateQuiz(ctx, app.QuizInput{Title: " Personality ", Description: "About you"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.ID == 0 || quiz.Title != "Personality" || quiz.CreatedAt.IsZero() {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}
}

func TestUpdateQuestionReplacesAnswersSkippingBlank(t *testing.T) {
	ctx := context.Background()
	admin, quiz := newAdminWithQuiz(t)

	question, err := admin.CreateQuestion(ctx, quiz.ID, app.QuestionInput{
		Text: "Old",
		Answers: []app.AnswerInput{
			{Text: "A", Score: "1"},
			{Text: "B", Score: "2"},
			{Text: "C", Score: "3"},
		},
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	_, err = admin.UpdateQuestion(ctx, question.ID, app.QuestionInput{
		Text:       "New",
		OrderIndex: "4",
		Answers: []app.AnswerInput{
			{Text: "X", Score: "3"},
			{Text: "", Score: "9"},
			{Text: "Y", Score: "1"},
		},
	})
	if err != nil {
		t.Fatalf("update question: %v", err)
	}

	got, err := admin.GetQuestion(ctx, question.ID)
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if got.Text != "New" || got.OrderIndex != 4 {
		t.Fatalf("unexpected question: %+v", got)
	}
	if len(got.Answers) != 2 {
		t.Fatalf("expected exactly two answers, got %+v", got.Answers)
	}
	if got.Answers[0].Text != "X" || got.Answers[0].Score != 3 || got.Answers[1].Text != "Y" || got.Answers[1].Score != 1 {
		t.Fatalf("unexpected answers: %+v", got.Answers)
	}
}

func TestQuestionValidationLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	admin, quiz := newAdminWithQuiz(t)

	question, err := admin.CreateQuestion(ctx, quiz.ID, app.QuestionInput{
		Text:    "Keep me",
		Answers: []app.AnswerInput{{Text: "A", Score: "1"}},
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	cases := map[string]app.QuestionInput{
		"empty text":      {Text: "", Answers: []app.AnswerInput{{Text: "A", Score: "1"}}},
		"bad score":       {Text: "T", Answers: []app.AnswerInput{{Text: "A", Score: "lots"}}},
		"missing score":   {Text: "T", Answers: []app.AnswerInput{{Text: "A"}}},
		"bad order index": {Text: "T", OrderIndex: "first"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := admin.UpdateQuestion(ctx, question.ID, in); domain.KindOf(err) != domain.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			got, _ := admin.GetQuestion(ctx, question.ID)
			if got.Text != "Keep me" || len(got.Answers) != 1 {
				t.Fatalf("question changed after failed update: %+v", got)
			}
		})
	}
}

func TestCreateQuestionForMissingQuiz(t *testing.T) {
	ctx := context.Background()
	admin := app.NewAdminService(memory.NewStore())

	_, err := admin.CreateQuestion(ctx, 404, app.QuestionInput{Text: "Orphan"})
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestResultValidation(t *testing.T) {
	ctx := context.Background()
	admin, quiz := newAdminWithQuiz(t)

	cases := map[string]app.ResultInput{
		"empty title": {Title: "", MinScore: "0", MaxScore: "1"},
		"bad min":     {Title: "R", MinScore: "x", MaxScore: "1"},
		"bad max":     {Title: "R", MinScore: "0", MaxScore: ""},
		"inverted":    {Title: "R", MinScore: "5", MaxScore: "1"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := admin.CreateResult(ctx, quiz.ID, in); domain.KindOf(err) != domain.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	result, err := admin.CreateResult(ctx, quiz.ID, app.ResultInput{Title: "Calm", MinScore: "-3", MaxScore: "3", ImageURL: "/img.png"})
	if err != nil {
		t.Fatalf("create result: %v", err)
	}
	updated, err := admin.UpdateResult(ctx, result.ID, app.ResultInput{Title: "Calmer", MinScore: "-5", MaxScore: "5"})
	if err != nil {
		t.Fatalf("update result: %v", err)
	}
	if updated.QuizID != quiz.ID || updated.MinScore != -5 || updated.ImageURL != "" {
		t.Fatalf("unexpected updated result: %+v", updated)
	}

	quizID, err := admin.DeleteResult(ctx, result.ID)
	if err != nil || quizID != quiz.ID {
		t.Fatalf("delete result: quiz=%d err=%v", quizID, err)
	}
	if _, err := admin.GetResult(ctx, result.ID); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected result gone, got %v", err)
	}
}

func TestDeleteQuizCascades(t *testing.T) {
	ctx := context.Background()
	admin, quiz := newAdminWithQuiz(t)

	question, _ := admin.CreateQuestion(ctx, quiz.ID, app.QuestionInput{
		Text:    "Q",
		Answers: []app.AnswerInput{{Text: "A", Score: "1"}},
	})
	result, _ := admin.CreateResult(ctx, quiz.ID, app.ResultInput{Title: "R", MinScore: "0", MaxScore: "1"})

	if err := admin.DeleteQuiz(ctx, quiz.ID); err != nil {
		t.Fatalf("delete quiz: %v", err)
	}
	if _, err := admin.GetQuestion(ctx, question.ID); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected question removed, got %v", err)
	}
	if _, err := admin.GetResult(ctx, result.ID); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected result removed, got %v", err)
	}
	if err := admin.DeleteQuiz(ctx, quiz.ID); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestDeleteQuestionReturnsQuiz(t *testing.T) {
	ctx := context.Background()
	admin, quiz := newAdminWithQuiz(t)

	question, _ := admin.CreateQuestion(ctx, quiz.ID, app.QuestionInput{Text: "Q"})
	quizID, err := admin.DeleteQuestion(ctx, question.ID)
	if err != nil || quizID != quiz.ID {
		t.Fatalf("delete question: quiz=%d err=%v", quizID, err)
	}
}

func TestSeedSampleDataReplacesEverything(t *testing.T) {
	ctx := context.Background()
	admin, _ := newAdminWithQuiz(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := admin.SeedSampleData(ctx); err != nil {
				t.Errorf("seed: %v", err)
			}
		}()
	}
	wg.Wait()

	quizzes, err := admin.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 1 {
		t.Fatalf("expected only the sample quiz, got %+v", quizzes)
	}
	sample, err := admin.GetQuiz(ctx, quizzes[0].ID)
	if err != nil {
		t.Fatalf("get sample: %v", err)
	}
	if len(sample.Questions) != 2 || len(sample.Results) != 2 {
		t.Fatalf("unexpected sample graph: %+v", sample)
	}
	for _, q := range sample.Questions {
		if len(q.Answers) != 4 {
			t.Fatalf("expected four answers per question, got %+v", q)
		}
	}
}

// cancelAwareStore fails Reset when its context is already done.
type cancelAwareStore struct {
	*memory.Store
}

func (s cancelAwareStore) Reset(ctx context.Context, seed []domain.Quiz) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.Reset(ctx, seed)
}

func TestSeedSampleDataSurvivesCallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := cancelAwareStore{Store: memory.NewStore()}
	admin := app.NewAdminService(store)
	if err := admin.SeedSampleData(ctx); err != nil {
		t.Fatalf("seed with cancelled caller: %v", err)
	}
	quizzes, _ := store.ListQuizzes(context.Background())
	if len(quizzes) != 1 {
		t.Fatalf("expected sample quiz seeded, got %+v", quizzes)
	}
}

func newAdminWithQuiz(t *testing.T) (*app.AdminService, domain.Quiz) {
	t.Helper()
	admin := app.NewAdminService(memory.NewStore())
	quiz, err := admin.CreateQuiz(context.Background(), app.QuizInput{Title: "Personality"})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	return admin, quiz
}
