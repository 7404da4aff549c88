package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"quiz-outcome-service/internal/app"
	"quiz-outcome-service/internal/domain"
	"quiz-outcome-service/internal/infra/postgres"
	pgmigrations "quiz-outcome-service/internal/infra/postgres/migrations"
	infraredis "quiz-outcome-service/internal/infra/redis"
)

func TestSampleQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := openMigrated(t, ctx, pgURL)
	defer db.Close()
	admin := app.NewAdminService(postgres.NewStore(db))
	if err := admin.SeedSampleData(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	quizzes := app.NewQuizService(postgres.NewQuizLoader(pool))

	list, err := quizzes.ListQuizzes(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list quizzes: %+v err=%v", list, err)
	}
	quiz, err := quizzes.StartQuiz(ctx, list[0].ID)
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if len(quiz.Questions) != 2 || quiz.Questions[0].OrderIndex > quiz.Questions[1].OrderIndex {
		t.Fatalf("unexpected questions: %+v", quiz.Questions)
	}

	// first answer of each question: 5 + 1 = 6
	submission := domain.Submission{}
	for _, q := range quiz.Questions {
		submission[q.ID] = q.Answers[0].ID
	}
	outcome, err := quizzes.Submit(ctx, quiz.ID, submission)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Score != 6 || !strings.Contains(outcome.Result.Title, "Analyst") {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}

	delete(submission, quiz.Questions[1].ID)
	if _, err := quizzes.Submit(ctx, quiz.ID, submission); !errors.Is(err, domain.ErrIncompleteSubmission) {
		t.Fatalf("expected incomplete submission, got %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()
	sessions := app.NewSessionService(infraredis.NewSessionStore(redisClient, 5*time.Minute), app.Credentials{Username: "admin", Password: "pw"})
	adminID, err := sessions.Login(ctx, "browser-1", "admin", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if ok, err := sessions.IsAdmin(ctx, adminID); err != nil || !ok {
		t.Fatalf("expected admin session, ok=%v err=%v", ok, err)
	}
	if n, err := redisClient.Exists(ctx, "quiz:session:browser-1").Result(); err != nil || n != 0 {
		t.Fatalf("expected pre-login session removed, exists=%d err=%v", n, err)
	}
}

func TestAdminStorePostgres(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	db := openMigrated(t, ctx, pgURL)
	defer db.Close()
	admin := app.NewAdminService(postgres.NewStore(db))

	quiz, err := admin.CreateQuiz(ctx, app.QuizInput{Title: "Personality"})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	question, err := admin.CreateQuestion(ctx, quiz.ID, app.QuestionInput{
		Text:    "Old",
		Answers: []app.AnswerInput{{Text: "A", Score: "1"}, {Text: "B", Score: "2"}},
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	result, err := admin.CreateResult(ctx, quiz.ID, app.ResultInput{Title: "R", MinScore: "0", MaxScore: "5"})
	if err != nil {
		t.Fatalf("create result: %v", err)
	}

	if _, err := admin.UpdateQuestion(ctx, question.ID, app.QuestionInput{
		Text:    "New",
		Answers: []app.AnswerInput{{Text: "X", Score: "3"}, {Text: "", Score: "9"}, {Text: "Y", Score: "1"}},
	}); err != nil {
		t.Fatalf("update question: %v", err)
	}
	got, err := admin.GetQuestion(ctx, question.ID)
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if got.Text != "New" || len(got.Answers) != 2 || got.Answers[0].Text != "X" || got.Answers[1].Score != 1 {
		t.Fatalf("unexpected question after update: %+v", got)
	}

	if _, err := admin.CreateQuestion(ctx, quiz.ID+100, app.QuestionInput{Text: "orphan"}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found for orphan question, got %v", err)
	}

	if err := admin.DeleteQuiz(ctx, quiz.ID); err != nil {
		t.Fatalf("delete quiz: %v", err)
	}
	if _, err := admin.GetQuestion(ctx, question.ID); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected question cascade, got %v", err)
	}
	if _, err := admin.GetResult(ctx, result.ID); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected result cascade, got %v", err)
	}
	var answers int
	if err := db.NewSelect().Table("answer").ColumnExpr("count(*)").Scan(ctx, &answers); err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if answers != 0 {
		t.Fatalf("expected answers removed with their quiz, got %d", answers)
	}
}

func TestAdminStoreRollsBackFailedWrites(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	db := openMigrated(t, ctx, pgURL)
	defer db.Close()
	admin := app.NewAdminService(postgres.NewStore(db))

	quiz, err := admin.CreateQuiz(ctx, app.QuizInput{Title: "Personality"})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	question, err := admin.CreateQuestion(ctx, quiz.ID, app.QuestionInput{
		Text:       "Original",
		OrderIndex: "3",
		Answers:    []app.AnswerInput{{Text: "A", Score: "1"}, {Text: "B", Score: "2"}},
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	// answer.text is VARCHAR(255); the insert fails after the old answers were deleted.
	tooLong := strings.Repeat("x", 300)
	_, err = admin.UpdateQuestion(ctx, question.ID, app.QuestionInput{
		Text:       "Rewritten",
		OrderIndex: "9",
		Answers:    []app.AnswerInput{{Text: "ok", Score: "1"}, {Text: tooLong, Score: "2"}},
	})
	if domain.KindOf(err) != domain.KindPersistence {
		t.Fatalf("expected persistence failure, got %v", err)
	}
	got, err := admin.GetQuestion(ctx, question.ID)
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if got.Text != "Original" || got.OrderIndex != 3 {
		t.Fatalf("question row changed by failed update: %+v", got)
	}
	if len(got.Answers) != 2 || got.Answers[0].Text != "A" || got.Answers[1].Text != "B" {
		t.Fatalf("answers changed by failed update: %+v", got.Answers)
	}

	_, err = admin.CreateQuestion(ctx, quiz.ID, app.QuestionInput{
		Text:    "Half written",
		Answers: []app.AnswerInput{{Text: tooLong, Score: "1"}},
	})
	if domain.KindOf(err) != domain.KindPersistence {
		t.Fatalf("expected persistence failure, got %v", err)
	}
	var questions int
	if err := db.NewSelect().Table("question").ColumnExpr("count(*)").Where("quiz_id = ?", quiz.ID).Scan(ctx, &questions); err != nil {
		t.Fatalf("count questions: %v", err)
	}
	if questions != 1 {
		t.Fatalf("expected no orphan question row, got %d questions", questions)
	}
}

func openMigrated(t *testing.T, ctx context.Context, dsn string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
