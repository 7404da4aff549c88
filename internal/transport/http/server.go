package http

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"quiz-outcome-service/internal/app"
)

// Options wires the HTTP server to the application services.
type Options struct {
	Quizzes    *app.QuizService
	Admin      *app.AdminService
	Sessions   *app.SessionService
	SecretKey  string
	SessionTTL time.Duration
	Logger     *logrus.Logger
}

// Server serves the public quiz pages and the admin panel.
type Server struct {
	quizzes  *app.QuizService
	admin    *app.AdminService
	sessions *app.SessionService
	cookies  *cookieCodec
	pages    *renderer
	logger   *logrus.Logger
	log      logrus.FieldLogger
}

func NewServer(opts Options) (*Server, error) {
	pages, err := newRenderer()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{
		quizzes:  opts.Quizzes,
		admin:    opts.Admin,
		sessions: opts.Sessions,
		cookies:  newCookieCodec(opts.SecretKey, opts.SessionTTL),
		pages:    pages,
		logger:   logger,
		log:      logger.WithField("component", "http"),
	}, nil
}

// Handler builds the router with session, recovery and access-log middleware.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = s.withSession(http.HandlerFunc(s.notFound))
	r.Use(s.recoverer, s.withSession)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/quiz/{id:[0-9]+}", s.handleShowQuiz).Methods(http.MethodGet)
	r.HandleFunc("/quiz/{id:[0-9]+}/start", s.handleStartQuiz).Methods(http.MethodGet)
	r.HandleFunc("/quiz/{id:[0-9]+}/submit", s.handleSubmitQuiz).Methods(http.MethodPost)
	r.HandleFunc("/create-sample-data", s.handleCreateSampleData).Methods(http.MethodGet)

	r.HandleFunc("/admin/login", s.handleLoginForm).Methods(http.MethodGet)
	r.HandleFunc("/admin/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/admin/logout", s.handleLogout).Methods(http.MethodGet)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(s.requireAdmin)
	admin.HandleFunc("", s.handleDashboard).Methods(http.MethodGet)

	admin.HandleFunc("/quiz/new", s.handleNewQuizForm).Methods(http.MethodGet)
	admin.HandleFunc("/quiz/new", s.handleCreateQuiz).Methods(http.MethodPost)
	admin.HandleFunc("/quiz/{id:[0-9]+}/edit", s.handleEditQuizForm).Methods(http.MethodGet)
	admin.HandleFunc("/quiz/{id:[0-9]+}/edit", s.handleUpdateQuiz).Methods(http.MethodPost)
	admin.HandleFunc("/quiz/{id:[0-9]+}/delete", s.handleDeleteQuiz).Methods(http.MethodPost)

	admin.HandleFunc("/quiz/{id:[0-9]+}/questions", s.handleQuizQuestions).Methods(http.MethodGet)
	admin.HandleFunc("/quiz/{id:[0-9]+}/question/new", s.handleNewQuestionForm).Methods(http.MethodGet)
	admin.HandleFunc("/quiz/{id:[0-9]+}/question/new", s.handleCreateQuestion).Methods(http.MethodPost)
	admin.HandleFunc("/question/{id:[0-9]+}/edit", s.handleEditQuestionForm).Methods(http.MethodGet)
	admin.HandleFunc("/question/{id:[0-9]+}/edit", s.handleUpdateQuestion).Methods(http.MethodPost)
	admin.HandleFunc("/question/{id:[0-9]+}/delete", s.handleDeleteQuestion).Methods(http.MethodPost)

	admin.HandleFunc("/quiz/{id:[0-9]+}/results", s.handleQuizResults).Methods(http.MethodGet)
	admin.HandleFunc("/quiz/{id:[0-9]+}/result/new", s.handleNewResultForm).Methods(http.MethodGet)
	admin.HandleFunc("/quiz/{id:[0-9]+}/result/new", s.handleCreateResult).Methods(http.MethodPost)
	admin.HandleFunc("/result/{id:[0-9]+}/edit", s.handleEditResultForm).Methods(http.MethodGet)
	admin.HandleFunc("/result/{id:[0-9]+}/edit", s.handleUpdateResult).Methods(http.MethodPost)
	admin.HandleFunc("/result/{id:[0-9]+}/delete", s.handleDeleteResult).Methods(http.MethodPost)

	return handlers.CombinedLoggingHandler(s.logger.Writer(), r)
}

// requireAdmin sends visitors without an admin session to the login page.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := s.sessions.IsAdmin(r.Context(), sessionID(r))
		if err != nil {
			s.log.WithError(err).Warn("load session")
		}
		if !ok {
			// Cookieless visitors get no stored session until they act.
			if !freshSession(r) {
				s.flash(r, "error", "please log in to access the admin panel")
			}
			s.redirect(w, r, "/admin/login")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.WithFields(logrus.Fields{
					"panic": rec,
					"path":  r.URL.Path,
					"stack": string(debug.Stack()),
				}).Error("panic serving request")
				s.serverError(w, r)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
