package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"quiz-outcome-service/internal/domain"
)

const answerFieldPrefix = "question_"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	quizzes, err := s.quizzes.ListQuizzes(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "index", view{"Quizzes": quizzes})
}

// handleShowQuiz keeps the old quiz URL working.
func (s *Server) handleShowQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	s.redirect(w, r, startURL(id))
}

func (s *Server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	quiz, err := s.quizzes.StartQuiz(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "quiz", view{"Quiz": quiz})
}

func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	back := startURL(id)

	submission, err := parseSubmission(r)
	if err != nil {
		s.fail(w, r, err, back)
		return
	}
	outcome, err := s.quizzes.Submit(r.Context(), id, submission)
	if err != nil {
		s.fail(w, r, err, back)
		return
	}
	s.render(w, r, http.StatusOK, "result", view{
		"Result": outcome.Result,
		"Score":  outcome.Score,
		"QuizID": outcome.QuizID,
	})
}

// handleCreateSampleData wipes every table and loads the sample quiz.
// It is unauthenticated, matching the development workflow it serves.
func (s *Server) handleCreateSampleData(w http.ResponseWriter, r *http.Request) {
	s.log.WithField("remote", r.RemoteAddr).Warn("resetting database with sample data")
	if err := s.admin.SeedSampleData(r.Context()); err != nil {
		s.fail(w, r, err, "/admin")
		return
	}
	s.flash(r, "success", "Sample data created!")
	s.redirect(w, r, "/admin")
}

// parseSubmission reads question_<id> = <answer id> form fields.
func parseSubmission(r *http.Request) (domain.Submission, error) {
	if err := r.ParseForm(); err != nil {
		return nil, domain.Validation("could not read the submitted answers")
	}
	submission := domain.Submission{}
	for key, values := range r.PostForm {
		if !strings.HasPrefix(key, answerFieldPrefix) || len(values) == 0 {
			continue
		}
		questionID, err := strconv.ParseInt(strings.TrimPrefix(key, answerFieldPrefix), 10, 64)
		if err != nil {
			return nil, domain.Validation("invalid question in submission")
		}
		answerID, err := strconv.ParseInt(strings.TrimSpace(values[0]), 10, 64)
		if err != nil {
			return nil, domain.Validation("invalid answer in submission")
		}
		submission[questionID] = answerID
	}
	return submission, nil
}

// pathID parses the {id} route variable, answering 404 when it does not fit an int64.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.notFound(w, r)
		return 0, false
	}
	return id, true
}

func startURL(quizID int64) string {
	return fmt.Sprintf("/quiz/%d/start", quizID)
}
