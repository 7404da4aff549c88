package http

import (
	"fmt"
	"net/http"

	"quiz-outcome-service/internal/app"
	"quiz-outcome-service/internal/domain"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	quizzes, err := s.admin.ListQuizzes(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "admin", view{"Quizzes": quizzes})
}

func (s *Server) handleNewQuizForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "admin_quiz_form", view{"Quiz": nil})
}

func (s *Server) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r, "/admin/quiz/new") {
		return
	}
	quiz, err := s.admin.CreateQuiz(r.Context(), quizInput(r))
	if err != nil {
		s.fail(w, r, err, "/admin/quiz/new")
		return
	}
	s.flash(r, "success", "Quiz created! Now add questions and results.")
	s.redirect(w, r, quizURL(quiz.ID, "edit"))
}

func (s *Server) handleEditQuizForm(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	quiz, err := s.admin.GetQuiz(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "admin_quiz_form", view{"Quiz": &quiz})
}

func (s *Server) handleUpdateQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	back := quizURL(id, "edit")
	if !s.parseForm(w, r, back) {
		return
	}
	if _, err := s.admin.UpdateQuiz(r.Context(), id, quizInput(r)); err != nil {
		s.fail(w, r, err, back)
		return
	}
	s.flash(r, "success", "Quiz updated!")
	s.redirect(w, r, "/admin")
}

func (s *Server) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.admin.DeleteQuiz(r.Context(), id); err != nil {
		s.fail(w, r, err, "/admin")
		return
	}
	s.flash(r, "success", "Quiz deleted!")
	s.redirect(w, r, "/admin")
}

func (s *Server) handleQuizQuestions(w http.ResponseWriter, r *http.Request) {
	s.renderQuizPage(w, r, "admin_questions")
}

func (s *Server) handleQuizResults(w http.ResponseWriter, r *http.Request) {
	s.renderQuizPage(w, r, "admin_results")
}

func (s *Server) handleNewQuestionForm(w http.ResponseWriter, r *http.Request) {
	s.renderQuizPage(w, r, "admin_question_form")
}

func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	quizID, ok := s.pathID(w, r)
	if !ok {
		return
	}
	back := quizURL(quizID, "question/new")
	if !s.parseForm(w, r, back) {
		return
	}
	if _, err := s.admin.CreateQuestion(r.Context(), quizID, questionInput(r)); err != nil {
		s.fail(w, r, err, back)
		return
	}
	s.flash(r, "success", "Question created!")
	s.redirect(w, r, quizURL(quizID, "questions"))
}

func (s *Server) handleEditQuestionForm(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	question, err := s.admin.GetQuestion(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	quiz, err := s.admin.GetQuiz(r.Context(), question.QuizID)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "admin_question_form", view{"Quiz": quiz, "Question": &question})
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	back := fmt.Sprintf("/admin/question/%d/edit", id)
	if !s.parseForm(w, r, back) {
		return
	}
	question, err := s.admin.UpdateQuestion(r.Context(), id, questionInput(r))
	if err != nil {
		s.fail(w, r, err, back)
		return
	}
	s.flash(r, "success", "Question updated!")
	s.redirect(w, r, quizURL(question.QuizID, "questions"))
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	quizID, err := s.admin.DeleteQuestion(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, quizURL(quizID, "questions"))
		return
	}
	s.flash(r, "success", "Question deleted!")
	s.redirect(w, r, quizURL(quizID, "questions"))
}

func (s *Server) handleNewResultForm(w http.ResponseWriter, r *http.Request) {
	s.renderQuizPage(w, r, "admin_result_form")
}

func (s *Server) handleCreateResult(w http.ResponseWriter, r *http.Request) {
	quizID, ok := s.pathID(w, r)
	if !ok {
		return
	}
	back := quizURL(quizID, "result/new")
	if !s.parseForm(w, r, back) {
		return
	}
	if _, err := s.admin.CreateResult(r.Context(), quizID, resultInput(r)); err != nil {
		s.fail(w, r, err, back)
		return
	}
	s.flash(r, "success", "Result created!")
	s.redirect(w, r, quizURL(quizID, "results"))
}

func (s *Server) handleEditResultForm(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	result, err := s.admin.GetResult(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	quiz, err := s.admin.GetQuiz(r.Context(), result.QuizID)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "admin_result_form", view{"Quiz": quiz, "Result": &result})
}

func (s *Server) handleUpdateResult(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	back := fmt.Sprintf("/admin/result/%d/edit", id)
	if !s.parseForm(w, r, back) {
		return
	}
	result, err := s.admin.UpdateResult(r.Context(), id, resultInput(r))
	if err != nil {
		s.fail(w, r, err, back)
		return
	}
	s.flash(r, "success", "Result updated!")
	s.redirect(w, r, quizURL(result.QuizID, "results"))
}

func (s *Server) handleDeleteResult(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	quizID, err := s.admin.DeleteResult(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, quizURL(quizID, "results"))
		return
	}
	s.flash(r, "success", "Result deleted!")
	s.redirect(w, r, quizURL(quizID, "results"))
}

// renderQuizPage renders an admin page scoped to the quiz in the path.
func (s *Server) renderQuizPage(w http.ResponseWriter, r *http.Request, page string) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	quiz, err := s.admin.GetQuiz(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, page, view{"Quiz": quiz})
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request, back string) bool {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, domain.Validation("could not read the submitted form"), back)
		return false
	}
	return true
}

func quizInput(r *http.Request) app.QuizInput {
	return app.QuizInput{
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
	}
}

// questionInput zips the parallel answer_text[] and answer_score[] lists.
func questionInput(r *http.Request) app.QuestionInput {
	texts := r.PostForm["answer_text[]"]
	scores := r.PostForm["answer_score[]"]
	answers := make([]app.AnswerInput, len(texts))
	for i, text := range texts {
		answers[i].Text = text
		if i < len(scores) {
			answers[i].Score = scores[i]
		}
	}
	return app.QuestionInput{
		Text:       r.PostForm.Get("text"),
		OrderIndex: r.PostForm.Get("order_index"),
		Answers:    answers,
	}
}

func resultInput(r *http.Request) app.ResultInput {
	return app.ResultInput{
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
		MinScore:    r.PostForm.Get("min_score"),
		MaxScore:    r.PostForm.Get("max_score"),
		ImageURL:    r.PostForm.Get("image_url"),
	}
}

func quizURL(quizID int64, suffix string) string {
	return fmt.Sprintf("/admin/quiz/%d/%s", quizID, suffix)
}
