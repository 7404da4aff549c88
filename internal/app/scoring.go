package app

import "quiz-outcome-service/internal/domain"

// Score sums the chosen answers of a submission. A pair only counts when the
// question belongs to the quiz and the answer belongs to that question. The
// submission must cover every question of the quiz. Pairs naming questions of
// other quizzes are checked separately, see ForeignPairs.
func Score(quiz domain.Quiz, submission domain.Submission) (int, error) {
	total := 0
	answered := 0
	for _, question := range quiz.Questions {
		answerID, ok := submission[question.ID]
		if !ok {
			continue
		}
		for _, answer := range question.Answers {
			if answer.ID == answerID {
				total += answer.Score
				answered++
				break
			}
		}
	}
	if answered != len(quiz.Questions) {
		return 0, domain.ErrIncompleteSubmission
	}
	return total, nil
}

// ForeignPairs returns the submission entries whose question is not part of quiz.
func ForeignPairs(quiz domain.Quiz, submission domain.Submission) domain.Submission {
	own := make(map[int64]struct{}, len(quiz.Questions))
	for _, q := range quiz.Questions {
		own[q.ID] = struct{}{}
	}
	var foreign domain.Submission
	for questionID, answerID := range submission {
		if _, ok := own[questionID]; ok {
			continue
		}
		if foreign == nil {
			foreign = domain.Submission{}
		}
		foreign[questionID] = answerID
	}
	return foreign
}

// MatchResult picks the result for a total score: the lowest-id result whose
// range contains it, else the one with the nearest range midpoint (lowest id on ties).
func MatchResult(results []domain.Result, total int) (domain.Result, error) {
	if len(results) == 0 {
		return domain.Result{}, domain.ErrNoResultConfigured
	}

	var containing *domain.Result
	for i := range results {
		r := &results[i]
		if r.Contains(total) && (containing == nil || r.ID < containing.ID) {
			containing = r
		}
	}
	if containing != nil {
		return *containing, nil
	}

	// Distances are compared doubled so midpoints stay integral.
	best := &results[0]
	bestDist := midpointDistance2(*best, total)
	for i := 1; i < len(results); i++ {
		r := &results[i]
		d := midpointDistance2(*r, total)
		if d < bestDist || (d == bestDist && r.ID < best.ID) {
			best, bestDist = r, d
		}
	}
	return *best, nil
}

func midpointDistance2(r domain.Result, total int) int64 {
	d := int64(r.MinScore) + int64(r.MaxScore) - 2*int64(total)
	if d < 0 {
		return -d
	}
	return d
}
