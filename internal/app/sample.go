package app

import (
	"time"

	"quiz-outcome-service/internal/domain"
)

// SampleQuiz is the quiz inserted by the sample-data seeder.
func SampleQuiz(now time.Time) domain.Quiz {
	return domain.Quiz{
		Title:       "What kind of marketer are you?",
		Description: "Take the test and find out what kind of marketing mind you have",
		CreatedAt:   now,
		Questions: []domain.Question{
			{
				Text:       "How do you approach planning a marketing campaign?",
				OrderIndex: 1,
				Answers: []domain.Answer{
					{Text: "I analyse the data carefully and draw up a detailed plan", Score: 5},
					{Text: "I set an overall strategy and work out details as I go", Score: 3},
					{Text: "I act on intuition and improvise", Score: 1},
					{Text: "I copy successful cases from competitors", Score: 2},
				},
			},
			{
				Text:       "What matters most to you in an ad creative?",
				OrderIndex: 2,
				Answers: []domain.Answer{
					{Text: "Creativity and originality", Score: 1},
					{Text: "Measurable results", Score: 5},
					{Text: "Viral potential", Score: 3},
					{Text: "Staying on brand", Score: 4},
				},
			},
		},
		Results: []domain.Result{
			{
				MinScore:    6,
				MaxScore:    10,
				Title:       "📊 Analyst",
				Description: "You are a born analyst!",
				ImageURL:    "/static/images/analyst.png",
			},
			{
				MinScore:    3,
				MaxScore:    5,
				Title:       "🎨 Creative",
				Description: "You are a creative soul!",
				ImageURL:    "/static/images/creative.png",
			},
		},
	}
}
