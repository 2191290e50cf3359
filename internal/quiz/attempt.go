package quiz

import (
	"fmt"
	"math"

	"lectureiq/internal/api"
)

// MaxOptionIndex is the highest selectable option per question.
const MaxOptionIndex = 3

// Attempt tracks selected options for one quiz, keyed by question index.
type Attempt struct {
	total    int
	selected map[int]int
}

// NewAttempt starts an attempt over the given number of questions.
func NewAttempt(total int) *Attempt {
	return &Attempt{total: total, selected: make(map[int]int, total)}
}

// Total returns the question count the attempt must cover.
func (a *Attempt) Total() int { return a.total }

// Select records the chosen option for a question, replacing any earlier
// choice for the same question.
func (a *Attempt) Select(question, option int) error {
	if question < 0 || question >= a.total {
		return fmt.Errorf("question %d out of range (have %d questions)", question, a.total)
	}
	if option < 0 || option > MaxOptionIndex {
		return fmt.Errorf("option %d out of range for question %d", option, question)
	}
	a.selected[question] = option
	return nil
}

// Answered reports how many questions have a selection.
func (a *Attempt) Answered() int { return len(a.selected) }

// Complete reports whether every question has a selection.
func (a *Attempt) Complete() bool { return len(a.selected) == a.total }

// Answers returns the ordered answer slice for submission. It fails while
// the attempt is incomplete so a short batch never reaches the wire.
func (a *Attempt) Answers() ([]int, error) {
	if a.total == 0 {
		return nil, fmt.Errorf("quiz has no questions")
	}
	if !a.Complete() {
		return nil, fmt.Errorf("quiz incomplete: answered %d of %d questions", len(a.selected), a.total)
	}
	answers := make([]int, a.total)
	for question, option := range a.selected {
		answers[question] = option
	}
	return answers, nil
}

// Grade computes the result the service would return for the given answers.
// Score counts exact matches against each question's correct option;
// percentage is score/total x 100 rounded to one decimal place.
func Grade(mcqs []api.MCQ, answers []int) (*api.QuizResult, error) {
	if len(answers) != len(mcqs) {
		return nil, fmt.Errorf("expected %d answers, received %d", len(mcqs), len(answers))
	}

	result := &api.QuizResult{Total: len(mcqs)}
	for i, mcq := range mcqs {
		correct := answers[i] == mcq.CorrectIndex
		if correct {
			result.Score++
		}
		result.Details = append(result.Details, api.QuizAnswerDetail{
			QuestionIndex: i,
			YourAnswer:    answers[i],
			CorrectAnswer: mcq.CorrectIndex,
			IsCorrect:     correct,
			Explanation:   mcq.Explanation,
		})
	}
	if result.Total > 0 {
		result.Percentage = math.Round(float64(result.Score)/float64(result.Total)*1000) / 10
	}
	return result, nil
}
