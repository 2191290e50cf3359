package quiz

import (
	"testing"

	"lectureiq/internal/api"
)

func TestAttemptSelectAndComplete(t *testing.T) {
	attempt := NewAttempt(3)
	if attempt.Complete() {
		t.Fatal("fresh attempt should be incomplete")
	}

	if err := attempt.Select(0, 2); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := attempt.Select(1, 0); err != nil {
		t.Fatalf("select: %v", err)
	}
	if attempt.Answered() != 2 {
		t.Fatalf("answered: got %d want 2", attempt.Answered())
	}

	if _, err := attempt.Answers(); err == nil {
		t.Fatal("expected error for incomplete attempt")
	}

	if err := attempt.Select(2, 3); err != nil {
		t.Fatalf("select: %v", err)
	}
	answers, err := attempt.Answers()
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	want := []int{2, 0, 3}
	for i, got := range answers {
		if got != want[i] {
			t.Fatalf("answer %d: got %d want %d", i, got, want[i])
		}
	}
}

func TestAttemptReplacesSelection(t *testing.T) {
	attempt := NewAttempt(1)
	if err := attempt.Select(0, 1); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := attempt.Select(0, 3); err != nil {
		t.Fatalf("reselect: %v", err)
	}
	answers, err := attempt.Answers()
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	if answers[0] != 3 {
		t.Fatalf("expected latest selection, got %d", answers[0])
	}
}

func TestAttemptRejectsOutOfRange(t *testing.T) {
	attempt := NewAttempt(2)
	if err := attempt.Select(2, 0); err == nil {
		t.Fatal("expected question range error")
	}
	if err := attempt.Select(-1, 0); err == nil {
		t.Fatal("expected question range error")
	}
	if err := attempt.Select(0, 4); err == nil {
		t.Fatal("expected option range error")
	}
}

func TestAttemptEmptyQuiz(t *testing.T) {
	attempt := NewAttempt(0)
	if _, err := attempt.Answers(); err == nil {
		t.Fatal("expected error for quiz without questions")
	}
}

func TestGradeScoreAndPercentage(t *testing.T) {
	mcqs := []api.MCQ{
		{Question: "q0", CorrectIndex: 1, Explanation: "e0"},
		{Question: "q1", CorrectIndex: 2, Explanation: "e1"},
		{Question: "q2", CorrectIndex: 0, Explanation: "e2"},
	}

	result, err := Grade(mcqs, []int{1, 0, 0})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if result.Score != 2 || result.Total != 3 {
		t.Fatalf("score: got %d/%d want 2/3", result.Score, result.Total)
	}
	if result.Percentage != 66.7 {
		t.Fatalf("percentage: got %v want 66.7", result.Percentage)
	}
	if len(result.Details) != 3 {
		t.Fatalf("details: got %d want 3", len(result.Details))
	}
	if !result.Details[0].IsCorrect || result.Details[1].IsCorrect {
		t.Fatalf("per-question correctness wrong: %+v", result.Details)
	}
	if result.Details[1].CorrectAnswer != 2 || result.Details[1].YourAnswer != 0 {
		t.Fatalf("detail answers wrong: %+v", result.Details[1])
	}
	if result.Details[2].Explanation != "e2" {
		t.Fatalf("explanation missing: %+v", result.Details[2])
	}
}

func TestGradeCountMismatch(t *testing.T) {
	mcqs := []api.MCQ{{CorrectIndex: 0}, {CorrectIndex: 1}}
	if _, err := Grade(mcqs, []int{0}); err == nil {
		t.Fatal("expected mismatch error")
	}
}
