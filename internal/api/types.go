package api

import "time"

// Status represents the lifecycle of a lecture on the processing service.
type Status string

const (
	StatusUploading  Status = "uploading"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether no further transitions can occur. Unknown
// status strings are carried verbatim and treated as non-terminal so
// polling keeps the snapshot fresh rather than freezing on them.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Active reports whether the lecture still needs polling.
func (s Status) Active() bool {
	return !s.IsTerminal()
}

// User identifies an account on the service.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Credentials is the register/login response pair.
type Credentials struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Lecture is the summary projection returned by upload and list calls.
// Progress is only meaningful while Status is non-terminal; ErrorMessage is
// populated only for failed lectures.
type Lecture struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Status       Status     `json:"status"`
	Progress     int        `json:"progress"`
	Duration     *int       `json:"duration,omitempty"`
	UploadedAt   time.Time  `json:"uploaded_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// LectureStatus is the lightweight poll projection.
type LectureStatus struct {
	ID           string `json:"id"`
	Status       Status `json:"status"`
	Progress     int    `json:"progress"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// TranscriptSegment is one time-stamped slice of the transcript.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the full transcription with ordered segments.
type Transcript struct {
	FullText string              `json:"full_text"`
	Segments []TranscriptSegment `json:"segments"`
	Language string              `json:"language,omitempty"`
}

// Flashcard is one question/answer study card.
type Flashcard struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Order    int    `json:"order"`
}

// MCQ is one multiple-choice quiz question.
type MCQ struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
	Order        int      `json:"order"`
}

// Resource is one linked study resource.
type Resource struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Topic        string `json:"topic,omitempty"`
}

// LectureDetail is the full record. Study payload fields are populated only
// once the lecture has completed.
type LectureDetail struct {
	Lecture
	Transcript  *Transcript `json:"transcript,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	KeyConcepts []string    `json:"key_concepts,omitempty"`
	Flashcards  []Flashcard `json:"flashcards,omitempty"`
	MCQs        []MCQ       `json:"mcqs,omitempty"`
	Resources   []Resource  `json:"resources,omitempty"`
}

// QuizAnswerDetail is the per-question grading outcome.
type QuizAnswerDetail struct {
	QuestionIndex int    `json:"question_index"`
	YourAnswer    int    `json:"your_answer"`
	CorrectAnswer int    `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation"`
}

// QuizResult is the grading outcome of one submitted attempt.
type QuizResult struct {
	Score      int                `json:"score"`
	Total      int                `json:"total"`
	Percentage float64            `json:"percentage"`
	Details    []QuizAnswerDetail `json:"details"`
}
