package testsupport

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lectureiq/internal/api"
)

// ProgressStep is one scripted snapshot a fake lecture advances through.
// ErrorMessage is emitted only on failed steps.
type ProgressStep struct {
	Status       api.Status
	Progress     int
	ErrorMessage string
}

// DefaultScript walks a lecture from upload to completion in four polls.
func DefaultScript() []ProgressStep {
	return []ProgressStep{
		{Status: api.StatusUploading, Progress: 0},
		{Status: api.StatusProcessing, Progress: 35},
		{Status: api.StatusProcessing, Progress: 70},
		{Status: api.StatusCompleted, Progress: 100},
	}
}

// FailingScript walks a lecture into the terminal failure state, reporting
// the given message on the failed snapshot.
func FailingScript(message string) []ProgressStep {
	if message == "" {
		message = "transcription failed"
	}
	return []ProgressStep{
		{Status: api.StatusUploading, Progress: 0},
		{Status: api.StatusProcessing, Progress: 40},
		{Status: api.StatusFailed, Progress: 40, ErrorMessage: message},
	}
}

type fakeLecture struct {
	detail api.LectureDetail
	script []ProgressStep
	step   int
	owner  string
}

// Server is an in-memory stand-in for the lecture processing service.
type Server struct {
	httpServer *httptest.Server

	mu       sync.Mutex
	users    map[string]userRecord // by email
	tokens   map[string]string    // token -> user id
	lectures map[string]*fakeLecture
	order    []string // insertion order, oldest first

	hits map[string]int
}

type userRecord struct {
	user     api.User
	password string
}

// NewServer starts the fake service. Callers own shutdown via Close.
func NewServer() *Server {
	s := &Server{
		users:    make(map[string]userRecord),
		tokens:   make(map[string]string),
		lectures: make(map[string]*fakeLecture),
		hits:     make(map[string]int),
	}
	s.httpServer = httptest.NewServer(http.HandlerFunc(s.route))
	return s
}

// URL returns the base endpoint clients should dial.
func (s *Server) URL() string { return s.httpServer.URL }

// Close shuts the fake service down.
func (s *Server) Close() { s.httpServer.Close() }

// Hits reports how many requests arrived for an operation key such as
// "GET /api/lectures/{id}" (ids are collapsed).
func (s *Server) Hits(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

// TotalHits reports all requests served.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

// RevokeToken simulates server-side credential invalidation mid-session.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// RevokeAllTokens invalidates every live session at once.
func (s *Server) RevokeAllTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

// SeedUser registers an account directly and returns a live token.
func (s *Server) SeedUser(name, email, password string) (api.User, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := api.User{ID: uuid.NewString(), Email: email, Name: name}
	s.users[email] = userRecord{user: user, password: password}
	token := uuid.NewString()
	s.tokens[token] = user.ID
	return user, token
}

// SeedLecture installs a lecture with the given script for a user id.
func (s *Server) SeedLecture(ownerID, title string, script []ProgressStep) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLectureLocked(ownerID, title, script)
}

// SetScript replaces the script for a lecture and rewinds it to the first
// step.
func (s *Server) SetScript(id string, script []ProgressStep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lec := s.lectures[id]
	if lec == nil || len(script) == 0 {
		return
	}
	lec.script = script
	lec.step = 0
	lec.detail.Status = script[0].Status
	lec.detail.Progress = script[0].Progress
	lec.detail.ErrorMessage = ""
}

func (s *Server) addLectureLocked(ownerID, title string, script []ProgressStep) string {
	if len(script) == 0 {
		script = DefaultScript()
	}
	id := uuid.NewString()
	lec := &fakeLecture{
		owner:  ownerID,
		script: script,
		detail: api.LectureDetail{
			Lecture: api.Lecture{
				ID:         id,
				Title:      title,
				Status:     script[0].Status,
				Progress:   script[0].Progress,
				UploadedAt: time.Now().UTC(),
			},
		},
	}
	s.lectures[id] = lec
	s.order = append(s.order, id)
	return id
}

// advanceLocked steps the lecture's script forward one poll.
func (s *Server) advanceLocked(lec *fakeLecture) {
	if lec.detail.Status.IsTerminal() {
		return
	}
	if lec.step < len(lec.script)-1 {
		lec.step++
	}
	step := lec.script[lec.step]
	lec.detail.Status = step.Status
	lec.detail.Progress = step.Progress
	switch step.Status {
	case api.StatusCompleted:
		now := time.Now().UTC()
		lec.detail.ProcessedAt = &now
		duration := 600
		lec.detail.Duration = &duration
		fillStudyPayload(&lec.detail)
	case api.StatusFailed:
		message := step.ErrorMessage
		if message == "" {
			message = "transcription failed"
		}
		lec.detail.ErrorMessage = message
	}
}

// fillStudyPayload populates the terminal-success result fields.
func fillStudyPayload(detail *api.LectureDetail) {
	detail.Notes = "# " + detail.Title + "\n\nKey points covered in this lecture."
	detail.KeyConcepts = []string{"entropy", "enthalpy"}
	detail.Flashcards = []api.Flashcard{
		{ID: uuid.NewString(), Question: "What is entropy?", Answer: "A measure of disorder.", Order: 0},
		{ID: uuid.NewString(), Question: "State the first law.", Answer: "Energy is conserved.", Order: 1},
	}
	detail.MCQs = []api.MCQ{
		{ID: uuid.NewString(), Question: "q0", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 1, Explanation: "e0", Order: 0},
		{ID: uuid.NewString(), Question: "q1", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 2, Explanation: "e1", Order: 1},
		{ID: uuid.NewString(), Question: "q2", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 0, Explanation: "e2", Order: 2},
	}
	detail.Resources = []api.Resource{
		{ID: uuid.NewString(), Type: "video", Title: "Thermodynamics basics", URL: "https://example.com/v1", Topic: "entropy"},
	}
	detail.Transcript = &api.Transcript{
		FullText: "welcome to the lecture",
		Language: "en",
		Segments: []api.TranscriptSegment{
			{Start: 0, End: 4.5, Text: "welcome"},
			{Start: 4.5, End: 9.2, Text: "to the lecture"},
		},
	}
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/register":
		s.count("POST /api/auth/register")
		s.handleRegister(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
		s.count("POST /api/auth/login")
		s.handleLogin(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/lectures/upload":
		s.count("POST /api/lectures/upload")
		s.withAuth(w, r, s.handleUpload)
	case r.Method == http.MethodGet && r.URL.Path == "/api/lectures":
		s.count("GET /api/lectures")
		s.withAuth(w, r, s.handleList)
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/status") && strings.HasPrefix(r.URL.Path, "/api/lectures/"):
		s.count("GET /api/lectures/{id}/status")
		s.withAuth(w, r, s.handleStatus)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/quiz/submit"):
		s.count("POST /api/lectures/{id}/quiz/submit")
		s.withAuth(w, r, s.handleQuizSubmit)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/lectures/"):
		s.count("GET /api/lectures/{id}")
		s.withAuth(w, r, s.handleDetail)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/lectures/"):
		s.count("DELETE /api/lectures/{id}")
		s.withAuth(w, r, s.handleDelete)
	default:
		writeError(w, http.StatusNotFound, "Not found.")
	}
}

func (s *Server) count(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits[key]++
}

func (s *Server) withAuth(w http.ResponseWriter, r *http.Request, next func(http.ResponseWriter, *http.Request, string)) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		writeError(w, http.StatusUnauthorized, "Could not validate credentials.")
		return
	}
	token := strings.TrimPrefix(auth, "Bearer ")
	s.mu.Lock()
	userID, ok := s.tokens[token]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not validate credentials.")
		return
	}
	next(w, r, userID)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "Invalid registration payload.")
		return
	}
	if len(body.Password) < 8 {
		writeError(w, http.StatusUnprocessableEntity, "Password too short.")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[body.Email]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Email already registered.")
		return
	}
	user := api.User{ID: uuid.NewString(), Email: body.Email, Name: body.Name}
	s.users[body.Email] = userRecord{user: user, password: body.Password}
	token := uuid.NewString()
	s.tokens[token] = user.ID
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, api.Credentials{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid login payload.")
		return
	}

	s.mu.Lock()
	record, ok := s.users[body.Email]
	s.mu.Unlock()
	if !ok || record.password != body.Password {
		writeError(w, http.StatusUnauthorized, "Incorrect email or password.")
		return
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = record.user.ID
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, api.Credentials{Token: token, User: record.user})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, userID string) {
	if err := r.ParseMultipartForm(api.MaxUploadBytes + 1); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart payload.")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unreadable file.")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "Uploaded file is empty.")
		return
	}
	if len(data) > api.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum allowed size is 100 MB.")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		base := header.Filename
		title = strings.TrimSuffix(base, path.Ext(base))
	}

	s.mu.Lock()
	id := s.addLectureLocked(userID, title, nil)
	lec := s.lectures[id]
	summary := lec.detail.Lecture
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, summary)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, userID string) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	s.mu.Lock()
	var mine []api.Lecture
	for _, id := range s.order {
		lec := s.lectures[id]
		if lec == nil || lec.owner != userID {
			continue
		}
		s.advanceLocked(lec)
		mine = append(mine, lec.detail.Lecture)
	}
	s.mu.Unlock()

	// Newest first.
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].UploadedAt.After(mine[j].UploadedAt)
	})

	start := (page - 1) * limit
	if start > len(mine) {
		start = len(mine)
	}
	end := start + limit
	if end > len(mine) {
		end = len(mine)
	}
	writeJSON(w, http.StatusOK, mine[start:end])
}

func (s *Server) lectureFor(r *http.Request, userID, trimSuffix string) (*fakeLecture, bool) {
	id := strings.TrimPrefix(r.URL.Path, "/api/lectures/")
	id = strings.TrimSuffix(id, trimSuffix)
	lec := s.lectures[id]
	if lec == nil || lec.owner != userID {
		return nil, false
	}
	return lec, true
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request, userID string) {
	s.mu.Lock()
	lec, ok := s.lectureFor(r, userID, "")
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Lecture not found.")
		return
	}
	s.advanceLocked(lec)
	detail := lec.detail
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, userID string) {
	s.mu.Lock()
	lec, ok := s.lectureFor(r, userID, "/status")
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Lecture not found.")
		return
	}
	s.advanceLocked(lec)
	status := api.LectureStatus{
		ID:           lec.detail.ID,
		Status:       lec.detail.Status,
		Progress:     lec.detail.Progress,
		ErrorMessage: lec.detail.ErrorMessage,
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, userID string) {
	s.mu.Lock()
	lec, ok := s.lectureFor(r, userID, "")
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Lecture not found.")
		return
	}
	delete(s.lectures, lec.detail.ID)
	for i, id := range s.order {
		if id == lec.detail.ID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (s *Server) handleQuizSubmit(w http.ResponseWriter, r *http.Request, userID string) {
	var body struct {
		Answers []int `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Answers) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "Invalid quiz payload.")
		return
	}

	s.mu.Lock()
	lec, ok := s.lectureFor(r, userID, "/quiz/submit")
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Lecture not found.")
		return
	}
	if lec.detail.Status != api.StatusCompleted {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Lecture is still processing. Please wait for it to complete.")
		return
	}
	mcqs := append([]api.MCQ(nil), lec.detail.MCQs...)
	s.mu.Unlock()

	if len(body.Answers) != len(mcqs) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Expected %d answers, received %d.", len(mcqs), len(body.Answers)))
		return
	}

	result := api.QuizResult{Total: len(mcqs)}
	for i, mcq := range mcqs {
		correct := body.Answers[i] == mcq.CorrectIndex
		if correct {
			result.Score++
		}
		result.Details = append(result.Details, api.QuizAnswerDetail{
			QuestionIndex: i,
			YourAnswer:    body.Answers[i],
			CorrectAnswer: mcq.CorrectIndex,
			IsCorrect:     correct,
			Explanation:   mcq.Explanation,
		})
	}
	result.Percentage = math.Round(float64(result.Score)/float64(result.Total)*1000) / 10
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
