package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	// DefaultPageSize mirrors the service's list default.
	DefaultPageSize = 20
	// MaxPageSize is the ceiling the service clamps limit to.
	MaxPageSize = 50
	// quiz answers address one of four options per question.
	maxOptionIndex = 3
)

// List returns one page of lecture summaries, newest first.
func (c *Client) List(ctx context.Context, page, limit int) ([]Lecture, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	query := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
	var lectures []Lecture
	if err := c.doJSON(ctx, http.MethodGet, "/api/lectures", query, nil, &lectures); err != nil {
		return nil, err
	}
	return lectures, nil
}

// Get returns the full record for one lecture.
func (c *Client) Get(ctx context.Context, id string) (*LectureDetail, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: lecture id is required", ErrValidation)
	}
	var detail LectureDetail
	if err := c.doJSON(ctx, http.MethodGet, "/api/lectures/"+url.PathEscape(id), nil, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Status returns the lightweight poll projection for one lecture.
func (c *Client) Status(ctx context.Context, id string) (*LectureStatus, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: lecture id is required", ErrValidation)
	}
	var status LectureStatus
	if err := c.doJSON(ctx, http.MethodGet, "/api/lectures/"+url.PathEscape(id)+"/status", nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Delete removes a lecture and its stored audio.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: lecture id is required", ErrValidation)
	}
	return c.doJSON(ctx, http.MethodDelete, "/api/lectures/"+url.PathEscape(id), nil, nil, nil)
}

type quizSubmitRequest struct {
	Answers []int `json:"answers"`
}

// SubmitQuiz grades one batch of ordered answers. Answer completeness
// against the lecture's question count is the caller's responsibility (the
// quiz attempt model enforces it); option range is checked here so an
// out-of-range index never reaches the wire.
func (c *Client) SubmitQuiz(ctx context.Context, id string, answers []int) (*QuizResult, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: lecture id is required", ErrValidation)
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: no answers provided", ErrValidation)
	}
	for i, answer := range answers {
		if answer < 0 || answer > maxOptionIndex {
			return nil, fmt.Errorf("%w: answer %d out of range: %d", ErrValidation, i, answer)
		}
	}

	var result QuizResult
	body := quizSubmitRequest{Answers: answers}
	if err := c.doJSON(ctx, http.MethodPost, "/api/lectures/"+url.PathEscape(id)+"/quiz/submit", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
