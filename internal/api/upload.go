package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaxUploadBytes is the service's upload size ceiling, enforced client-side
// so oversized files never start a wasted transfer.
const MaxUploadBytes = 100 << 20

// allowedAudioExtensions is the fixed set of accepted container types.
var allowedAudioExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".ogg":  {},
	".flac": {},
}

const maxTitleRunes = 200

// UploadOptions tunes a single upload call.
type UploadOptions struct {
	// Title labels the lecture. Empty falls back to the file name.
	Title string
	// Progress, when set, receives transfer percentages 0-100.
	Progress func(percent int)
}

// Upload validates and transfers an audio file, returning the created
// lecture summary. Validation failures are reported before any request is
// issued.
func (c *Client) Upload(ctx context.Context, path string, opts UploadOptions) (*Lecture, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := allowedAudioExtensions[ext]; !ok {
		return nil, fmt.Errorf("%w: file type %q not supported (allowed: %s)",
			ErrValidation, ext, strings.Join(AllowedExtensions(), ", "))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: inspect file: %w", ErrValidation, err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrValidation)
	}
	if info.Size() > MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d MB limit",
			ErrFileTooLarge, info.Size(), MaxUploadBytes>>20)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open file: %w", ErrValidation, err)
	}
	defer file.Close()

	title := normalizeTitle(opts.Title, path)

	pipeReader, pipeWriter := io.Pipe()
	form := multipart.NewWriter(pipeWriter)
	go func() {
		err := writeUploadForm(form, file, filepath.Base(path), title, info.Size(), opts.Progress)
		if closeErr := form.Close(); err == nil {
			err = closeErr
		}
		pipeWriter.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/api/lectures/upload", nil, pipeReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var lecture Lecture
	if err := c.send(req, &lecture); err != nil {
		return nil, err
	}
	if opts.Progress != nil {
		opts.Progress(100)
	}
	return &lecture, nil
}

func writeUploadForm(form *multipart.Writer, file io.Reader, filename, title string, total int64, progress func(int)) error {
	if err := form.WriteField("title", title); err != nil {
		return err
	}
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	reader := io.Reader(file)
	if progress != nil {
		reader = &progressReader{reader: file, total: total, report: progress}
	}
	if _, err := io.Copy(part, reader); err != nil {
		return err
	}
	return nil
}

// progressReader reports cumulative transfer percentages as the multipart
// body drains the source file.
type progressReader struct {
	reader io.Reader
	total  int64
	sent   int64
	last   int
	report func(int)
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 && r.total > 0 {
		r.sent += int64(n)
		percent := int(r.sent * 100 / r.total)
		if percent > 100 {
			percent = 100
		}
		if percent != r.last {
			r.last = percent
			r.report(percent)
		}
	}
	return n, err
}

// normalizeTitle applies the service's title defaulting on the client: file
// base name without extension, trimmed to 200 runes, never empty.
func normalizeTitle(title, path string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if runes := []rune(title); len(runes) > maxTitleRunes {
		title = string(runes[:maxTitleRunes])
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "Untitled Lecture"
	}
	return title
}

// AllowedExtensions returns the accepted audio extensions in sorted order.
func AllowedExtensions() []string {
	exts := make([]string, 0, len(allowedAudioExtensions))
	for ext := range allowedAudioExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
