package runner

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "blazehammer/internal/errors"

	"github.com/go-playground/validator/v10"
)

const (
	MethodGet  = "GET"
	MethodPost = "POST"

	PostJSON = "json"
	PostForm = "form"

	DefaultTimeout = 30 * time.Second
)

// Attachment is a file sent as a multipart part under Field.
type Attachment struct {
	Field string `validate:"required"`
	Path  string `validate:"required"`
}

// ParseAttachment reads the field=path form used on the command line.
func ParseAttachment(s string) (Attachment, error) {
	field, path, ok := strings.Cut(s, "=")
	if !ok || field == "" || path == "" {
		return Attachment{}, fmt.Errorf("%w: %q, want field=path", apperrors.ErrInvalidAttach, s)
	}

	return Attachment{Field: field, Path: path}, nil
}

// PrintFlags select which artifacts of successful requests are printed.
type PrintFlags struct {
	Payload  bool
	Headers  bool
	Response bool
}

func (p PrintFlags) Any() bool {
	return p.Payload || p.Headers || p.Response
}

type Config struct {
	URL         string        `validate:"required,url"`
	Requests    int           `validate:"gte=0"`
	Concurrency int           `validate:"gte=1"`
	Delay       time.Duration `validate:"gte=0"`
	Method      string        `validate:"oneof=GET POST"`
	PostType    string        `validate:"oneof=json form"`
	Timeout     time.Duration `validate:"gt=0"`

	// Payload and Headers are raw documents; placeholders are expanded per request.
	Payload any
	Headers map[string]any

	Attachments []Attachment `validate:"dive"`
	Print       PrintFlags
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the bounds of every field. Form and multipart POST bodies need a
// payload that is absent or a JSON object.
func (c Config) Validate() error {
	if c.URL == "" {
		return apperrors.ErrMissingURL
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidConfig, err)
	}

	if c.Method == MethodPost && (c.PostType == PostForm || len(c.Attachments) > 0) {
		switch c.Payload.(type) {
		case nil, map[string]any:
		default:
			return fmt.Errorf("%w: form and multipart bodies need a JSON object payload, got %T",
				apperrors.ErrInvalidConfig, c.Payload)
		}
	}

	return nil
}

// Response is the raw answer of a successful request. It is only kept until the
// request has been printed.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Outcome is the result of one dispatched request.
type Outcome struct {
	Success bool

	// StatusCode is set only when Success is true.
	StatusCode int
	Elapsed    time.Duration

	// Err is set only when Success is false.
	Err string

	// Payload and Headers after placeholder expansion.
	Payload  any
	Headers  map[string]string
	Response *Response
}

// Record is the retained per-request row used for exports and the live view.
type Record struct {
	Timestamp time.Time
	Elapsed   time.Duration
	Status    int
	Success   bool
	Bytes     int64
	Err       string
}

// StatsSnapshot is sent over the update channel.
type StatsSnapshot struct {
	Total        int
	Completed    int64
	Success      int
	Failure      int
	Bytes        int64
	Inflight     int64
	PeakInflight int64
	Elapsed      time.Duration

	MeanMs float64
	P99Ms  float64
}

// StatsUpdateChan carries a snapshot on every progress tick and one final snapshot
// when the run is over. Snapshots are dropped while the channel is full.
type StatsUpdateChan chan StatsSnapshot
