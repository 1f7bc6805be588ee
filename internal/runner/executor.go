package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	apperrors "blazehammer/internal/errors"
	"blazehammer/internal/placeholder"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Executor performs exactly one HTTP request per Do call.
type Executor struct {
	Client *http.Client
	Engine *placeholder.Engine
	Cfg    Config
}

// Do expands the configured documents, issues the request and times it. Any HTTP
// response is a success, whatever its status; transport errors are failures. There
// are no retries.
func (e *Executor) Do(ctx context.Context) Outcome {
	var out Outcome

	out.Headers = e.expandHeaders()

	var (
		body        io.Reader
		contentType string
	)

	if e.Cfg.Method == MethodPost {
		out.Payload = e.Engine.Expand(e.Cfg.Payload)

		b, ct, err := e.encodeBody(out.Payload)
		if err != nil {
			out.Err = err.Error()
			return out
		}

		body, contentType = b, ct
	}

	req, err := http.NewRequestWithContext(ctx, e.Cfg.Method, e.Cfg.URL, body)
	if err != nil {
		out.Err = err.Error()
		return out
	}

	for k, v := range out.Headers {
		req.Header.Set(k, v)
	}

	// a user supplied type may refine JSON; form and multipart bodies keep their own
	if contentType != "" && (req.Header.Get("Content-Type") == "" || contentType != "application/json") {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()

	resp, err := e.Client.Do(req)
	if err != nil {
		out.Elapsed = time.Since(start)
		out.Err = err.Error()

		return out
	}

	payload, err := io.ReadAll(resp.Body)
	resp.Body.Close()

	out.Elapsed = time.Since(start)

	if err != nil {
		out.Err = err.Error()
		return out
	}

	out.Success = true
	out.StatusCode = resp.StatusCode
	out.Response = &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   payload,
	}

	return out
}

func (e *Executor) expandHeaders() map[string]string {
	if len(e.Cfg.Headers) == 0 {
		return map[string]string{}
	}

	expanded := e.Engine.ExpandMap(e.Cfg.Headers)

	headers := make(map[string]string, len(expanded))
	for k, v := range expanded {
		headers[k] = stringify(v)
	}

	return headers
}

func (e *Executor) encodeBody(payload any) (io.Reader, string, error) {
	if len(e.Cfg.Attachments) > 0 {
		return e.encodeMultipart(payload)
	}

	switch e.Cfg.PostType {
	case PostForm:
		values, err := formValues(payload)
		if err != nil {
			return nil, "", err
		}

		return bytes.NewBufferString(values.Encode()), "application/x-www-form-urlencoded", nil
	default:
		if payload == nil {
			payload = map[string]any{}
		}

		b, err := json.Marshal(payload)
		if err != nil {
			return nil, "", fmt.Errorf("encode json body: %w", err)
		}

		return bytes.NewReader(b), "application/json", nil
	}
}

func (e *Executor) encodeMultipart(payload any) (io.Reader, string, error) {
	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	values, err := formValues(payload)
	if err != nil {
		return nil, "", err
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, v := range values[k] {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
	}

	for _, a := range e.Cfg.Attachments {
		if err := writeFile(w, a); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, a Attachment) error {
	f, err := os.Open(a.Path)
	if err != nil {
		return fmt.Errorf("attachment %s: %w", a.Field, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile(a.Field, filepath.Base(a.Path))
	if err != nil {
		return err
	}

	_, err = io.Copy(part, f)

	return err
}

// formValues flattens a top-level object into form fields. Lists repeat the key.
func formValues(payload any) (url.Values, error) {
	values := url.Values{}

	switch doc := payload.(type) {
	case nil:
		return values, nil
	case map[string]any:
		for k, v := range doc {
			if list, ok := v.([]any); ok {
				for _, item := range list {
					values.Add(k, stringify(item))
				}

				continue
			}

			values.Set(k, stringify(v))
		}

		return values, nil
	default:
		return nil, fmt.Errorf("%w: form bodies need a JSON object, got %T", apperrors.ErrUnsupportedBody, payload)
	}
}

// stringify renders a document value the way it appears on the wire: strings as is,
// everything else as compact JSON.
func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(b)
}
