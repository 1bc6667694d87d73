package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const maxResponseSize = 8 << 20

// ErrConnection marks a request that never got an HTTP response.
var ErrConnection = errors.New("could not connect to the server")

// ServerError is a non-2xx answer from the backend.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

// Request describes one backend call. A non-nil Form is sent as
// multipart/form-data, otherwise a non-nil Body is sent as JSON.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Form   *Form
}

// Result is the uniform outcome of Send. HTTP failures never surface as Go
// errors from Send; inspect OK or call Err.
type Result struct {
	OK      bool
	Status  int
	Payload json.RawMessage
	Message string

	err error
}

// Err returns nil on success, a *ServerError for a non-2xx status, an error
// wrapping ErrConnection on transport failure, or the context error when the
// caller gave up.
func (r Result) Err() error {
	if r.err != nil {
		return r.err
	}
	if !r.OK {
		return &ServerError{Status: r.Status, Message: r.Message}
	}
	return nil
}

// Decode unmarshals the success payload into v.
func (r Result) Decode(v any) error {
	if err := json.Unmarshal(r.Payload, v); err != nil {
		return fmt.Errorf("decoding %d response: %w", r.Status, err)
	}
	return nil
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Send performs a single attempt; it never retries.
func (c *Client) Send(ctx context.Context, req Request) Result {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return Result{err: fmt.Errorf("encoding %s %s: %w", req.Method, req.Path, err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return Result{err: fmt.Errorf("building %s %s: %w", req.Method, req.Path, err)}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID(ctx))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{err: ctxErr}
		}
		return Result{err: fmt.Errorf("%w: %v", ErrConnection, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{err: ctxErr}
		}
		return Result{err: fmt.Errorf("%w: reading response: %v", ErrConnection, err)}
	}

	res := Result{
		OK:      resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status:  resp.StatusCode,
		Payload: data,
		Message: messageOf(data),
	}
	if !res.OK && res.Message == "" {
		res.Message = http.StatusText(resp.StatusCode)
	}
	return res
}

// requestID carries the page request's id through to the backend; calls made
// outside a page request get a fresh one.
func requestID(ctx context.Context) string {
	if id := chimw.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func encodeBody(req Request) (io.Reader, string, error) {
	if req.Form != nil {
		return req.Form.encode()
	}
	if req.Body == nil {
		return nil, "", nil
	}

	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

func messageOf(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// File is an upload carried by a Form.
type File struct {
	Name string
	Data []byte
}

// ContentType sniffs the file's bytes.
func (f File) ContentType() string {
	return mimetype.Detect(f.Data).String()
}

func (f File) IsImage() bool {
	return len(f.Data) > 0 && strings.HasPrefix(mimetype.Detect(f.Data).String(), "image/")
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field string
	file  File
}

// Form is a multipart body; fields keep insertion order.
type Form struct {
	fields []formField
	files  []formFile
}

func NewForm() *Form {
	return &Form{}
}

func (f *Form) Set(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

func (f *Form) Attach(field string, file File) *Form {
	f.files = append(f.files, formFile{field: field, file: file})
	return f
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (f *Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", err
		}
	}

	for _, ff := range f.files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(ff.field), quoteEscaper.Replace(ff.file.Name)))
		header.Set("Content-Type", ff.file.ContentType())

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(ff.file.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
