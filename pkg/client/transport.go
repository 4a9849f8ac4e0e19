package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"maps"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Transport performs one authenticated call against the API and returns the
// decoded JSON body. Any non-success response surfaces as *TransportError.
type Transport interface {
	Request(ctx context.Context, r *Request) (json.RawMessage, error)
}

type Request struct {
	Path      string
	Operation string

	Query url.Values
	Form  url.Values

	// File is streamed as the multipart part named "file".
	File *File
}

type File struct {
	Name        string
	ContentType string

	Reader io.Reader
}

// Method reports the HTTP verb used for the request.
func (r *Request) Method() string {
	if r.Form != nil || r.File != nil {
		return http.MethodPost
	}

	return http.MethodGet
}

var _ Transport = &HTTPTransport{}

type HTTPTransport struct {
	client *http.Client

	url   string
	token string
}

// NewHTTPTransport returns a transport for the API at url. A nil client
// falls back to http.DefaultClient.
func NewHTTPTransport(url, token string, client *http.Client) *HTTPTransport {
	if url == "" {
		url = DefaultURL
	}

	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPTransport{
		client: client,

		url:   url,
		token: token,
	}
}

func (t *HTTPTransport) Request(ctx context.Context, r *Request) (json.RawMessage, error) {
	endpoint, err := url.JoinPath(t.url, r.Path, r.Operation)

	if err != nil {
		return nil, err
	}

	u, err := url.Parse(endpoint)

	if err != nil {
		return nil, err
	}

	method := r.Method()

	var body io.Reader
	var contentType string

	var upload *multipartUpload

	switch {
	case r.File != nil:
		upload = t.newMultipartUpload(r)

		body = upload.reader
		contentType = upload.writer.FormDataContentType()

	case r.Form != nil:
		form := cloneValues(r.Form)

		if t.token != "" {
			form.Set("token", t.token)
		}

		body = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"

	default:
		query := cloneValues(r.Query)

		if t.token != "" {
			query.Set("token", t.token)
		}

		u.RawQuery = query.Encode()
	}

	if method == http.MethodPost && len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)

	if err != nil {
		if upload != nil {
			upload.reader.CloseWithError(err)
		}

		return nil, err
	}

	if upload != nil {
		go upload.write()
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	slog.DebugContext(ctx, "crocodoc request", "method", method, "path", u.Path)

	resp, err := t.client.Do(req)

	if err != nil {
		return nil, &TransportError{Code: "request_failed", Err: err}
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Code: "response_read_failed", Err: err}
	}

	slog.DebugContext(ctx, "crocodoc response", "path", u.Path, "status", resp.StatusCode, "size", len(data))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, convertError(resp.StatusCode, data)
	}

	if !json.Valid(data) {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Code:       "server_response_not_valid_json",
			Response:   data,
		}
	}

	if code := responseError(data); code != "" {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Code:       code,
			Response:   data,
		}
	}

	return json.RawMessage(data), nil
}

// multipartUpload streams a multipart body through a pipe. The writer side
// runs in its own goroutine once the request exists.
type multipartUpload struct {
	reader *io.PipeReader
	pipe   *io.PipeWriter
	writer *multipart.Writer

	token string
	form  url.Values
	file  File
}

func (u *multipartUpload) write() {
	u.pipe.CloseWithError(writeMultipart(u.writer, u.token, u.form, u.file))
}

func (t *HTTPTransport) newMultipartUpload(r *Request) *multipartUpload {
	pr, pw := io.Pipe()

	file := *r.File

	if file.ContentType == "" {
		file.ContentType = "application/octet-stream"
	}

	if file.Name == "" {
		file.Name = uuid.New().String()

		if ext, _ := mime.ExtensionsByType(file.ContentType); len(ext) > 0 {
			file.Name += ext[0]
		}
	}

	return &multipartUpload{
		reader: pr,
		pipe:   pw,
		writer: multipart.NewWriter(pw),

		token: t.token,
		form:  r.Form,
		file:  file,
	}
}

func writeMultipart(w *multipart.Writer, token string, form url.Values, file File) error {
	if token != "" {
		if err := w.WriteField("token", token); err != nil {
			return err
		}
	}

	for key, values := range form {
		for _, val := range values {
			if err := w.WriteField(key, val); err != nil {
				return err
			}
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", multipart.FileContentDisposition("file", file.Name))
	h.Set("Content-Type", file.ContentType)

	part, err := w.CreatePart(h)

	if err != nil {
		return err
	}

	if _, err := io.Copy(part, file.Reader); err != nil {
		return err
	}

	return w.Close()
}

func cloneValues(v url.Values) url.Values {
	if v == nil {
		return url.Values{}
	}

	return maps.Clone(v)
}

// responseError returns the error code of a top-level JSON object carrying
// an "error" key, which the API sends with a success status.
func responseError(data []byte) string {
	data = bytes.TrimSpace(data)

	if len(data) == 0 || data[0] != '{' {
		return ""
	}

	var result struct {
		Error *string `json:"error"`
	}

	if err := json.Unmarshal(data, &result); err != nil || result.Error == nil {
		return ""
	}

	if *result.Error == "" {
		return "server_error"
	}

	return *result.Error
}

func convertError(status int, data []byte) error {
	err := &TransportError{
		StatusCode: status,
		Code:       http.StatusText(status),
		Response:   data,
	}

	if code := responseError(data); code != "" {
		err.Code = code
	} else if text := strings.TrimSpace(string(data)); text != "" && len(text) < 256 {
		err.Code = text
	}

	return err
}
