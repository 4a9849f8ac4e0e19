package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/frusdelion/crocodoc/pkg/client"

	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	requests []*client.Request

	response string
	err      error
}

func (t *recordingTransport) Request(ctx context.Context, r *client.Request) (json.RawMessage, error) {
	t.requests = append(t.requests, r)

	if t.err != nil {
		return nil, t.err
	}

	return json.RawMessage(t.response), nil
}

func newDocuments(t *recordingTransport) *client.DocumentService {
	c := client.New("", client.WithTransport(t))
	return &c.Documents
}

func TestUploadURL(t *testing.T) {
	transport := &recordingTransport{response: `{"uuid": "8e5b0721-26c4-11df-b354-002170de47d3"}`}
	documents := newDocuments(transport)

	uuid, err := documents.UploadURL(context.Background(), "http://www.example.com/test.doc")
	require.NoError(t, err)
	require.Equal(t, "8e5b0721-26c4-11df-b354-002170de47d3", uuid)

	require.Len(t, transport.requests, 1)

	req := transport.requests[0]
	require.Equal(t, "/document/", req.Path)
	require.Equal(t, "upload", req.Operation)
	require.Equal(t, http.MethodPost, req.Method())
	require.Empty(t, req.Query)
	require.Nil(t, req.File)
	require.Equal(t, "http://www.example.com/test.doc", req.Form.Get("url"))
	require.Len(t, req.Form, 1)
}

func TestUploadFile(t *testing.T) {
	transport := &recordingTransport{response: `{"uuid": "abc"}`}
	documents := newDocuments(transport)

	reader := strings.NewReader("%PDF-1.4")

	uuid, err := documents.UploadFile(context.Background(), "test.pdf", reader)
	require.NoError(t, err)
	require.Equal(t, "abc", uuid)

	require.Len(t, transport.requests, 1)

	req := transport.requests[0]
	require.Nil(t, req.Form)
	require.NotNil(t, req.File)
	require.Equal(t, "test.pdf", req.File.Name)
	require.Same(t, reader, req.File.Reader)
}

func TestUploadHandleField(t *testing.T) {
	transport := &recordingTransport{response: `{"handle": "abc"}`}
	documents := newDocuments(transport)

	uuid, err := documents.UploadURL(context.Background(), "http://www.example.com/test.doc")
	require.NoError(t, err)
	require.Equal(t, "abc", uuid)
}

func TestUploadInvalidSource(t *testing.T) {
	tests := map[string]client.DocumentUploadRequest{
		"empty": {},
		"both":  {URL: "http://www.example.com/test.doc", Reader: strings.NewReader("data")},
		"name":  {Name: "test.pdf"},
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			transport := &recordingTransport{response: `{"uuid": "abc"}`}
			documents := newDocuments(transport)

			_, err := documents.Upload(context.Background(), input)
			require.ErrorIs(t, err, client.ErrInvalidArgument)
			require.Contains(t, err.Error(), "invalid_url_or_file_param")

			require.Empty(t, transport.requests)
		})
	}
}

func TestUploadMissingUUID(t *testing.T) {
	transport := &recordingTransport{response: `{}`}
	documents := newDocuments(transport)

	_, err := documents.UploadURL(context.Background(), "http://www.example.com/test.doc")
	require.ErrorIs(t, err, client.ErrMalformedResponse)

	var merr *client.MalformedResponseError
	require.ErrorAs(t, err, &merr)
	require.Equal(t, "missing_uuid", merr.Code)
	require.Equal(t, "upload", merr.Operation)
	require.JSONEq(t, `{}`, string(merr.Response))
}

func TestUploadTransportError(t *testing.T) {
	terr := &client.TransportError{StatusCode: http.StatusUnauthorized, Code: "invalid_token"}

	transport := &recordingTransport{err: terr}
	documents := newDocuments(transport)

	_, err := documents.UploadURL(context.Background(), "http://www.example.com/test.doc")
	require.Same(t, terr, err)
	require.ErrorIs(t, err, client.ErrTransport)
}

func TestStatusSingle(t *testing.T) {
	transport := &recordingTransport{response: `[{"uuid": "abc", "status": "DONE", "viewable": true}]`}
	documents := newDocuments(transport)

	result, err := documents.Status(context.Background(), "abc")
	require.NoError(t, err)

	require.Len(t, transport.requests, 1)

	req := transport.requests[0]
	require.Equal(t, "status", req.Operation)
	require.Equal(t, http.MethodGet, req.Method())
	require.Equal(t, "abc", req.Query.Get("uuids"))

	require.True(t, result.OK())
	require.Equal(t, "abc", result.UUID)
	require.Equal(t, &client.DocumentStatus{UUID: "abc", Status: client.StatusDone, Viewable: true}, result.Document)
}

func TestStatusSingleHandleField(t *testing.T) {
	transport := &recordingTransport{response: `[{"handle": "abc", "status": "DONE", "viewable": true}]`}
	documents := newDocuments(transport)

	result, err := documents.Status(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, "abc", result.Document.UUID)
}

func TestStatusSingleErrorRecord(t *testing.T) {
	transport := &recordingTransport{response: `[{"uuid": "abc", "error": "invalid document uuid"}]`}
	documents := newDocuments(transport)

	result, err := documents.Status(context.Background(), "abc")
	require.NoError(t, err)

	require.False(t, result.OK())
	require.Nil(t, result.Document)
	require.Equal(t, "invalid document uuid", result.Err.Message)
}

func TestStatusSingleMissingUUID(t *testing.T) {
	for _, response := range []string{`[{}]`, `[]`, `{}`} {
		transport := &recordingTransport{response: response}
		documents := newDocuments(transport)

		_, err := documents.Status(context.Background(), "abc")
		require.ErrorIs(t, err, client.ErrMalformedResponse, response)

		var merr *client.MalformedResponseError
		require.ErrorAs(t, err, &merr)
		require.Equal(t, "missing_uuid", merr.Code)
		require.Equal(t, response, string(merr.Response))
	}
}

func TestStatusMany(t *testing.T) {
	transport := &recordingTransport{response: `[
		{"uuid": "a", "status": "PROCESSING", "viewable": true},
		{"uuid": "b", "error": "not_found"}
	]`}
	documents := newDocuments(transport)

	results, err := documents.StatusMany(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	require.Len(t, transport.requests, 1)
	require.Equal(t, "a,b", transport.requests[0].Query.Get("uuids"))

	require.Len(t, results, 2)

	require.Equal(t, "a", results[0].UUID)
	require.True(t, results[0].OK())
	require.Equal(t, client.StatusProcessing, results[0].Document.Status)

	require.Equal(t, "b", results[1].UUID)
	require.False(t, results[1].OK())
	require.Equal(t, &client.DocumentError{UUID: "b", Message: "not_found"}, results[1].Err)
}

func TestStatusManyUnvalidatedEntries(t *testing.T) {
	transport := &recordingTransport{response: `[{}, {"uuid": "b", "status": "QUEUED"}]`}
	documents := newDocuments(transport)

	results, err := documents.StatusMany(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Empty(t, results[0].UUID)
	require.Equal(t, "b", results[1].UUID)
}

func TestStatusManyEmpty(t *testing.T) {
	transport := &recordingTransport{response: `[]`}
	documents := newDocuments(transport)

	results, err := documents.StatusMany(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, results)

	require.Len(t, transport.requests, 1)
	require.True(t, transport.requests[0].Query.Has("uuids"))
	require.Equal(t, "", transport.requests[0].Query.Get("uuids"))
}

func TestStatusIdempotent(t *testing.T) {
	transport := &recordingTransport{response: `[{"uuid": "a", "status": "DONE", "viewable": true}, {"uuid": "b", "status": "ERROR", "viewable": false}]`}
	documents := newDocuments(transport)

	first, err := documents.StatusMany(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	second, err := documents.StatusMany(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Len(t, transport.requests, 2)
}

func TestStatusTransportError(t *testing.T) {
	transport := &recordingTransport{err: &client.TransportError{StatusCode: http.StatusInternalServerError, Code: "server_error"}}
	documents := newDocuments(transport)

	_, err := documents.Status(context.Background(), "abc")
	require.ErrorIs(t, err, client.ErrTransport)

	_, err = documents.StatusMany(context.Background(), []string{"abc"})
	require.ErrorIs(t, err, client.ErrTransport)
}

func TestDelete(t *testing.T) {
	tests := map[string]bool{
		`true`:  true,
		`false`: false,
		`1`:     true,
		`0`:     false,
		`"ok"`:  true,
		`""`:    false,
		`null`:  false,
	}

	for response, expected := range tests {
		t.Run(response, func(t *testing.T) {
			transport := &recordingTransport{response: response}
			documents := newDocuments(transport)

			ok, err := documents.Delete(context.Background(), "abc")
			require.NoError(t, err)
			require.Equal(t, expected, ok)

			require.Len(t, transport.requests, 1)

			req := transport.requests[0]
			require.Equal(t, "delete", req.Operation)
			require.Equal(t, http.MethodPost, req.Method())
			require.Equal(t, "abc", req.Form.Get("uuid"))
			require.Len(t, req.Form, 1)
		})
	}
}

func TestDeleteTransportError(t *testing.T) {
	cause := errors.New("connection refused")

	transport := &recordingTransport{err: &client.TransportError{Code: "request_failed", Err: cause}}
	documents := newDocuments(transport)

	ok, err := documents.Delete(context.Background(), "abc")
	require.False(t, ok)
	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, client.ErrTransport)
}

func TestRequestOptionsOverride(t *testing.T) {
	base := &recordingTransport{response: `true`}
	override := &recordingTransport{response: `false`}

	documents := newDocuments(base)

	ok, err := documents.Delete(context.Background(), "abc", client.WithTransport(override))
	require.NoError(t, err)
	require.False(t, ok)

	require.Empty(t, base.requests)
	require.Len(t, override.requests, 1)
}

func TestMiddlewareOrder(t *testing.T) {
	transport := &recordingTransport{response: `true`}

	var calls []string

	wrap := func(name string) func(client.Transport) client.Transport {
		return func(next client.Transport) client.Transport {
			return transportFunc(func(ctx context.Context, r *client.Request) (json.RawMessage, error) {
				calls = append(calls, name)
				return next.Request(ctx, r)
			})
		}
	}

	c := client.New("", client.WithTransport(transport), client.WithMiddleware(wrap("inner")), client.WithMiddleware(wrap("outer")))

	_, err := c.Documents.Delete(context.Background(), "abc")
	require.NoError(t, err)

	require.Equal(t, []string{"outer", "inner"}, calls)
	require.Len(t, transport.requests, 1)
}

type countingTransport struct {
	calls atomic.Int64
}

func (t *countingTransport) Request(ctx context.Context, r *client.Request) (json.RawMessage, error) {
	t.calls.Add(1)

	if r.Operation == "status" {
		return json.RawMessage(`[{"uuid": "abc", "status": "DONE", "viewable": true}]`), nil
	}

	return json.RawMessage(`true`), nil
}

func TestConcurrentRequestOptions(t *testing.T) {
	shared := &countingTransport{}

	identity := func(next client.Transport) client.Transport {
		return next
	}

	// same shape as the clients built from configuration
	c := client.New("http://localhost/api/v2",
		client.WithClient(nil),
		client.WithToken("secret"),
		client.WithMiddleware(identity),
		client.WithTransport(shared),
	)

	a := &countingTransport{}
	b := &countingTransport{}

	const rounds = 200

	var wg sync.WaitGroup

	errs := make(chan error, 2*rounds)

	for i := range rounds {
		transport := a

		if i%2 == 1 {
			transport = b
		}

		wg.Go(func() {
			if _, err := c.Documents.Delete(context.Background(), "abc", client.WithTransport(transport)); err != nil {
				errs <- err
			}
		})

		wg.Go(func() {
			if _, err := c.Documents.Status(context.Background(), "abc", client.WithTransport(transport)); err != nil {
				errs <- err
			}
		})
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, int64(rounds), a.calls.Load())
	require.Equal(t, int64(rounds), b.calls.Load())
	require.Zero(t, shared.calls.Load())

	require.Len(t, c.Documents.Options, 5)
}

type transportFunc func(ctx context.Context, r *client.Request) (json.RawMessage, error)

func (f transportFunc) Request(ctx context.Context, r *client.Request) (json.RawMessage, error) {
	return f(ctx, r)
}
