package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// DocumentPath is the Document API path relative to the base API URL.
const DocumentPath = "/document/"

// DocumentService uploads documents, checks their conversion status and
// deletes them.
type DocumentService struct {
	Options []RequestOption
}

func NewDocumentService(opts ...RequestOption) DocumentService {
	return DocumentService{
		Options: opts,
	}
}

// Upload sends a document by URL or by content and returns its uuid.
func (r *DocumentService) Upload(ctx context.Context, input DocumentUploadRequest, opts ...RequestOption) (string, error) {
	c := newRequestConfig(r.Options, opts...)

	req := &Request{
		Path:      DocumentPath,
		Operation: "upload",
	}

	switch {
	case input.URL != "" && input.Reader == nil:
		req.Form = url.Values{
			"url": []string{input.URL},
		}

	case input.URL == "" && input.Reader != nil:
		req.File = &File{
			Name:        input.Name,
			ContentType: input.ContentType,

			Reader: input.Reader,
		}

	default:
		return "", fmt.Errorf("%w: invalid_url_or_file_param", ErrInvalidArgument)
	}

	data, err := c.transport().Request(ctx, req)

	if err != nil {
		return "", err
	}

	var result uploadResponse

	if err := json.Unmarshal(data, &result); err != nil || (result.UUID == "" && result.Handle == "") {
		return "", &MalformedResponseError{
			Operation: "upload",
			Code:      "missing_uuid",

			Response: data,
		}
	}

	if result.UUID != "" {
		return result.UUID, nil
	}

	return result.Handle, nil
}

func (r *DocumentService) UploadURL(ctx context.Context, url string, opts ...RequestOption) (string, error) {
	return r.Upload(ctx, DocumentUploadRequest{URL: url}, opts...)
}

func (r *DocumentService) UploadFile(ctx context.Context, name string, reader io.Reader, opts ...RequestOption) (string, error) {
	return r.Upload(ctx, DocumentUploadRequest{Name: name, Reader: reader}, opts...)
}

// Status returns the status of a single document. A per-document failure
// reported by the API is returned in StatusResult.Err, not as an error.
func (r *DocumentService) Status(ctx context.Context, uuid string, opts ...RequestOption) (*StatusResult, error) {
	data, err := r.status(ctx, []string{uuid}, opts...)

	if err != nil {
		return nil, err
	}

	records, err := decodeStatusRecords(data)

	if err != nil || len(records) == 0 || records[0].id() == "" {
		return nil, &MalformedResponseError{
			Operation: "status",
			Code:      "missing_uuid",

			Response: data,
		}
	}

	result := records[0].result()
	return &result, nil
}

// StatusMany returns one result per record in the response, in response
// order. Records are not matched against the requested uuids.
func (r *DocumentService) StatusMany(ctx context.Context, uuids []string, opts ...RequestOption) ([]StatusResult, error) {
	data, err := r.status(ctx, uuids, opts...)

	if err != nil {
		return nil, err
	}

	records, err := decodeStatusRecords(data)

	if err != nil {
		return nil, &MalformedResponseError{
			Operation: "status",
			Code:      "invalid_status_response",

			Response: data,
		}
	}

	results := make([]StatusResult, 0, len(records))

	for _, record := range records {
		results = append(results, record.result())
	}

	return results, nil
}

func (r *DocumentService) status(ctx context.Context, uuids []string, opts ...RequestOption) (json.RawMessage, error) {
	c := newRequestConfig(r.Options, opts...)

	return c.transport().Request(ctx, &Request{
		Path:      DocumentPath,
		Operation: "status",

		Query: url.Values{
			"uuids": []string{strings.Join(uuids, ",")},
		},
	})
}

// Delete removes a document and reports whether the API deleted it.
func (r *DocumentService) Delete(ctx context.Context, uuid string, opts ...RequestOption) (bool, error) {
	c := newRequestConfig(r.Options, opts...)

	data, err := c.transport().Request(ctx, &Request{
		Path:      DocumentPath,
		Operation: "delete",

		Form: url.Values{
			"uuid": []string{uuid},
		},
	})

	if err != nil {
		return false, err
	}

	return truthy(data), nil
}

func truthy(data json.RawMessage) bool {
	var val any

	if err := json.Unmarshal(data, &val); err != nil {
		return false
	}

	switch v := val.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != "" && v != "0" && !strings.EqualFold(v, "false")
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return false
	}
}
