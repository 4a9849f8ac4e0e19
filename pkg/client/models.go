package client

import (
	"encoding/json"
	"io"
)

type Status string

const (
	StatusQueued     Status = "QUEUED"
	StatusProcessing Status = "PROCESSING"
	StatusDone       Status = "DONE"
	StatusError      Status = "ERROR"
)

type DocumentStatus struct {
	UUID string

	Status   Status
	Viewable bool
}

// DocumentError is a per-document failure reported inside a status response.
type DocumentError struct {
	UUID    string
	Message string
}

func (e *DocumentError) Error() string {
	return "crocodoc: document " + e.UUID + ": " + e.Message
}

// StatusResult holds either Document or Err, never both.
type StatusResult struct {
	UUID string

	Document *DocumentStatus
	Err      *DocumentError
}

func (r StatusResult) OK() bool {
	return r.Err == nil
}

// DocumentUploadRequest names the source of an upload. Set URL, or Reader
// (with an optional Name and ContentType), but not both.
type DocumentUploadRequest struct {
	URL string

	Name        string
	ContentType string
	Reader      io.Reader
}

type statusRecord struct {
	UUID   string `json:"uuid"`
	Handle string `json:"handle"`

	Status   *string `json:"status"`
	Viewable bool    `json:"viewable"`

	Error *string `json:"error"`
}

func (r *statusRecord) id() string {
	if r.UUID != "" {
		return r.UUID
	}

	return r.Handle
}

func (r *statusRecord) result() StatusResult {
	id := r.id()

	if r.Error != nil {
		return StatusResult{
			UUID: id,

			Err: &DocumentError{
				UUID:    id,
				Message: *r.Error,
			},
		}
	}

	var status Status

	if r.Status != nil {
		status = Status(*r.Status)
	}

	return StatusResult{
		UUID: id,

		Document: &DocumentStatus{
			UUID: id,

			Status:   status,
			Viewable: r.Viewable,
		},
	}
}

type uploadResponse struct {
	UUID   string `json:"uuid"`
	Handle string `json:"handle"`
}

func decodeStatusRecords(data json.RawMessage) ([]statusRecord, error) {
	var records []statusRecord

	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	return records, nil
}
