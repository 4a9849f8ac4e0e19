package document

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

type uploadResponse struct {
	UUID string `json:"uuid"`
}

type statusResponse struct {
	UUID string `json:"uuid"`

	Status   string `json:"status,omitempty"`
	Viewable *bool  `json:"viewable,omitempty"`

	Error string `json:"error,omitempty"`
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	doc := &document{
		UUID:   uuid.New().String(),
		Status: "QUEUED",
	}

	if val := r.FormValue("url"); val != "" {
		if _, err := url.ParseRequestURI(val); err != nil {
			writeStatus(w, http.StatusBadRequest, errorResponse{Error: "invalid_url"})
			return
		}

		doc.URL = val
	} else {
		file, header, err := r.FormFile("file")

		if err != nil {
			writeStatus(w, http.StatusBadRequest, errorResponse{Error: "missing_url_or_file"})
			return
		}

		defer file.Close()

		size, err := io.Copy(io.Discard, file)

		if err != nil {
			writeStatus(w, http.StatusBadRequest, errorResponse{Error: "invalid_file"})
			return
		}

		doc.Name = header.Filename
		doc.Size = size
	}

	h.mu.Lock()
	h.documents[doc.UUID] = doc
	h.mu.Unlock()

	slog.InfoContext(r.Context(), "document uploaded", "uuid", doc.UUID, "url", doc.URL, "name", doc.Name)

	writeJson(w, uploadResponse{
		UUID: doc.UUID,
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ids := valueUUIDs(r)

	if len(ids) == 0 {
		writeStatus(w, http.StatusBadRequest, errorResponse{Error: "missing_uuids"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]statusResponse, 0, len(ids))

	for _, id := range ids {
		doc, ok := h.documents[id]

		if !ok {
			result = append(result, statusResponse{
				UUID:  id,
				Error: "invalid document uuid",
			})

			continue
		}

		viewable := doc.Viewable

		result = append(result, statusResponse{
			UUID: doc.UUID,

			Status:   doc.Status,
			Viewable: &viewable,
		})

		doc.advance()
	}

	writeJson(w, result)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("uuid")

	if id == "" {
		writeStatus(w, http.StatusBadRequest, errorResponse{Error: "missing_uuid"})
		return
	}

	h.mu.Lock()
	_, ok := h.documents[id]
	delete(h.documents, id)
	h.mu.Unlock()

	if ok {
		slog.InfoContext(r.Context(), "document deleted", "uuid", id)
	}

	writeJson(w, ok)
}

func (d *document) advance() {
	switch d.Status {
	case "QUEUED":
		d.Status = "PROCESSING"
		d.Viewable = true

	case "PROCESSING":
		d.Status = "DONE"
	}
}
