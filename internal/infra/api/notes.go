package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
)

// noteResponse never carries the file reference unless access was granted.
type noteResponse struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Subject     string      `json:"subject"`
	Description string      `json:"description,omitempty"`
	Price       json.Number `json:"price"`
	PreviewURL  string      `json:"previewUrl,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	HasAccess   bool        `json:"hasAccess"`
	AccessVia   string      `json:"accessVia,omitempty"`
	FileURL     string      `json:"fileUrl,omitempty"`
}

func toNoteResponse(v *model.NoteView) noteResponse {
	n := v.Note
	resp := noteResponse{
		ID:          n.ID,
		Title:       n.Title,
		Subject:     n.Subject,
		Description: n.Description,
		Price:       json.Number(n.Price.Rupees()),
		PreviewURL:  n.PreviewURL,
		CreatedAt:   n.CreatedAt,
		HasAccess:   v.Access.Granted(),
	}
	if resp.HasAccess {
		resp.AccessVia = string(v.Access.Reason)
		resp.FileURL = v.AssetURL
	}
	return resp
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	var uid *string
	if id := UserID(r.Context()); id != "" {
		uid = &id
	}
	view, err := s.deps.Entitlements.ReadNote(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteResponse(view))
}
