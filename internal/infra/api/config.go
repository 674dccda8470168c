package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
)

type configValue struct {
	Value json.RawMessage `json:"value"`
}

// scalar accepts a JSON string or number and returns its text.
func (c configValue) scalar() (string, error) {
	raw := strings.TrimSpace(string(c.Value))
	if raw == "" || raw == "null" {
		return "", domain.ErrInvalidArgument
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(c.Value, &s); err != nil {
			return "", domain.ErrInvalidArgument
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(c.Value, &n); err != nil {
		return "", domain.ErrInvalidArgument
	}
	return n.String(), nil
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	v, err := s.deps.Config.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"value": v})
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var req configValue
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	v, err := req.scalar()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Config.Set(r.Context(), UserID(r.Context()), chi.URLParam(r, "key"), v); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
