package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ardenvale/illuminator-go/internal/bulkop"
)

// controllerFor resolves the {kind} URL param to its controller, writing a
// 404 if the kind is unknown.
func (s *Server) controllerFor(w http.ResponseWriter, r *http.Request) *bulkop.Controller {
	kind := chi.URLParam(r, "kind")
	c := s.app.Bulk().Get(kind)
	if c == nil {
		RespondWithError(w, http.StatusNotFound, "Unknown operation kind")
	}
	return c
}

func (s *Server) handleListOperations(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.app.Bulk().Snapshots())
}

func (s *Server) handleGetOperation(w http.ResponseWriter, r *http.Request) {
	c := s.controllerFor(w, r)
	if c == nil {
		return
	}
	RespondWithJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleBeginOperation(w http.ResponseWriter, r *http.Request) {
	c := s.controllerFor(w, r)
	if c == nil {
		return
	}

	var payload struct {
		ChronicleIDs []int64 `json:"chronicle_ids"`
		EntityIDs    []int64 `json:"entity_ids"`
		BatchSize    int     `json:"batch_size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	items, err := s.app.WorkItemsFor(c.Kind(), payload.ChronicleIDs, payload.EntityIDs)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	batchSize := payload.BatchSize
	if batchSize < 1 {
		batchSize = s.app.Config().LLM.BatchSize
	}

	c.BeginConfirmation(items, bulkop.Options{BatchSize: batchSize})
	RespondWithJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleConfirmOperation(w http.ResponseWriter, r *http.Request) {
	c := s.controllerFor(w, r)
	if c == nil {
		return
	}
	// The run outlives the request, so it gets its own context.
	c.Confirm(s.app.RunContext())
	RespondWithJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleCancelOperation(w http.ResponseWriter, r *http.Request) {
	c := s.controllerFor(w, r)
	if c == nil {
		return
	}
	c.Cancel()
	RespondWithJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleCloseOperation(w http.ResponseWriter, r *http.Request) {
	c := s.controllerFor(w, r)
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		RespondWithError(w, http.StatusConflict, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleMinimizeOperation(w http.ResponseWriter, r *http.Request) {
	c := s.controllerFor(w, r)
	if c == nil {
		return
	}

	var payload bulkop.PillMeta
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}

	c.Minimize(payload)
	RespondWithJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleExpandOperation(w http.ResponseWriter, r *http.Request) {
	c := s.controllerFor(w, r)
	if c == nil {
		return
	}
	c.Expand()
	RespondWithJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleListPills(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.app.Pills().List())
}
