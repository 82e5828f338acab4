package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func urlParamID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := s.store.ListEntities()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list entities")
		return
	}
	RespondWithJSON(w, http.StatusOK, entities)
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "entityID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid entity ID")
		return
	}
	entity, err := s.store.GetEntity(id)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "Entity not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, entity)
}

func (s *Server) handleListEntityImages(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "entityID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid entity ID")
		return
	}
	images, err := s.store.ListImagesForEntity(id)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list images")
		return
	}
	RespondWithJSON(w, http.StatusOK, images)
}

func (s *Server) handleListChronicles(w http.ResponseWriter, r *http.Request) {
	chronicles, err := s.store.ListChronicles()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list chronicles")
		return
	}
	RespondWithJSON(w, http.StatusOK, chronicles)
}

func (s *Server) handleGetChronicle(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "chronicleID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid chronicle ID")
		return
	}
	chronicle, err := s.store.GetChronicle(id)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "Chronicle not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, chronicle)
}

func (s *Server) handleListAnnotations(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "chronicleID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid chronicle ID")
		return
	}
	annotations, err := s.store.ListAnnotations(id)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list annotations")
		return
	}
	RespondWithJSON(w, http.StatusOK, annotations)
}
