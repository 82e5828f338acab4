package api

import (
	"net/http"
)

func (s *Server) handleListCohesionIssues(w http.ResponseWriter, r *http.Request) {
	includeResolved := r.URL.Query().Get("include_resolved") == "true"
	issues, err := s.store.ListCohesionIssues(includeResolved)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list cohesion issues")
		return
	}
	RespondWithJSON(w, http.StatusOK, issues)
}

func (s *Server) handleResolveCohesionIssue(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "issueID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid issue ID")
		return
	}
	if err := s.store.ResolveCohesionIssue(id); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to resolve issue")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}
