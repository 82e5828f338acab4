package store

import (
	"github.com/ardenvale/illuminator-go/internal/models"

	"time"
)

// RecordCohesionIssue stores a consistency problem. Re-recording the same
// issue is ignored so repeated sweeps don't pile up duplicates; the returned
// bool reports whether a new row was actually inserted.
func (s *Store) RecordCohesionIssue(chronicleID int64, entityName, detail string) (bool, error) {
	result, err := s.db.Exec(`
		INSERT OR IGNORE INTO cohesion_issues (chronicle_id, entity_name, detail, created_at)
		VALUES (?, ?, ?, ?)`,
		chronicleID, entityName, detail, time.Now())
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListCohesionIssues retrieves issues, optionally including resolved ones.
func (s *Store) ListCohesionIssues(includeResolved bool) ([]*models.CohesionIssue, error) {
	query := `
		SELECT id, chronicle_id, entity_name, detail, resolved, created_at
		FROM cohesion_issues`
	if !includeResolved {
		query += " WHERE resolved = 0"
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []*models.CohesionIssue
	for rows.Next() {
		var issue models.CohesionIssue
		var resolved int
		if err := rows.Scan(&issue.ID, &issue.ChronicleID, &issue.EntityName, &issue.Detail, &resolved, &issue.CreatedAt); err != nil {
			return nil, err
		}
		issue.Resolved = resolved != 0
		issues = append(issues, &issue)
	}
	return issues, rows.Err()
}

// ResolveCohesionIssue marks an issue as handled by the operator.
func (s *Store) ResolveCohesionIssue(id int64) error {
	_, err := s.db.Exec("UPDATE cohesion_issues SET resolved = 1 WHERE id = ?", id)
	return err
}
