package store

import (
	"time"

	"github.com/ardenvale/illuminator-go/internal/models"
)

// InsertAnnotation attaches a historian note to a chronicle at the given
// anchor position.
func (s *Store) InsertAnnotation(chronicleID int64, anchorText string, anchorOffset int, body string) (*models.Annotation, error) {
	now := time.Now()
	res, err := s.db.Exec(`
		INSERT INTO annotations (chronicle_id, anchor_text, anchor_offset, body, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		chronicleID, anchorText, anchorOffset, body, now)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return &models.Annotation{
		ID:           id,
		ChronicleID:  chronicleID,
		AnchorText:   anchorText,
		AnchorOffset: anchorOffset,
		Body:         body,
		CreatedAt:    now,
	}, nil
}

// ListAnnotations retrieves all annotations for a chronicle in anchor order.
func (s *Store) ListAnnotations(chronicleID int64) ([]*models.Annotation, error) {
	rows, err := s.db.Query(`
		SELECT id, chronicle_id, anchor_text, anchor_offset, body, created_at
		FROM annotations WHERE chronicle_id = ? ORDER BY anchor_offset ASC, id ASC`, chronicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var annotations []*models.Annotation
	for rows.Next() {
		var a models.Annotation
		if err := rows.Scan(&a.ID, &a.ChronicleID, &a.AnchorText, &a.AnchorOffset, &a.Body, &a.CreatedAt); err != nil {
			return nil, err
		}
		annotations = append(annotations, &a)
	}
	return annotations, rows.Err()
}
