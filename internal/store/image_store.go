package store

import (
	"time"

	"github.com/ardenvale/illuminator-go/internal/models"
)

// InsertGeneratedImage stores a generated illustration thumbnail for an entity.
func (s *Store) InsertGeneratedImage(entityID int64, prompt, thumbnail string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO generated_images (entity_id, prompt, thumbnail, created_at)
		VALUES (?, ?, ?, ?)`,
		entityID, prompt, thumbnail, time.Now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListImagesForEntity retrieves all stored illustrations for one entity,
// newest first.
func (s *Store) ListImagesForEntity(entityID int64) ([]*models.GeneratedImage, error) {
	rows, err := s.db.Query(`
		SELECT id, entity_id, prompt, thumbnail, created_at
		FROM generated_images WHERE entity_id = ? ORDER BY created_at DESC, id DESC`, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*models.GeneratedImage
	for rows.Next() {
		var img models.GeneratedImage
		if err := rows.Scan(&img.ID, &img.EntityID, &img.Prompt, &img.Thumbnail, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, &img)
	}
	return images, rows.Err()
}
