// To handle all database interactions. This is our
// data access layer, keeping SQL queries separate from business logic.

package store

import (
	"database/sql"
	"time"

	"github.com/ardenvale/illuminator-go/internal/models"
)

// Store provides all functions to interact with the database.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// UpsertEntity inserts an entity from a world export, or refreshes its kind
// and era if the name already exists. Illuminated fields (description, tone)
// are never overwritten by an import.
func (s *Store) UpsertEntity(name, kind, era string) (int64, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM entities WHERE name = ?", name).Scan(&id)
	if err == sql.ErrNoRows {
		res, err := s.db.Exec(
			"INSERT INTO entities (name, kind, era, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			name, kind, era, time.Now(), time.Now())
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	} else if err != nil {
		return 0, err
	}
	_, err = s.db.Exec("UPDATE entities SET kind = ?, era = ?, updated_at = ? WHERE id = ?",
		kind, era, time.Now(), id)
	return id, err
}

// GetEntity retrieves a single entity by its primary key.
func (s *Store) GetEntity(id int64) (*models.Entity, error) {
	var e models.Entity
	var backported int
	err := s.db.QueryRow(`
		SELECT id, name, kind, era, description, tone, backported, created_at, updated_at
		FROM entities WHERE id = ?`, id).Scan(
		&e.ID, &e.Name, &e.Kind, &e.Era, &e.Description, &e.Tone, &backported, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Backported = backported != 0
	return &e, nil
}

// ListEntities retrieves all entities ordered by name.
func (s *Store) ListEntities() ([]*models.Entity, error) {
	rows, err := s.db.Query(`
		SELECT id, name, kind, era, description, tone, backported, created_at, updated_at
		FROM entities ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []*models.Entity
	for rows.Next() {
		var e models.Entity
		var backported int
		if err := rows.Scan(&e.ID, &e.Name, &e.Kind, &e.Era, &e.Description, &e.Tone, &backported, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.Backported = backported != 0
		entities = append(entities, &e)
	}
	return entities, rows.Err()
}

// ListEntityNames returns every entity name; the cohesion sweep matches
// chronicle text against this set.
func (s *Store) ListEntityNames() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM entities ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// UpdateEntityDescription saves an illuminated description and its tone.
func (s *Store) UpdateEntityDescription(id int64, description, tone string) error {
	_, err := s.db.Exec("UPDATE entities SET description = ?, tone = ?, updated_at = ? WHERE id = ?",
		description, tone, time.Now(), id)
	return err
}

// MarkEntityBackported flags an entity whose description has been rewritten
// into an earlier era.
func (s *Store) MarkEntityBackported(id int64, description string) error {
	_, err := s.db.Exec("UPDATE entities SET description = ?, backported = 1, updated_at = ? WHERE id = ?",
		description, time.Now(), id)
	return err
}

// UpsertChronicle inserts a chronicle from a world export, or refreshes its
// body and era if the title already exists.
func (s *Store) UpsertChronicle(title, body, era string) (int64, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM chronicles WHERE title = ?", title).Scan(&id)
	if err == sql.ErrNoRows {
		res, err := s.db.Exec(
			"INSERT INTO chronicles (title, body, era, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			title, body, era, time.Now(), time.Now())
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	} else if err != nil {
		return 0, err
	}
	_, err = s.db.Exec("UPDATE chronicles SET body = ?, era = ?, updated_at = ? WHERE id = ?",
		body, era, time.Now(), id)
	return id, err
}

// GetChronicle retrieves a single chronicle by its primary key.
func (s *Store) GetChronicle(id int64) (*models.Chronicle, error) {
	var c models.Chronicle
	err := s.db.QueryRow(`
		SELECT id, title, body, era, tone, created_at, updated_at
		FROM chronicles WHERE id = ?`, id).Scan(
		&c.ID, &c.Title, &c.Body, &c.Era, &c.Tone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChronicles retrieves all chronicles ordered by title.
func (s *Store) ListChronicles() ([]*models.Chronicle, error) {
	rows, err := s.db.Query(`
		SELECT id, title, body, era, tone, created_at, updated_at
		FROM chronicles ORDER BY title ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chronicles []*models.Chronicle
	for rows.Next() {
		var c models.Chronicle
		if err := rows.Scan(&c.ID, &c.Title, &c.Body, &c.Era, &c.Tone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		chronicles = append(chronicles, &c)
	}
	return chronicles, rows.Err()
}

// UpdateChronicleBody replaces a chronicle's narrative text.
func (s *Store) UpdateChronicleBody(id int64, body string) error {
	_, err := s.db.Exec("UPDATE chronicles SET body = ?, updated_at = ? WHERE id = ?",
		body, time.Now(), id)
	return err
}

// UpdateChronicleTone saves a tone-rewritten body together with its new tone
// tag in one statement so the pair can never drift apart.
func (s *Store) UpdateChronicleTone(id int64, tone, body string) error {
	_, err := s.db.Exec("UPDATE chronicles SET tone = ?, body = ?, updated_at = ? WHERE id = ?",
		tone, body, time.Now(), id)
	return err
}
