package tutorial

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Store persists tutorials and user progress in SQLite.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open opens (and initializes) the tutorial database.
func Open(dbPath string, logger zerolog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("database path is required")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tutorials (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			level TEXT NOT NULL,
			prerequisites TEXT NOT NULL,
			estimated_time INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tutorial_sections (
			id TEXT PRIMARY KEY,
			tutorial_id TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			position INTEGER NOT NULL,
			FOREIGN KEY (tutorial_id) REFERENCES tutorials (id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS user_progress (
			user_id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// UpsertTutorial stores a tutorial and replaces its sections.
func (s *Store) UpsertTutorial(t Tutorial) error {
	if t.ID == "" {
		return errors.New("tutorial id is required")
	}

	prereqs, err := json.Marshal(t.Prerequisites)
	if err != nil {
		return fmt.Errorf("failed to encode prerequisites: %w", err)
	}

	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO tutorials (id, title, description, level, prerequisites, estimated_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			level = excluded.level,
			prerequisites = excluded.prerequisites,
			estimated_time = excluded.estimated_time,
			updated_at = excluded.updated_at`,
		t.ID, t.Title, t.Description, t.Level, string(prereqs), t.EstimatedTime, t.CreatedAt, now)
	if err != nil {
		return fmt.Errorf("failed to upsert tutorial %s: %w", t.ID, err)
	}

	if _, err := tx.Exec(`DELETE FROM tutorial_sections WHERE tutorial_id = ?`, t.ID); err != nil {
		return fmt.Errorf("failed to clear sections for %s: %w", t.ID, err)
	}
	for _, section := range t.Sections {
		_, err := tx.Exec(`
			INSERT INTO tutorial_sections (id, tutorial_id, title, content, position)
			VALUES (?, ?, ?, ?, ?)`,
			section.ID, t.ID, section.Title, section.Content, section.Position)
		if err != nil {
			return fmt.Errorf("failed to insert section %s: %w", section.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tutorial %s: %w", t.ID, err)
	}

	s.logger.Debug().Str("tutorial", t.ID).Int("sections", len(t.Sections)).Msg("Tutorial stored")
	return nil
}

// GetTutorial loads one tutorial with its sections.
func (s *Store) GetTutorial(id string) (Tutorial, error) {
	var t Tutorial
	var prereqs string

	row := s.db.QueryRow(`
		SELECT id, title, description, level, prerequisites, estimated_time, created_at, updated_at
		FROM tutorials WHERE id = ?`, id)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Level, &prereqs, &t.EstimatedTime, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Tutorial{}, fmt.Errorf("tutorial not found: %s", id)
	}
	if err != nil {
		return Tutorial{}, fmt.Errorf("failed to load tutorial %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(prereqs), &t.Prerequisites); err != nil {
		return Tutorial{}, fmt.Errorf("failed to decode prerequisites for %s: %w", id, err)
	}

	sections, err := s.sectionsFor(id)
	if err != nil {
		return Tutorial{}, err
	}
	t.Sections = sections

	return t, nil
}

func (s *Store) sectionsFor(tutorialID string) ([]Section, error) {
	rows, err := s.db.Query(`
		SELECT id, tutorial_id, title, content, position
		FROM tutorial_sections WHERE tutorial_id = ? ORDER BY position`, tutorialID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sections for %s: %w", tutorialID, err)
	}
	defer rows.Close()

	sections := []Section{}
	for rows.Next() {
		var sec Section
		if err := rows.Scan(&sec.ID, &sec.TutorialID, &sec.Title, &sec.Content, &sec.Position); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// ListTutorials loads all tutorials (without sections), ordered by ID.
func (s *Store) ListTutorials() ([]Tutorial, error) {
	rows, err := s.db.Query(`
		SELECT id, title, description, level, prerequisites, estimated_time, created_at, updated_at
		FROM tutorials ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tutorials: %w", err)
	}
	defer rows.Close()

	tutorials := []Tutorial{}
	for rows.Next() {
		var t Tutorial
		var prereqs string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Level, &prereqs, &t.EstimatedTime, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tutorial: %w", err)
		}
		if err := json.Unmarshal([]byte(prereqs), &t.Prerequisites); err != nil {
			return nil, fmt.Errorf("failed to decode prerequisites for %s: %w", t.ID, err)
		}
		tutorials = append(tutorials, t)
	}
	return tutorials, rows.Err()
}

// LoadProgress returns a user's progress, fresh when none is stored.
func (s *Store) LoadProgress(userID string) (UserProgress, error) {
	var data string
	row := s.db.QueryRow(`SELECT data FROM user_progress WHERE user_id = ?`, userID)
	err := row.Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return NewUserProgress(userID), nil
	}
	if err != nil {
		return UserProgress{}, fmt.Errorf("failed to load progress for %s: %w", userID, err)
	}

	var progress UserProgress
	if err := json.Unmarshal([]byte(data), &progress); err != nil {
		return UserProgress{}, fmt.Errorf("failed to decode progress for %s: %w", userID, err)
	}
	return progress, nil
}

// SaveProgress stores a user's progress.
func (s *Store) SaveProgress(progress UserProgress) error {
	if progress.UserID == "" {
		return errors.New("user id is required")
	}
	progress.LastActive = time.Now().UTC()

	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO user_progress (user_id, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		progress.UserID, string(data), progress.LastActive)
	if err != nil {
		return fmt.Errorf("failed to save progress for %s: %w", progress.UserID, err)
	}
	return nil
}

// CompleteSection marks a section complete; when a tutorial's sections
// are all complete the tutorial itself is marked complete too.
func (s *Store) CompleteSection(userID, tutorialID, sectionID string) (UserProgress, error) {
	tutorial, err := s.GetTutorial(tutorialID)
	if err != nil {
		return UserProgress{}, err
	}

	progress, err := s.LoadProgress(userID)
	if err != nil {
		return UserProgress{}, err
	}

	done := progress.CompletedSections[tutorialID]
	if !contains(done, sectionID) {
		done = append(done, sectionID)
		progress.CompletedSections[tutorialID] = done
	}
	progress.CurrentTutorial = tutorialID
	progress.CurrentSection = sectionID

	allDone := len(tutorial.Sections) > 0
	for _, section := range tutorial.Sections {
		if !contains(done, section.ID) {
			allDone = false
			break
		}
	}
	if allDone && !contains(progress.CompletedTutorials, tutorialID) {
		progress.CompletedTutorials = append(progress.CompletedTutorials, tutorialID)
		s.logger.Info().Str("user", userID).Str("tutorial", tutorialID).Msg("Tutorial completed")
	}

	if err := s.SaveProgress(progress); err != nil {
		return UserProgress{}, err
	}
	return progress, nil
}

// RecordExerciseScore stores a score, keeping the best attempt.
func (s *Store) RecordExerciseScore(userID, exerciseID string, score int) (UserProgress, error) {
	progress, err := s.LoadProgress(userID)
	if err != nil {
		return UserProgress{}, err
	}

	if best, ok := progress.ExerciseScores[exerciseID]; !ok || score > best {
		progress.ExerciseScores[exerciseID] = score
	}

	if err := s.SaveProgress(progress); err != nil {
		return UserProgress{}, err
	}
	return progress, nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
