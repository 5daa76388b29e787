package tutorial

import "time"

// Difficulty levels for tutorials.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Tutorial is one tutorial document with its ordered sections.
type Tutorial struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Level         string    `json:"level"`
	Prerequisites []string  `json:"prerequisites"`
	EstimatedTime int       `json:"estimated_time"` // minutes
	Sections      []Section `json:"sections"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Section is a single tutorial section.
type Section struct {
	ID         string `json:"id"`
	TutorialID string `json:"tutorial_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Position   int    `json:"position"`
}

// UserProgress tracks one user's progress across tutorials.
type UserProgress struct {
	UserID             string              `json:"user_id"`
	CompletedTutorials []string            `json:"completed_tutorials"`
	CompletedSections  map[string][]string `json:"completed_sections"`
	CurrentTutorial    string              `json:"current_tutorial,omitempty"`
	CurrentSection     string              `json:"current_section,omitempty"`
	ExerciseScores     map[string]int      `json:"exercise_scores"`
	LastActive         time.Time           `json:"last_active"`
}

// NewUserProgress returns empty progress for a user.
func NewUserProgress(userID string) UserProgress {
	return UserProgress{
		UserID:             userID,
		CompletedTutorials: []string{},
		CompletedSections:  map[string][]string{},
		ExerciseScores:     map[string]int{},
		LastActive:         time.Now().UTC(),
	}
}
