// Package prompts manages named instruction overrides for the generation
// stages of the research agents. A stage without an active override falls
// back to its built-in instructions.
package prompts

import "github.com/google/uuid"

// Prompt is a named instruction override for a stage.
type Prompt struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	Instructions string    `json:"instructions"`
	Description  *string   `json:"description"`
	Active       bool      `json:"active"`
}

// CreateCommand carries the data needed to create a prompt override.
type CreateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

// UpdateCommand carries the data needed to update a prompt override.
type UpdateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

// StageContent pairs a stage with its effective instructions.
type StageContent struct {
	Stage   Stage  `json:"stage"`
	Content string `json:"content"`
}

func validate(name string, stage Stage, instructions string) error {
	if name == "" || instructions == "" {
		return ErrEmptyPrompt
	}
	if _, err := ParseStage(string(stage)); err != nil {
		return err
	}
	return nil
}
