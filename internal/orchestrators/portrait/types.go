package portrait

import (
	portraitjobs "github.com/dabidoe/character-foundry/internal/repositories/portrait_jobs"
)

// Progress is one step of a portrait generation
type Progress struct {
	Stage   string `json:"stage"`
	Percent int    `json:"progress"`
	Message string `json:"message"`
}

// ProgressFunc receives progress updates. It is called on the generating
// goroutine.
type ProgressFunc func(Progress)

// EnqueuePortraitInput asks for a portrait to be generated in the background
type EnqueuePortraitInput struct {
	CharacterID string
	// Prompt replaces the character's own image description when set
	Prompt string
	Type   string
}

// EnqueuePortraitOutput returns the queued job
type EnqueuePortraitOutput struct {
	Job   *portraitjobs.Job `json:"job"`
	Depth int               `json:"queueDepth"`
}

// GetPortraitJobInput identifies a job
type GetPortraitJobInput struct {
	JobID string
}

// GetPortraitJobOutput holds the job state
type GetPortraitJobOutput struct {
	State *portraitjobs.JobState
}

// GeneratePortraitInput generates a portrait synchronously
type GeneratePortraitInput struct {
	CharacterID string
	Prompt      string
	Type        string
	Progress    ProgressFunc
}

// GeneratePortraitOutput describes the stored portrait
type GeneratePortraitOutput struct {
	CharacterID string `json:"characterId"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Path        string `json:"path"`
	Prompt      string `json:"prompt"`
}

// ProcessNextInput is empty
type ProcessNextInput struct{}

// ProcessNextOutput holds the processed job. Job is nil when the queue was
// empty for the whole poll timeout.
type ProcessNextOutput struct {
	Job   *portraitjobs.Job
	State *portraitjobs.JobState
}
