// Package portrait generates character portraits, stores them on the CDN and
// runs the background worker that drains the portrait queue.
package portrait

//go:generate mockgen -destination=mock/mock_service.go -package=portraitmock github.com/dabidoe/character-foundry/internal/orchestrators/portrait Service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dabidoe/character-foundry/internal/clients/cdn"
	"github.com/dabidoe/character-foundry/internal/clients/imagegen"
	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/pkg/clock"
	"github.com/dabidoe/character-foundry/internal/pkg/idgen"
	characterrepo "github.com/dabidoe/character-foundry/internal/repositories/character"
	portraitjobs "github.com/dabidoe/character-foundry/internal/repositories/portrait_jobs"
)

// Portrait types
const (
	TypeStandard = "standard"
	TypeBattle   = "battle"
)

const (
	// DefaultPollTimeout bounds one blocking dequeue
	DefaultPollTimeout = 5 * time.Second

	imageSize       = 1024
	contentTypePNG  = "image/png"
	downloadTimeout = 60 * time.Second
	workerBackoff   = time.Second
)

var typeModifiers = map[string]string{
	TypeStandard: "calm pose, neutral expression, professional portrait",
	TypeBattle:   "action pose, fierce expression, combat ready, dynamic angle, weapons drawn",
}

// Service defines the portrait operations
type Service interface {
	EnqueuePortrait(ctx context.Context, input *EnqueuePortraitInput) (*EnqueuePortraitOutput, error)
	GetPortraitJob(ctx context.Context, input *GetPortraitJobInput) (*GetPortraitJobOutput, error)
	GeneratePortrait(ctx context.Context, input *GeneratePortraitInput) (*GeneratePortraitOutput, error)
	ProcessNext(ctx context.Context, input *ProcessNextInput) (*ProcessNextOutput, error)
}

// Config holds the dependencies for the portrait orchestrator
type Config struct {
	CharacterRepo characterrepo.Repository
	JobRepo       portraitjobs.Repository
	IDGenerator   idgen.Generator

	// ImageGen and CDN are optional; without either every operation
	// answers Unavailable
	ImageGen imagegen.Client
	CDN      cdn.Client

	// HTTPClient downloads images the provider returns by URL
	HTTPClient  *http.Client
	Clock       clock.Clock
	PollTimeout time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.JobRepo == nil {
		vb.RequiredField("JobRepo")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

// Orchestrator implements Service
type Orchestrator struct {
	characterRepo characterrepo.Repository
	jobRepo       portraitjobs.Repository
	idGen         idgen.Generator
	imageGen      imagegen.Client
	cdn           cdn.Client
	httpClient    *http.Client
	clock         clock.Clock
	pollTimeout   time.Duration
}

// New creates a portrait orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: downloadTimeout}
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}

	return &Orchestrator{
		characterRepo: cfg.CharacterRepo,
		jobRepo:       cfg.JobRepo,
		idGen:         cfg.IDGenerator,
		imageGen:      cfg.ImageGen,
		cdn:           cfg.CDN,
		httpClient:    httpClient,
		clock:         clk,
		pollTimeout:   pollTimeout,
	}, nil
}

var _ Service = (*Orchestrator)(nil)

// Available reports whether both the image generator and the CDN are set
func (o *Orchestrator) Available() bool {
	return o.imageGen != nil && o.cdn != nil
}

func (o *Orchestrator) requireAvailable() error {
	if !o.Available() {
		return errors.Unavailable("image generation is not configured")
	}
	return nil
}

func normalizeType(t string) (string, error) {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return TypeStandard, nil
	}
	if _, ok := typeModifiers[t]; !ok {
		return "", errors.InvalidArgumentf("unknown portrait type: %s", t)
	}
	return t, nil
}

// BuildPrompt describes a character portrait. description replaces the
// character's image prompt when set.
func BuildPrompt(c *entities.Character, portraitType, description string) string {
	base := strings.TrimSpace(description)
	if base == "" {
		base = strings.TrimSpace(c.ImagePrompt)
	}
	if base == "" {
		base = strings.TrimSpace(c.Race + " " + c.Class)
	}

	modifier, ok := typeModifiers[portraitType]
	if !ok {
		modifier = typeModifiers[TypeStandard]
	}

	return fmt.Sprintf("High quality fantasy art portrait of %s, %s, %s, detailed features, "+
		"professional lighting, sharp focus, 8k, highly detailed, D&D character art style",
		c.Name, base, modifier)
}

// PortraitPath is the CDN path of a portrait
func PortraitPath(characterID, portraitType string, at time.Time) string {
	return fmt.Sprintf("characters/%s/portrait_%s_%d.png", characterID, portraitType, at.UnixMilli())
}

func (o *Orchestrator) load(ctx context.Context, id string) (*entities.Character, error) {
	if id == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}
	out, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: id})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.WrapWithCode(err, errors.CodeNotFound, "Character not found")
		}
		return nil, errors.Wrapf(err, "failed to get character %s", id)
	}
	return out.Character, nil
}

// EnqueuePortrait queues a portrait for the background worker
func (o *Orchestrator) EnqueuePortrait(ctx context.Context, input *EnqueuePortraitInput) (*EnqueuePortraitOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := o.requireAvailable(); err != nil {
		return nil, err
	}
	portraitType, err := normalizeType(input.Type)
	if err != nil {
		return nil, err
	}
	if _, err := o.load(ctx, input.CharacterID); err != nil {
		return nil, err
	}

	out, err := o.jobRepo.Enqueue(ctx, portraitjobs.EnqueueInput{Job: &portraitjobs.Job{
		ID:          o.idGen.Generate(),
		CharacterID: input.CharacterID,
		Prompt:      input.Prompt,
		Type:        portraitType,
		RequestedAt: o.clock.Now(),
	}})
	if err != nil {
		return nil, errors.Wrap(err, "failed to queue portrait")
	}

	slog.InfoContext(ctx, "Portrait queued",
		"character_id", input.CharacterID,
		"job_id", out.Job.ID,
		"type", portraitType,
		"depth", out.Depth,
	)

	return &EnqueuePortraitOutput{Job: out.Job, Depth: out.Depth}, nil
}

// GetPortraitJob returns the last known state of a job
func (o *Orchestrator) GetPortraitJob(ctx context.Context, input *GetPortraitJobInput) (*GetPortraitJobOutput, error) {
	if input == nil || input.JobID == "" {
		return nil, errors.InvalidArgument("job ID is required")
	}
	out, err := o.jobRepo.GetState(ctx, portraitjobs.GetStateInput{JobID: input.JobID})
	if err != nil {
		return nil, err
	}
	return &GetPortraitJobOutput{State: out.State}, nil
}

// GeneratePortrait generates, uploads and records one portrait
func (o *Orchestrator) GeneratePortrait(ctx context.Context, input *GeneratePortraitInput) (*GeneratePortraitOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := o.requireAvailable(); err != nil {
		return nil, err
	}
	portraitType, err := normalizeType(input.Type)
	if err != nil {
		return nil, err
	}

	report := func(stage string, percent int, message string) {
		if input.Progress != nil {
			input.Progress(Progress{Stage: stage, Percent: percent, Message: message})
		}
	}

	c, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(c, portraitType, input.Prompt)
	report("generating", 10, fmt.Sprintf("Generating %s portrait...", portraitType))

	img, err := o.imageGen.Generate(ctx, &imagegen.GenerateInput{
		Prompt:         prompt,
		NegativePrompt: imagegen.DefaultNegativePrompt,
		Width:          imageSize,
		Height:         imageSize,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to generate portrait")
	}

	data := img.Data
	if len(data) == 0 && img.URL != "" {
		report("downloading", 50, "Downloading image...")
		data, err = o.download(ctx, img.URL)
		if err != nil {
			return nil, err
		}
	}
	if len(data) == 0 {
		return nil, errors.External(nil, "image provider returned no image")
	}

	report("uploading", 70, "Uploading portrait...")
	uploaded, err := o.cdn.Upload(ctx, &cdn.UploadInput{
		Path:        PortraitPath(c.ID, portraitType, o.clock.Now()),
		Data:        data,
		ContentType: contentTypePNG,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to upload portrait")
	}

	// the character may have changed while the image was generated
	_, err = o.characterRepo.Modify(ctx, characterrepo.ModifyInput{
		ID: c.ID,
		Apply: func(fresh *entities.Character) error {
			if portraitType == TypeBattle {
				fresh.Images.Battle = uploaded.URL
			} else {
				fresh.Images.Portrait = uploaded.URL
			}
			return nil
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to save portrait for character %s", c.ID)
	}
	report("complete", 100, "Portrait complete")

	slog.InfoContext(ctx, "Portrait generated",
		"character_id", c.ID,
		"type", portraitType,
		"url", uploaded.URL,
	)

	return &GeneratePortraitOutput{
		CharacterID: c.ID,
		Type:        portraitType,
		URL:         uploaded.URL,
		Path:        uploaded.Path,
		Prompt:      prompt,
	}, nil
}

func (o *Orchestrator) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build image download request")
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, errors.External(err, "failed to download generated image")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Externalf(nil, "image download returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.External(err, "failed to read generated image")
	}
	return data, nil
}

// ProcessNext waits for one queued job and runs it. A failed job is
// recorded in its state and is not returned as an error.
func (o *Orchestrator) ProcessNext(ctx context.Context, _ *ProcessNextInput) (*ProcessNextOutput, error) {
	dq, err := o.jobRepo.Dequeue(ctx, portraitjobs.DequeueInput{Timeout: o.pollTimeout})
	if err != nil {
		if errors.IsNotFound(err) {
			return &ProcessNextOutput{}, nil
		}
		return nil, err
	}
	job := dq.Job

	state := &portraitjobs.JobState{
		JobID:       job.ID,
		CharacterID: job.CharacterID,
		Status:      portraitjobs.StatusProcessing,
	}
	o.setState(ctx, state)

	out, err := o.GeneratePortrait(ctx, &GeneratePortraitInput{
		CharacterID: job.CharacterID,
		Prompt:      job.Prompt,
		Type:        job.Type,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Portrait job failed",
			"job_id", job.ID,
			"character_id", job.CharacterID,
			"error", err,
		)
		state.Status = portraitjobs.StatusFailed
		state.Error = errors.GetMessage(err)
	} else {
		state.Status = portraitjobs.StatusComplete
		state.URL = out.URL
	}
	o.setState(ctx, state)

	return &ProcessNextOutput{Job: job, State: state}, nil
}

func (o *Orchestrator) setState(ctx context.Context, state *portraitjobs.JobState) {
	if err := o.jobRepo.SetState(ctx, portraitjobs.SetStateInput{State: state}); err != nil {
		slog.WarnContext(ctx, "Failed to record portrait job state",
			"job_id", state.JobID,
			"status", state.Status,
			"error", err,
		)
	}
}

// Run drains the queue until ctx is canceled
func (o *Orchestrator) Run(ctx context.Context) {
	slog.InfoContext(ctx, "Portrait worker started", "poll_timeout", o.pollTimeout)
	defer slog.InfoContext(ctx, "Portrait worker stopped")

	for ctx.Err() == nil {
		if _, err := o.ProcessNext(ctx, &ProcessNextInput{}); err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.ErrorContext(ctx, "Portrait worker dequeue failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(workerBackoff):
			}
		}
	}
}
