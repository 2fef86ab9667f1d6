package portrait_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/dabidoe/character-foundry/internal/clients/cdn"
	cdnmock "github.com/dabidoe/character-foundry/internal/clients/cdn/mock"
	"github.com/dabidoe/character-foundry/internal/clients/imagegen"
	imagegenmock "github.com/dabidoe/character-foundry/internal/clients/imagegen/mock"
	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/orchestrators/portrait"
	"github.com/dabidoe/character-foundry/internal/pkg/clock"
	"github.com/dabidoe/character-foundry/internal/pkg/idgen"
	characterrepo "github.com/dabidoe/character-foundry/internal/repositories/character"
	characterrepomock "github.com/dabidoe/character-foundry/internal/repositories/character/mock"
	portraitjobs "github.com/dabidoe/character-foundry/internal/repositories/portrait_jobs"
	portraitjobsmock "github.com/dabidoe/character-foundry/internal/repositories/portrait_jobs/mock"
	"github.com/dabidoe/character-foundry/internal/testutils"
	"github.com/dabidoe/character-foundry/internal/testutils/mocks"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockRepo     *characterrepomock.MockRepository
	mockJobs     *portraitjobsmock.MockRepository
	mockImageGen *imagegenmock.MockClient
	mockCDN      *cdnmock.MockClient
	orch         *portrait.Orchestrator
	ctx          context.Context
	now          time.Time

	wizard *entities.Character
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = characterrepomock.NewMockRepository(s.ctrl)
	s.mockJobs = portraitjobsmock.NewMockRepository(s.ctrl)
	s.mockImageGen = imagegenmock.NewMockClient(s.ctrl)
	s.mockCDN = cdnmock.NewMockClient(s.ctrl)
	s.ctx = context.Background()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var err error
	s.orch, err = portrait.New(&portrait.Config{
		CharacterRepo: s.mockRepo,
		JobRepo:       s.mockJobs,
		IDGenerator:   idgen.NewSequential("job"),
		ImageGen:      s.mockImageGen,
		CDN:           s.mockCDN,
		Clock:         clock.NewFixed(s.now),
		PollTimeout:   time.Second,
	})
	s.Require().NoError(err)

	s.wizard = testutils.CreateTestWizard("user_1")
	s.wizard.ImagePrompt = "silver-haired elf in blue robes"
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrchestratorTestSuite) newUnavailable() *portrait.Orchestrator {
	orch, err := portrait.New(&portrait.Config{
		CharacterRepo: s.mockRepo,
		JobRepo:       s.mockJobs,
		IDGenerator:   idgen.NewSequential("job"),
	})
	s.Require().NoError(err)
	return orch
}

func (s *OrchestratorTestSuite) TestBuildPrompt() {
	standard := portrait.BuildPrompt(s.wizard, portrait.TypeStandard, "")
	s.Equal("High quality fantasy art portrait of Elara, silver-haired elf in blue robes, "+
		"calm pose, neutral expression, professional portrait, detailed features, professional lighting, "+
		"sharp focus, 8k, highly detailed, D&D character art style", standard)

	s.wizard.ImagePrompt = ""
	battle := portrait.BuildPrompt(s.wizard, portrait.TypeBattle, "")
	s.Contains(battle, "of Elara, Human Wizard, action pose")

	custom := portrait.BuildPrompt(s.wizard, "unknown", "a hooded figure")
	s.Contains(custom, "a hooded figure, calm pose")
}

func (s *OrchestratorTestSuite) TestPortraitPath() {
	s.Equal("characters/char_1/portrait_battle_1718000000000.png",
		portrait.PortraitPath("char_1", portrait.TypeBattle, time.UnixMilli(1718000000000)))
}

func (s *OrchestratorTestSuite) TestEnqueuePortrait() {
	mocks.ExpectCharacterGet(s.ctx, s.mockRepo, s.wizard.ID, s.wizard, nil)
	s.mockJobs.EXPECT().
		Enqueue(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input portraitjobs.EnqueueInput) (*portraitjobs.EnqueueOutput, error) {
			s.Equal("job_1", input.Job.ID)
			s.Equal(s.wizard.ID, input.Job.CharacterID)
			s.Equal(portrait.TypeBattle, input.Job.Type)
			s.Equal(s.now, input.Job.RequestedAt)
			return &portraitjobs.EnqueueOutput{Job: input.Job, Depth: 1}, nil
		})

	out, err := s.orch.EnqueuePortrait(s.ctx, &portrait.EnqueuePortraitInput{
		CharacterID: s.wizard.ID,
		Type:        "Battle",
	})
	s.Require().NoError(err)
	s.Equal("job_1", out.Job.ID)
	s.Equal(1, out.Depth)
}

func (s *OrchestratorTestSuite) TestEnqueuePortraitErrors() {
	_, err := s.newUnavailable().EnqueuePortrait(s.ctx, &portrait.EnqueuePortraitInput{CharacterID: s.wizard.ID})
	s.True(errors.IsUnavailable(err))

	_, err = s.orch.EnqueuePortrait(s.ctx, &portrait.EnqueuePortraitInput{CharacterID: s.wizard.ID, Type: "injured"})
	s.True(errors.IsInvalidArgument(err))

	mocks.ExpectCharacterGet(s.ctx, s.mockRepo, "char_missing", nil, errors.NotFound("missing"))
	_, err = s.orch.EnqueuePortrait(s.ctx, &portrait.EnqueuePortraitInput{CharacterID: "char_missing"})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) expectUpload(url string) {
	s.mockCDN.EXPECT().
		Upload(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input *cdn.UploadInput) (*cdn.UploadOutput, error) {
			s.Equal(portrait.PortraitPath(s.wizard.ID, portrait.TypeStandard, s.now), input.Path)
			s.Equal("image/png", input.ContentType)
			s.Equal([]byte("png-bytes"), input.Data)
			return &cdn.UploadOutput{URL: url, Path: input.Path, Size: len(input.Data)}, nil
		})
}

func (s *OrchestratorTestSuite) TestGeneratePortraitFromBytes() {
	mocks.ExpectCharacterGet(s.ctx, s.mockRepo, s.wizard.ID, s.wizard, nil)
	s.mockImageGen.EXPECT().
		Generate(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input *imagegen.GenerateInput) (*imagegen.GenerateOutput, error) {
			s.Contains(input.Prompt, "silver-haired elf")
			s.Equal(imagegen.DefaultNegativePrompt, input.NegativePrompt)
			s.Equal(1024, input.Width)
			return &imagegen.GenerateOutput{Data: []byte("png-bytes")}, nil
		})
	s.expectUpload("https://cdn.test/portrait.png")
	mocks.ExpectCharacterModify(s.ctx, s.mockRepo, s.wizard, func(c *entities.Character) {
		s.Equal("https://cdn.test/portrait.png", c.Images.Portrait)
		s.Empty(c.Images.Battle)
	})

	var stages []string
	out, err := s.orch.GeneratePortrait(s.ctx, &portrait.GeneratePortraitInput{
		CharacterID: s.wizard.ID,
		Progress: func(p portrait.Progress) {
			stages = append(stages, p.Stage)
		},
	})
	s.Require().NoError(err)
	s.Equal("https://cdn.test/portrait.png", out.URL)
	s.Equal(portrait.TypeStandard, out.Type)
	s.Equal([]string{"generating", "uploading", "complete"}, stages)
}

func (s *OrchestratorTestSuite) TestGeneratePortraitKeepsChangesMadeDuringGeneration() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	defer cleanup()
	repo, err := characterrepo.NewRedis(&characterrepo.RedisConfig{Client: client})
	s.Require().NoError(err)
	_, err = repo.Create(s.ctx, characterrepo.CreateInput{Character: s.wizard})
	s.Require().NoError(err)

	orch, err := portrait.New(&portrait.Config{
		CharacterRepo: repo,
		JobRepo:       s.mockJobs,
		IDGenerator:   idgen.NewSequential("job"),
		ImageGen:      s.mockImageGen,
		CDN:           s.mockCDN,
		Clock:         clock.NewFixed(s.now),
	})
	s.Require().NoError(err)

	// the wizard takes a hit while the image is being generated
	s.mockImageGen.EXPECT().
		Generate(s.ctx, gomock.Any()).
		DoAndReturn(func(context.Context, *imagegen.GenerateInput) (*imagegen.GenerateOutput, error) {
			got, err := repo.Get(s.ctx, characterrepo.GetInput{ID: s.wizard.ID})
			if !s.NoError(err) {
				return nil, err
			}
			got.Character.HP.Current = 5
			if _, err := repo.Update(s.ctx, characterrepo.UpdateInput{Character: got.Character}); !s.NoError(err) {
				return nil, err
			}
			return &imagegen.GenerateOutput{Data: []byte("png-bytes")}, nil
		})
	s.expectUpload("https://cdn.test/portrait.png")

	_, err = orch.GeneratePortrait(s.ctx, &portrait.GeneratePortraitInput{CharacterID: s.wizard.ID})
	s.Require().NoError(err)

	stored, err := repo.Get(s.ctx, characterrepo.GetInput{ID: s.wizard.ID})
	s.Require().NoError(err)
	s.Equal(5, stored.Character.HP.Current)
	s.Equal(17, stored.Character.HP.Max)
	s.Equal("https://cdn.test/portrait.png", stored.Character.Images.Portrait)
}

func (s *OrchestratorTestSuite) TestGeneratePortraitDownloadsURL() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer server.Close()

	mocks.ExpectCharacterGet(s.ctx, s.mockRepo, s.wizard.ID, s.wizard, nil)
	s.mockImageGen.EXPECT().
		Generate(s.ctx, gomock.Any()).
		Return(&imagegen.GenerateOutput{URL: server.URL + "/img.png"}, nil)
	s.expectUpload("https://cdn.test/downloaded.png")
	mocks.ExpectCharacterModify(s.ctx, s.mockRepo, s.wizard, nil)

	out, err := s.orch.GeneratePortrait(s.ctx, &portrait.GeneratePortraitInput{CharacterID: s.wizard.ID})
	s.Require().NoError(err)
	s.Equal("https://cdn.test/downloaded.png", out.URL)
}

func (s *OrchestratorTestSuite) TestGeneratePortraitProviderFailure() {
	mocks.ExpectCharacterGet(s.ctx, s.mockRepo, s.wizard.ID, s.wizard, nil)
	s.mockImageGen.EXPECT().
		Generate(s.ctx, gomock.Any()).
		Return(nil, errors.External(nil, "image generation failed"))
	mocks.ExpectNoCharacterUpdate(s.mockRepo)

	_, err := s.orch.GeneratePortrait(s.ctx, &portrait.GeneratePortraitInput{CharacterID: s.wizard.ID})
	s.Require().Error(err)
	s.True(errors.IsExternal(err))
	s.Equal("Failed to generate portrait", errors.GetMessage(err))
}

func (s *OrchestratorTestSuite) TestProcessNextEmptyQueue() {
	s.mockJobs.EXPECT().
		Dequeue(s.ctx, portraitjobs.DequeueInput{Timeout: time.Second}).
		Return(nil, errors.NotFound("no portrait jobs queued"))

	out, err := s.orch.ProcessNext(s.ctx, &portrait.ProcessNextInput{})
	s.Require().NoError(err)
	s.Nil(out.Job)
}

func (s *OrchestratorTestSuite) expectStates(statuses *[]portraitjobs.Status) {
	s.mockJobs.EXPECT().
		SetState(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input portraitjobs.SetStateInput) error {
			*statuses = append(*statuses, input.State.Status)
			return nil
		}).
		Times(2)
}

func (s *OrchestratorTestSuite) TestProcessNextCompletesJob() {
	job := &portraitjobs.Job{ID: "job_7", CharacterID: s.wizard.ID, Type: portrait.TypeBattle}
	s.mockJobs.EXPECT().
		Dequeue(s.ctx, gomock.Any()).
		Return(&portraitjobs.DequeueOutput{Job: job}, nil)
	var statuses []portraitjobs.Status
	s.expectStates(&statuses)

	mocks.ExpectCharacterGet(s.ctx, s.mockRepo, s.wizard.ID, s.wizard, nil)
	s.mockImageGen.EXPECT().
		Generate(s.ctx, gomock.Any()).
		Return(&imagegen.GenerateOutput{Data: []byte("png-bytes")}, nil)
	s.mockCDN.EXPECT().
		Upload(s.ctx, gomock.Any()).
		Return(&cdn.UploadOutput{URL: "https://cdn.test/battle.png"}, nil)
	mocks.ExpectCharacterModify(s.ctx, s.mockRepo, s.wizard, func(c *entities.Character) {
		s.Equal("https://cdn.test/battle.png", c.Images.Battle)
	})

	out, err := s.orch.ProcessNext(s.ctx, &portrait.ProcessNextInput{})
	s.Require().NoError(err)
	s.Equal(job, out.Job)
	s.Equal(portraitjobs.StatusComplete, out.State.Status)
	s.Equal("https://cdn.test/battle.png", out.State.URL)
	s.Equal([]portraitjobs.Status{portraitjobs.StatusProcessing, portraitjobs.StatusComplete}, statuses)
}

func (s *OrchestratorTestSuite) TestProcessNextRecordsFailure() {
	job := &portraitjobs.Job{ID: "job_8", CharacterID: "char_gone"}
	s.mockJobs.EXPECT().
		Dequeue(s.ctx, gomock.Any()).
		Return(&portraitjobs.DequeueOutput{Job: job}, nil)
	var statuses []portraitjobs.Status
	s.expectStates(&statuses)
	mocks.ExpectCharacterGet(s.ctx, s.mockRepo, "char_gone", nil, errors.NotFound("character with ID char_gone not found"))

	out, err := s.orch.ProcessNext(s.ctx, &portrait.ProcessNextInput{})
	s.Require().NoError(err)
	s.Equal(portraitjobs.StatusFailed, out.State.Status)
	s.Equal("Character not found", out.State.Error)
	s.Equal([]portraitjobs.Status{portraitjobs.StatusProcessing, portraitjobs.StatusFailed}, statuses)
}

func (s *OrchestratorTestSuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(s.ctx)
	s.mockJobs.EXPECT().
		Dequeue(ctx, gomock.Any()).
		DoAndReturn(func(context.Context, portraitjobs.DequeueInput) (*portraitjobs.DequeueOutput, error) {
			cancel()
			return nil, errors.NotFound("no portrait jobs queued")
		})

	done := make(chan struct{})
	go func() {
		s.orch.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.Fail("worker did not stop")
	}
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
