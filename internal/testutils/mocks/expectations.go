// Package mocks provides mock expectation helpers for common testing patterns
package mocks

import (
	"context"

	"go.uber.org/mock/gomock"

	"github.com/dabidoe/character-foundry/internal/entities"
	characterrepo "github.com/dabidoe/character-foundry/internal/repositories/character"
	characterrepomock "github.com/dabidoe/character-foundry/internal/repositories/character/mock"
)

// ExpectCharacterGet sets up a mock expectation for loading a character
func ExpectCharacterGet(
	ctx context.Context, mockRepo *characterrepomock.MockRepository,
	characterID string, character *entities.Character, err error,
) {
	if err != nil {
		mockRepo.EXPECT().
			Get(ctx, characterrepo.GetInput{ID: characterID}).
			Return(nil, err)
		return
	}

	mockRepo.EXPECT().
		Get(ctx, characterrepo.GetInput{ID: characterID}).
		Return(&characterrepo.GetOutput{Character: character}, nil)
}

// ExpectCharacterUpdate echoes the written character back and hands it to
// inspect, when given, for assertions on what was stored
func ExpectCharacterUpdate(
	ctx context.Context, mockRepo *characterrepomock.MockRepository,
	inspect func(*entities.Character),
) {
	mockRepo.EXPECT().
		Update(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input characterrepo.UpdateInput) (*characterrepo.UpdateOutput, error) {
			if inspect != nil {
				inspect(input.Character)
			}
			return &characterrepo.UpdateOutput{Character: input.Character}, nil
		})
}

// ExpectCharacterModify applies the requested change to a copy of stored and
// hands the result to inspect, when given
func ExpectCharacterModify(
	ctx context.Context, mockRepo *characterrepomock.MockRepository,
	stored *entities.Character, inspect func(*entities.Character),
) {
	mockRepo.EXPECT().
		Modify(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input characterrepo.ModifyInput) (*characterrepo.ModifyOutput, error) {
			c := *stored
			if err := input.Apply(&c); err != nil {
				return nil, err
			}
			if inspect != nil {
				inspect(&c)
			}
			return &characterrepo.ModifyOutput{Character: &c}, nil
		})
}

// ExpectNoCharacterUpdate fails the test if the character is written
func ExpectNoCharacterUpdate(mockRepo *characterrepomock.MockRepository) {
	mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)
	mockRepo.EXPECT().Modify(gomock.Any(), gomock.Any()).Times(0)
}
