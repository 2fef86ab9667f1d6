package errors_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/dabidoe/character-foundry/internal/errors"
)

type ValidationTestSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (s *ValidationTestSuite) TestValidationBuilder() {
	vb := errors.NewValidationBuilder()
	vb.RequiredField("name").
		Fieldf("level", "must be between %d and %d", 1, 20).
		InvalidField("alignment", "not a valid alignment").
		RequiredField("class").
		Fieldf("level", "must be a number")

	err := vb.Build()
	s.Require().NotNil(err)
	s.Assert().True(errors.IsInvalidArgument(err))
	s.Assert().Equal("validation failed: name: is required; "+
		"level: must be between 1 and 20, must be a number; "+
		"alignment: is invalid: not a valid alignment; class: is required", errors.GetMessage(err))

	validationErrors := errors.GetMeta(err)["validation_errors"].(map[string][]string)
	s.Assert().Len(validationErrors, 4)
	s.Assert().Len(validationErrors["level"], 2)
}

func (s *ValidationTestSuite) TestValidationBuilderNoErrors() {
	vb := errors.NewValidationBuilder()
	err := vb.Build()
	s.Assert().Nil(err)
}

func (s *ValidationTestSuite) TestValidateRequired() {
	testCases := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{"valid value", "test", false},
		{"empty string", "", true},
		{"whitespace only", "   ", true},
		{"valid with spaces", "  test  ", false},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			vb := errors.NewValidationBuilder()
			errors.ValidateRequired("field", tc.value, vb)
			err := vb.Build()
			if tc.shouldErr {
				s.Assert().NotNil(err)
			} else {
				s.Assert().Nil(err)
			}
		})
	}
}

func (s *ValidationTestSuite) TestValidateMinLength() {
	vb := errors.NewValidationBuilder()
	errors.ValidateMinLength("prompt", "short", 10, vb)
	errors.ValidateMinLength("name", "Thorin", 3, vb)

	err := vb.Build()
	s.Require().NotNil(err)
	meta := errors.GetMeta(err)
	validationErrors := meta["validation_errors"].(map[string][]string)
	s.Assert().Contains(validationErrors["prompt"][0], "must be at least 10 characters")
	s.Assert().NotContains(validationErrors, "name")
}

func (s *ValidationTestSuite) TestValidateRange() {
	vb := errors.NewValidationBuilder()
	errors.ValidateRange("level", 25, 1, 20, vb)
	errors.ValidateRange("str", 15, 1, 30, vb)
	errors.ValidateRange("hp", 0, 1, 100, vb)

	err := vb.Build()
	s.Require().NotNil(err)
	meta := errors.GetMeta(err)
	validationErrors := meta["validation_errors"].(map[string][]string)
	s.Assert().Contains(validationErrors["level"][0], "must be between 1 and 20")
	s.Assert().Contains(validationErrors["hp"][0], "must be between 1 and 100")
	s.Assert().NotContains(validationErrors, "str")
}

func (s *ValidationTestSuite) TestValidateEnum() {
	allowedMoods := []string{"default", "battle", "angry"}

	vb := errors.NewValidationBuilder()
	errors.ValidateEnum("mood", "sleepy", allowedMoods, vb)
	errors.ValidateEnum("state", "battle", allowedMoods, vb)

	err := vb.Build()
	s.Require().NotNil(err)
	meta := errors.GetMeta(err)
	validationErrors := meta["validation_errors"].(map[string][]string)
	s.Assert().Contains(validationErrors["mood"][0], "must be one of: default, battle, angry")
	s.Assert().NotContains(validationErrors, "state")
}

func (s *ValidationTestSuite) TestChatRequestValidation() {
	type chatInput struct {
		Message string
		Mood    string
		Stats   map[string]int
	}

	input := chatInput{
		Message: "",
		Mood:    "sleepy",
		Stats:   map[string]int{"str": 31, "dex": 14},
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("message", input.Message, vb)
	errors.ValidateEnum("mood", input.Mood, []string{"default", "battle", "angry", "injured", "triumphant"}, vb)
	for ability, score := range input.Stats {
		errors.ValidateRange(ability, score, 1, 30, vb)
	}

	err := vb.Build()
	s.Require().NotNil(err)
	s.Assert().True(errors.IsInvalidArgument(err))

	validationErrors := errors.GetMeta(err)["validation_errors"].(map[string][]string)
	s.Assert().Contains(validationErrors, "message")
	s.Assert().Contains(validationErrors, "mood")
	s.Assert().Contains(validationErrors, "str")
	s.Assert().NotContains(validationErrors, "dex")
}
