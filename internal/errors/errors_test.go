package errors_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/dabidoe/character-foundry/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	testCases := []struct {
		name     string
		code     errors.Code
		message  string
		expected string
	}{
		{
			name:     "not found error",
			code:     errors.CodeNotFound,
			message:  "character not found",
			expected: "NOT_FOUND: character not found",
		},
		{
			name:     "invalid argument error",
			code:     errors.CodeInvalidArgument,
			message:  "damage amount must be positive",
			expected: "INVALID_ARGUMENT: damage amount must be positive",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := errors.New(tc.code, tc.message)
			s.Equal(tc.expected, err.Error())
			s.Equal(tc.code, err.Code)
			s.Equal(tc.message, err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestErrorWithMeta() {
	err := errors.NotFound("character not found").
		WithMeta("character_id", "char_1").
		WithMetaMap(map[string]interface{}{"user_id": "u1"})

	s.Equal("char_1", err.Meta["character_id"])
	s.Equal("u1", err.Meta["user_id"])
}

func (s *ErrorsTestSuite) TestWrap() {
	s.Run("plain error becomes internal", func() {
		baseErr := fmt.Errorf("connection reset")
		wrapped := errors.Wrap(baseErr, "failed to get character")

		s.Equal(errors.CodeInternal, wrapped.Code)
		s.Equal("failed to get character", wrapped.Message)
		s.Equal(baseErr, wrapped.Unwrap())
	})

	s.Run("code is preserved", func() {
		wrapped := errors.Wrapf(errors.NotFound("record not found"), "character %s", "char_1")
		s.Equal(errors.CodeNotFound, wrapped.Code)
		s.Equal("character char_1", wrapped.Message)
	})

	s.Run("explicit code", func() {
		wrapped := errors.WrapWithCode(fmt.Errorf("timeout"), errors.CodeUnavailable, "redis unavailable")
		s.Equal(errors.CodeUnavailable, wrapped.Code)
	})

	s.Run("nil stays nil", func() {
		s.Nil(errors.Wrap(nil, "should be nil"))
		s.Nil(errors.WrapWithCode(nil, errors.CodeNotFound, "should be nil"))
	})
}

func (s *ErrorsTestSuite) TestExternal() {
	cause := fmt.Errorf("429 too many requests")
	err := errors.External(cause, "Failed to generate response")

	s.True(errors.IsExternal(err))
	s.Equal("Failed to generate response", errors.GetMessage(err))
	s.ErrorIs(err, cause)
	s.Equal(http.StatusBadGateway, errors.GetCode(err).HTTPStatus())
}

func (s *ErrorsTestSuite) TestGetCode() {
	testCases := []struct {
		name     string
		err      error
		expected errors.Code
	}{
		{"nil", nil, errors.CodeOK},
		{"typed", errors.NotFound("x"), errors.CodeNotFound},
		{"wrapped typed", errors.Wrap(errors.FailedPrecondition("no uses"), "use ability"), errors.CodeFailedPrecondition},
		{"plain", fmt.Errorf("boom"), errors.CodeInternal},
		{"canceled", fmt.Errorf("read: %w", context.Canceled), errors.CodeCanceled},
		{"deadline", context.DeadlineExceeded, errors.CodeDeadlineExceeded},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.expected, errors.GetCode(tc.err))
		})
	}
}

func (s *ErrorsTestSuite) TestGetMessage() {
	err := errors.NotFound("user friendly message")
	wrapped := errors.Wrap(err, "wrapped message")

	s.Equal("user friendly message", errors.GetMessage(err))
	s.Equal("wrapped message", errors.GetMessage(wrapped))
	s.Equal("standard error", errors.GetMessage(fmt.Errorf("standard error")))
	s.Equal("value", errors.GetMeta(errors.Wrap(errors.NotFound("x").WithMeta("key", "value"), "w"))["key"])
}

func (s *ErrorsTestSuite) TestHTTPStatus() {
	testCases := []struct {
		code     errors.Code
		expected int
	}{
		{errors.CodeOK, http.StatusOK},
		{errors.CodeNotFound, http.StatusNotFound},
		{errors.CodeInvalidArgument, http.StatusBadRequest},
		{errors.CodeFailedPrecondition, http.StatusBadRequest},
		{errors.CodeAlreadyExists, http.StatusConflict},
		{errors.CodeInternal, http.StatusInternalServerError},
		{errors.CodeUnavailable, http.StatusServiceUnavailable},
		{errors.CodeExternal, http.StatusBadGateway},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Equal(tc.expected, tc.code.HTTPStatus())
		})
	}
}

func (s *ErrorsTestSuite) TestToResponse() {
	s.Run("typed error keeps message and meta", func() {
		status, body := errors.ToResponse(errors.NotFound("Character not found").WithMeta("id", "char_1"))
		s.Equal(http.StatusNotFound, status)
		s.Equal("Character not found", body.Message)
		s.Equal(errors.CodeNotFound, body.Code)
		s.Equal("char_1", body.Meta["id"])
	})

	s.Run("validation fields are lifted", func() {
		err := errors.NewValidationBuilder().RequiredField("prompt").Build()
		status, body := errors.ToResponse(err)
		s.Equal(http.StatusBadRequest, status)
		s.Equal([]string{"is required"}, body.Fields["prompt"])
		s.Nil(body.Meta)
	})

	s.Run("plain error hides cause", func() {
		status, body := errors.ToResponse(fmt.Errorf("dial tcp 10.0.0.1:6379: refused"))
		s.Equal(http.StatusInternalServerError, status)
		s.Equal("internal error", body.Message)
	})
}
