package idgen_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dabidoe/character-foundry/internal/pkg/clock"
	"github.com/dabidoe/character-foundry/internal/pkg/idgen"
)

type IDGenTestSuite struct {
	suite.Suite
}

func TestIDGenSuite(t *testing.T) {
	suite.Run(t, new(IDGenTestSuite))
}

func (s *IDGenTestSuite) TestPrefixedShape() {
	fixed := clock.NewFixed(time.UnixMilli(1718000000123))
	gen := idgen.NewPrefixed("char").WithClock(fixed)

	id := gen.Generate()
	s.Regexp(regexp.MustCompile(`^char_1718000000123_[0-9a-z]{9}$`), id)
	s.NotEqual(id, gen.Generate())
}

func (s *IDGenTestSuite) TestSequential() {
	gen := idgen.NewSequential("roll")
	s.Equal("roll_1", gen.Generate())
	s.Equal("roll_2", gen.Generate())

	bare := idgen.NewSequential("")
	s.Equal("1", bare.Generate())
}

func (s *IDGenTestSuite) TestUUID() {
	s.Regexp(`^item_[0-9a-f-]{36}$`, idgen.NewUUID("item").Generate())
	s.Len(idgen.NewUUID("").Generate(), 36)
}
