package dice

import (
	"bytes"
	"testing"

	"github.com/mcoot/tresmil/internal/dependencies/mocks"
	"github.com/mcoot/tresmil/internal/dependencies/random"
	"github.com/mcoot/tresmil/internal/model"
	"github.com/stretchr/testify/suite"
)

type ServiceSuite struct {
	suite.Suite
	random  *mocks.MockRandom
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.service = New(s.random)
}

func (s *ServiceSuite) TestRollOneMapsIndexToAlphabet() {
	s.random.QueueIntn(0, 1, 2, 3, 4, 5)

	var got []model.Symbol
	for range model.Alphabet {
		got = append(got, s.service.RollOne())
	}

	s.Equal(model.Alphabet, got)
}

func (s *ServiceSuite) TestRollSequenceLength() {
	s.Len(s.service.RollSequence(12), 12)
	s.Empty(s.service.RollSequence(0))
	s.Empty(s.service.RollSequence(-1))
}

func (s *ServiceSuite) TestRollOnlyAvailableDice() {
	// die 1: twelve frames then a king; die 3: twelve frames then a black
	for range AnimationFrames {
		s.random.QueueIntn(2)
	}
	s.random.QueueIntn(1)
	for range AnimationFrames {
		s.random.QueueIntn(3)
	}
	s.random.QueueIntn(5)

	roll := s.service.Roll([]int{1, 3})

	s.Require().Len(roll.Animations, 2)
	s.Equal(1, roll.Animations[0].Index)
	s.Len(roll.Animations[0].Frames, AnimationFrames)
	s.Equal(model.SymbolQueen, roll.Animations[0].Frames[0])
	s.Equal(3, roll.Animations[1].Index)
	s.Equal(model.SymbolJack, roll.Animations[1].Frames[AnimationFrames-1])

	s.Equal([]model.RolledDie{
		{Index: 1, Value: model.SymbolKing},
		{Index: 3, Value: model.SymbolBlack},
	}, roll.Results)
}

func (s *ServiceSuite) TestRollNothingAvailable() {
	roll := s.service.Roll(nil)
	s.Empty(roll.Animations)
	s.Empty(roll.Results)
}

func (s *ServiceSuite) TestCryptoRandomStaysInAlphabet() {
	service := New(random.New())
	for range 200 {
		s.True(service.RollOne().Valid())
	}
}

func (s *ServiceSuite) TestRollFromFixedSource() {
	service := New(random.NewFromReader(bytes.NewReader([]byte{0x05})))

	s.Equal(model.Alphabet[5], service.RollOne())
	// Once the source runs dry every draw lands on the first face
	s.Equal([]model.Symbol{model.Alphabet[0], model.Alphabet[0]}, service.RollSequence(2))
}
