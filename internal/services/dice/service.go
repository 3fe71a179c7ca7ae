package dice

import (
	"github.com/mcoot/tresmil/internal/dependencies/random"
	"github.com/mcoot/tresmil/internal/model"
)

// AnimationFrames is the number of faces shown per die before the final one
const AnimationFrames = 12

// Service rolls dice. Rolls are only ever produced server-side.
type Service struct {
	random random.Random
}

// New creates a new dice Service
func New(random random.Random) *Service {
	return &Service{random: random}
}

// RollOne draws a single face uniformly from the alphabet
func (s *Service) RollOne() model.Symbol {
	return model.Alphabet[s.random.Intn(len(model.Alphabet))]
}

// RollSequence draws n independent faces
func (s *Service) RollSequence(n int) []model.Symbol {
	if n <= 0 {
		return []model.Symbol{}
	}
	out := make([]model.Symbol, n)
	for i := range out {
		out[i] = s.RollOne()
	}
	return out
}

// Roll is a server-side roll of some subset of the dice
type Roll struct {
	Animations []model.DieAnimation
	Results    []model.RolledDie
}

// Roll produces an animation sequence and a final face for each index in available
func (s *Service) Roll(available []int) Roll {
	roll := Roll{
		Animations: make([]model.DieAnimation, 0, len(available)),
		Results:    make([]model.RolledDie, 0, len(available)),
	}
	for _, idx := range available {
		roll.Animations = append(roll.Animations, model.DieAnimation{
			Index:  idx,
			Frames: s.RollSequence(AnimationFrames),
		})
		roll.Results = append(roll.Results, model.RolledDie{
			Index: idx,
			Value: s.RollOne(),
		})
	}
	return roll
}
