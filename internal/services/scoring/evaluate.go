package scoring

import (
	"fmt"

	"github.com/mcoot/tresmil/internal/model"
)

// Points awarded for singles
const (
	AcePoints  = 100
	KingPoints = 50
)

// BustCount is the number of black faces that busts a roll
const BustCount = 3

// TripleValue is the award for three of a symbol
type TripleValue struct {
	Symbol model.Symbol
	Points int
}

// Triples lists the scoring triples in scan order. The first one found wins.
var Triples = []TripleValue{
	{model.SymbolAce, 1000},
	{model.SymbolKing, 500},
	{model.SymbolQueen, 400},
	{model.SymbolJack, 300},
	{model.SymbolRed, 200},
}

// Result is the outcome of evaluating one roll
type Result struct {
	Points      int
	ScoringDice []model.ScoringDie
	Locked      [model.DiceCount]bool
	Busted      bool
	AllLocked   bool
	Scored      bool

	// Empty is set when every rolled die was already locked; the roll has no effect.
	Empty bool

	Message string
}

// Evaluate scores the dice rolled this action against the current lock vector.
// Dice that were already locked are ignored.
func Evaluate(rolled []model.RolledDie, locked [model.DiceCount]bool) Result {
	result := Result{
		Locked:      locked,
		ScoringDice: []model.ScoringDie{},
	}

	available := make([]model.RolledDie, 0, len(rolled))
	for _, d := range rolled {
		if d.Index < 0 || d.Index >= model.DiceCount || locked[d.Index] {
			continue
		}
		available = append(available, d)
	}
	if len(available) == 0 {
		result.Empty = true
		result.Message = "no dice available to evaluate"
		return result
	}

	counts := make(map[model.Symbol]int, len(model.Alphabet))
	for _, d := range available {
		counts[d.Value]++
	}

	if counts[model.SymbolBlack] >= BustCount {
		result.Busted = true
		result.Message = "bankrupt: three blacks"
		return result
	}

	for _, triple := range Triples {
		if counts[triple.Symbol] < 3 {
			continue
		}
		result.Points += triple.Points
		taken := 0
		for _, d := range available {
			if d.Value != triple.Symbol || taken == 3 {
				continue
			}
			result.Locked[d.Index] = true
			result.ScoringDice = append(result.ScoringDice, model.ScoringDie{
				Index:  d.Index,
				Points: triple.Points / 3,
				Kind:   model.ScoringCombination,
			})
			taken++
		}
		result.Message = fmt.Sprintf("three %s: %d points", triple.Symbol, triple.Points)
		break
	}

	for _, d := range available {
		if result.Locked[d.Index] {
			continue
		}
		points := singlePoints(d.Value)
		if points == 0 {
			continue
		}
		result.Points += points
		result.Locked[d.Index] = true
		result.ScoringDice = append(result.ScoringDice, model.ScoringDie{
			Index:  d.Index,
			Points: points,
			Kind:   model.ScoringIndividual,
		})
	}

	result.Scored = len(result.ScoringDice) > 0
	if !result.Scored {
		result.Message = "no score: pending points lost, turn passes"
		return result
	}
	if result.Message == "" {
		result.Message = fmt.Sprintf("roll scored %d points", result.Points)
	}

	result.AllLocked = true
	for _, l := range result.Locked {
		if !l {
			result.AllLocked = false
			break
		}
	}
	return result
}

func singlePoints(s model.Symbol) int {
	switch s {
	case model.SymbolAce:
		return AcePoints
	case model.SymbolKing:
		return KingPoints
	default:
		return 0
	}
}
