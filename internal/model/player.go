package model

// ConnID is the ephemeral identifier of a live transport connection.
// It is the only identity a player has.
type ConnID string

// Player is a seat in a room, bound to the connection that took it
type Player struct {
	ConnID            ConnID
	Name              string
	Scores            []int // banked score per finished turn
	CurrentRoundScore int   // pending, not yet banked
	TotalScore        int   // always sum(Scores)
}

// NewPlayer creates a player with no recorded scores
func NewPlayer(conn ConnID, name string) *Player {
	return &Player{
		ConnID: conn,
		Name:   name,
		Scores: []int{},
	}
}

// Bank appends points to the banked scores and clears the pending score.
func (p *Player) Bank(points int) {
	p.Scores = append(p.Scores, points)
	p.CurrentRoundScore = 0
	p.recompute()
}

// ResetScores wipes every banked and pending point (bankruptcy)
func (p *Player) ResetScores() {
	p.Scores = []int{}
	p.CurrentRoundScore = 0
	p.recompute()
}

func (p *Player) recompute() {
	total := 0
	for _, s := range p.Scores {
		total += s
	}
	p.TotalScore = total
}

// Snapshot returns an immutable copy suitable for events and persistence
func (p *Player) Snapshot() PlayerSnapshot {
	scores := make([]int, len(p.Scores))
	copy(scores, p.Scores)
	return PlayerSnapshot{
		ID:                string(p.ConnID),
		Name:              p.Name,
		Scores:            scores,
		CurrentRoundScore: p.CurrentRoundScore,
		TotalScore:        p.TotalScore,
	}
}

// PlayerSnapshot is the serialisable view of a player
type PlayerSnapshot struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Scores            []int  `json:"scores"`
	CurrentRoundScore int    `json:"currentRoundScore"`
	TotalScore        int    `json:"totalScore"`
}

// Snapshots converts a player list preserving order
func Snapshots(players []*Player) []PlayerSnapshot {
	out := make([]PlayerSnapshot, len(players))
	for i, p := range players {
		out[i] = p.Snapshot()
	}
	return out
}
