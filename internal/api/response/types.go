package response

// Health is the response for the liveness endpoint
type Health struct {
	Status string `json:"status"`
}

// Refresh is the response for the cache refresh endpoint
type Refresh struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// DatabaseCheck reports whether the game store answered a ping
type DatabaseCheck struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
}

// Timing reports check durations formatted like "12ms"
type Timing struct {
	Total string `json:"total"`
}

// RetrievalStats counts what a data retrieval check read back
type RetrievalStats struct {
	GamesRetrieved   int `json:"gamesRetrieved"`
	PlayersRetrieved int `json:"playersRetrieved"`
}

// DataRetrievalCheck is the response for the data retrieval check
type DataRetrievalCheck struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error,omitempty"`
	Timing  *Timing         `json:"timing,omitempty"`
	Stats   *RetrievalStats `json:"stats,omitempty"`
}
