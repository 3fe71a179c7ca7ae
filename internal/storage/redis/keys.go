package redis

import (
	"fmt"

	"github.com/mcoot/tresmil/internal/model"
)

// Key prefix for all persisted data
const keyPrefix = "tresmil"

// gameKey returns the Redis key for a GameRecord
func gameKey(id string) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gamesByModeIndexKey returns the Redis key for the ZSET of game ids of one mode, scored by timestamp
func gamesByModeIndexKey(mode model.GameMode) string {
	return fmt.Sprintf("%s:idx:games:%s", keyPrefix, mode)
}

// playerStatsKey returns the Redis key for a player's stats
func playerStatsKey(key string) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, key)
}

// playerStatsIndexKey returns the Redis key for the SET of all player stats keys
func playerStatsIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}
