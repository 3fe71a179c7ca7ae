package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrGameAlreadyStarted = errors.New("game has already started")
	ErrAlreadyInRoom      = errors.New("connection is already in a room")
	ErrNotInRoom          = errors.New("connection is not in a room")
	ErrNotCreator         = errors.New("only the room creator can start the game")

	// Turn errors
	ErrGameNotStarted = errors.New("game has not started")
	ErrGameFinished   = errors.New("game is already finished")
	ErrNotYourTurn    = errors.New("it is not your turn")

	// Dice errors
	ErrNoDiceAvailable = errors.New("no dice available to roll")
	ErrRollInProgress  = errors.New("a roll is already in progress")

	// Persistence errors
	ErrPlayerStatsNotFound = errors.New("player stats not found")
	ErrPersistenceFailure  = errors.New("persistence failure")
)
