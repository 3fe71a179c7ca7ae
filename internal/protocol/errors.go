package protocol

import (
	"errors"

	"github.com/mcoot/tresmil/internal/model"
)

// Error codes sent in error events
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeRateLimited        = "RATE_LIMITED"
	CodeRoomNotFound       = "ROOM_NOT_FOUND"
	CodeRoomFull           = "ROOM_FULL"
	CodeGameAlreadyStarted = "GAME_ALREADY_STARTED"
	CodeAlreadyInRoom      = "ALREADY_IN_ROOM"
	CodeNotInRoom          = "NOT_IN_ROOM"
	CodeNotCreator         = "NOT_CREATOR"
	CodeGameNotStarted     = "GAME_NOT_STARTED"
	CodeGameFinished       = "GAME_FINISHED"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeNoDiceAvailable    = "NO_DICE_AVAILABLE"
	CodeRollInProgress     = "ROLL_IN_PROGRESS"
	CodeInternalError      = "INTERNAL_ERROR"
)

// ErrRateLimited is returned when a connection sends commands too quickly
var ErrRateLimited = errors.New("too many commands, slow down")

// RequestError is a command the server refused to decode
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

func invalidRequest(message string) error {
	return &RequestError{Message: message}
}

// ErrorFromErr maps an error to the payload sent to the offending connection
func ErrorFromErr(err error) model.ErrorPayload {
	var re *RequestError
	if errors.As(err, &re) {
		return model.ErrorPayload{Code: CodeInvalidRequest, Message: re.Message}
	}

	switch {
	case errors.Is(err, ErrRateLimited):
		return model.ErrorPayload{Code: CodeRateLimited, Message: "Too many commands, slow down"}
	case errors.Is(err, model.ErrRoomNotFound):
		return model.ErrorPayload{Code: CodeRoomNotFound, Message: "Room does not exist"}
	case errors.Is(err, model.ErrRoomFull):
		return model.ErrorPayload{Code: CodeRoomFull, Message: "Room is full"}
	case errors.Is(err, model.ErrGameAlreadyStarted):
		return model.ErrorPayload{Code: CodeGameAlreadyStarted, Message: "Game has already started"}
	case errors.Is(err, model.ErrAlreadyInRoom):
		return model.ErrorPayload{Code: CodeAlreadyInRoom, Message: "Already in a room"}
	case errors.Is(err, model.ErrNotInRoom):
		return model.ErrorPayload{Code: CodeNotInRoom, Message: "Not in a room"}
	case errors.Is(err, model.ErrNotCreator):
		return model.ErrorPayload{Code: CodeNotCreator, Message: "Only the room creator can start the game"}
	case errors.Is(err, model.ErrGameNotStarted):
		return model.ErrorPayload{Code: CodeGameNotStarted, Message: "Game has not started"}
	case errors.Is(err, model.ErrGameFinished):
		return model.ErrorPayload{Code: CodeGameFinished, Message: "Game is already finished"}
	case errors.Is(err, model.ErrNotYourTurn):
		return model.ErrorPayload{Code: CodeNotYourTurn, Message: "Not your turn"}
	case errors.Is(err, model.ErrNoDiceAvailable):
		return model.ErrorPayload{Code: CodeNoDiceAvailable, Message: "No dice available to roll"}
	case errors.Is(err, model.ErrRollInProgress):
		return model.ErrorPayload{Code: CodeRollInProgress, Message: "A roll is already in progress"}
	default:
		return model.ErrorPayload{Code: CodeInternalError, Message: "Internal server error"}
	}
}

// ErrorEvent builds the error event sent to the offending connection
func ErrorEvent(variant model.Variant, err error) model.Event {
	return model.Event{
		Type:    model.EventError,
		Variant: variant,
		Payload: ErrorFromErr(err),
	}
}
