package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcoot/tresmil/internal/model"
)

// InboundFrame is the JSON shape of a client command
type InboundFrame struct {
	Type       CommandType   `json:"type"`
	Variant    model.Variant `json:"variant,omitempty"`
	PlayerName string        `json:"playerName,omitempty"`
	MaxPlayers int           `json:"maxPlayers,omitempty"`
	RoomCode   string        `json:"roomCode,omitempty"`
	Limit      int           `json:"limit,omitempty"`
}

// OutboundFrame is the JSON shape of a server event
type OutboundFrame struct {
	Type    model.EventType `json:"type"`
	Variant model.Variant   `json:"variant,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// impliedVariant returns the variant a command belongs to when it only exists in one
func impliedVariant(t CommandType) (model.Variant, bool) {
	switch t {
	case CmdIncreaseScore, CmdDecreaseScore, CmdBankrupt, CmdFinishTurn:
		return model.VariantSimple, true
	case CmdRequestDiceRoll, CmdDiceFinishTurn, CmdDiceBankrupt, CmdDiceResetDice:
		return model.VariantDice, true
	}
	return "", false
}

// DecodeCommand parses and validates a client frame
func DecodeCommand(data []byte) (Command, error) {
	var frame InboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, invalidRequest("malformed frame")
	}
	return frame.Command()
}

// Command validates the frame and converts it into a typed command
func (f InboundFrame) Command() (Command, error) {
	variant := f.Variant
	if implied, ok := impliedVariant(f.Type); ok {
		if variant != "" && variant != implied {
			return nil, invalidRequest(fmt.Sprintf("%s is a %s command", f.Type, implied))
		}
		variant = implied
	}
	if variant == "" {
		variant = model.VariantSimple
	}
	if !variant.Valid() {
		return nil, invalidRequest(fmt.Sprintf("unknown variant %q", variant))
	}
	sc := scope{variant}

	switch f.Type {
	case CmdCreateRoom:
		if f.MaxPlayers < 0 {
			return nil, invalidRequest("maxPlayers must not be negative")
		}
		return CreateRoom{scope: sc, PlayerName: strings.TrimSpace(f.PlayerName), MaxPlayers: f.MaxPlayers}, nil
	case CmdJoinRoom:
		code := strings.ToUpper(strings.TrimSpace(f.RoomCode))
		if code == "" {
			return nil, invalidRequest("roomCode is required")
		}
		return JoinRoom{scope: sc, PlayerName: strings.TrimSpace(f.PlayerName), RoomCode: model.RoomCode(code)}, nil
	case CmdStartGame:
		return StartGame{sc}, nil
	case CmdLeaveRoom:
		return LeaveRoom{sc}, nil
	case CmdIncreaseScore:
		return AdjustScore{scope: sc, Increase: true}, nil
	case CmdDecreaseScore:
		return AdjustScore{scope: sc, Increase: false}, nil
	case CmdBankrupt, CmdDiceBankrupt:
		return Bankrupt{sc}, nil
	case CmdFinishTurn, CmdDiceFinishTurn:
		return FinishTurn{sc}, nil
	case CmdRequestDiceRoll:
		return RequestDiceRoll{sc}, nil
	case CmdDiceResetDice:
		return ResetDice{sc}, nil
	case CmdGetGameHistory:
		limit := f.Limit
		if limit <= 0 {
			limit = HistoryRequestLimit
		}
		return GetGameHistory{scope: sc, Limit: limit}, nil
	case CmdGetPlayerStats:
		return GetPlayerStats{sc}, nil
	case "":
		return nil, invalidRequest("type is required")
	default:
		return nil, invalidRequest(fmt.Sprintf("unknown command %q", f.Type))
	}
}

// EncodeEvent renders an event as an outbound frame
func EncodeEvent(evt model.Event) ([]byte, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", evt.Type, err)
	}
	return json.Marshal(OutboundFrame{
		Type:    evt.Type,
		Variant: evt.Variant,
		Payload: payload,
	})
}

// DecodeEvent parses an outbound frame. Used by clients.
func DecodeEvent(data []byte) (OutboundFrame, error) {
	var frame OutboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return OutboundFrame{}, fmt.Errorf("decode event: %w", err)
	}
	if frame.Type == "" {
		return OutboundFrame{}, fmt.Errorf("decode event: missing type")
	}
	return frame, nil
}
