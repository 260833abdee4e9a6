package protocol

import "encoding/json"

// SetStateCommand restores a previously saved game state blob. The hub does
// not interpret the payload.
type SetStateCommand struct {
	State json.RawMessage
}

func NewSetStateCommand(state json.RawMessage) Command {
	return &SetStateCommand{
		State: state,
	}
}

func (c *SetStateCommand) GetType() CommandType {
	return CommandTypeSetState
}

func (c *SetStateCommand) GetPayload() (json.RawMessage, error) {
	return c.State, nil
}

func buildSetStateCommand(payload json.RawMessage) (Command, error) {
	return &SetStateCommand{State: payload}, nil
}
