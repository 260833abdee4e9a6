package protocol

import (
	"encoding/json"
	"fmt"
)

type InitCommand struct {
	Context LaunchContext
}

func NewInitCommand(context LaunchContext) Command {
	return &InitCommand{
		Context: context,
	}
}

func (c *InitCommand) GetType() CommandType {
	return CommandTypeInit
}

func (c *InitCommand) GetPayload() (json.RawMessage, error) {
	return marshalPayload(c.Context)
}

func buildInitCommand(payload json.RawMessage) (Command, error) {
	var context LaunchContext
	if err := json.Unmarshal(payload, &context); err != nil {
		return nil, fmt.Errorf("failed to parse INIT payload: %v", err)
	}

	if context.SessionID == "" {
		return nil, fmt.Errorf("INIT payload is missing a session id")
	}

	return &InitCommand{Context: context}, nil
}
