package protocol

import (
	"encoding/json"
	"fmt"
)

type ResizeCommand struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Dpr    float64 `json:"dpr,omitempty"`
}

func NewResizeCommand(width int, height int, dpr float64) Command {
	return &ResizeCommand{
		Width:  width,
		Height: height,
		Dpr:    dpr,
	}
}

func (c *ResizeCommand) GetType() CommandType {
	return CommandTypeResize
}

func (c *ResizeCommand) GetPayload() (json.RawMessage, error) {
	return marshalPayload(c)
}

func buildResizeCommand(payload json.RawMessage) (Command, error) {
	var cmd ResizeCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return nil, fmt.Errorf("failed to parse RESIZE payload: %v", err)
	}

	if cmd.Width <= 0 || cmd.Height <= 0 {
		return nil, fmt.Errorf("RESIZE payload has non-positive dimensions (%dx%d)", cmd.Width, cmd.Height)
	}

	return &cmd, nil
}
