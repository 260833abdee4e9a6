package protocol

import "encoding/json"

// LifecycleCommand covers the payload-free hub commands: START, PAUSE,
// RESUME and QUIT.
type LifecycleCommand struct {
	Type CommandType
}

func NewStartCommand() Command  { return &LifecycleCommand{Type: CommandTypeStart} }
func NewPauseCommand() Command  { return &LifecycleCommand{Type: CommandTypePause} }
func NewResumeCommand() Command { return &LifecycleCommand{Type: CommandTypeResume} }
func NewQuitCommand() Command   { return &LifecycleCommand{Type: CommandTypeQuit} }

func (c *LifecycleCommand) GetType() CommandType {
	return c.Type
}

func (c *LifecycleCommand) GetPayload() (json.RawMessage, error) {
	return nil, nil
}

func buildLifecycleCommand(commandType CommandType) commandBuilder {
	return func(_ json.RawMessage) (Command, error) {
		return &LifecycleCommand{Type: commandType}, nil
	}
}
