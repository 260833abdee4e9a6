package protocol

import (
	"encoding/json"
	"fmt"
)

// SDKVersion is stamped into every envelope both endpoints produce.
const SDKVersion = "1.0.0"

type Source = string

const (
	SourceHub  Source = "hub"
	SourceGame Source = "game"
)

type CommandType = string

const (
	CommandTypeInit     CommandType = "INIT"
	CommandTypeStart    CommandType = "START"
	CommandTypePause    CommandType = "PAUSE"
	CommandTypeResume   CommandType = "RESUME"
	CommandTypeQuit     CommandType = "QUIT"
	CommandTypeSetState CommandType = "SET_STATE"
	CommandTypeResize   CommandType = "RESIZE"
)

type EventType = string

const (
	EventTypeReady       EventType = "READY"
	EventTypeLoading     EventType = "LOADING"
	EventTypeScoreUpdate EventType = "SCORE_UPDATE"
	EventTypeProgress    EventType = "PROGRESS"
	EventTypeComplete    EventType = "COMPLETE"
	EventTypeError       EventType = "ERROR"
	EventTypeRequestSave EventType = "REQUEST_SAVE"
	EventTypeRequestLoad EventType = "REQUEST_LOAD"
	EventTypeTelemetry   EventType = "TELEMETRY"
)

// Command is a hub-to-game protocol message.
type Command interface {
	GetType() CommandType
	GetPayload() (json.RawMessage, error)
}

// Event is a game-to-hub protocol message.
type Event interface {
	GetEventType() EventType
	GetPayload() (json.RawMessage, error)
}

type commandBuilder = func(payload json.RawMessage) (Command, error)
type eventBuilder = func(payload json.RawMessage) (Event, error)

var commandsRegistry = map[CommandType]commandBuilder{
	CommandTypeInit:     buildInitCommand,
	CommandTypeStart:    buildLifecycleCommand(CommandTypeStart),
	CommandTypePause:    buildLifecycleCommand(CommandTypePause),
	CommandTypeResume:   buildLifecycleCommand(CommandTypeResume),
	CommandTypeQuit:     buildLifecycleCommand(CommandTypeQuit),
	CommandTypeSetState: buildSetStateCommand,
	CommandTypeResize:   buildResizeCommand,
}

var eventsRegistry = map[EventType]eventBuilder{
	EventTypeReady:       buildReadyEvent,
	EventTypeLoading:     buildLoadingEvent,
	EventTypeScoreUpdate: buildScoreUpdateEvent,
	EventTypeProgress:    buildProgressEvent,
	EventTypeComplete:    buildCompleteEvent,
	EventTypeError:       buildErrorEvent,
	EventTypeRequestSave: buildRequestSaveEvent,
	EventTypeRequestLoad: buildRequestLoadEvent,
	EventTypeTelemetry:   buildTelemetryEvent,
}

// ParseCommand decodes the typed command carried by a hub envelope.
func ParseCommand(env Envelope) (Command, error) {
	builder, exists := commandsRegistry[env.Type]
	if !exists {
		return nil, fmt.Errorf("unknown command type: %s", env.Type)
	}
	return builder(env.Payload)
}

// ParseEvent decodes the typed event carried by a game envelope.
func ParseEvent(env Envelope) (Event, error) {
	builder, exists := eventsRegistry[env.Type]
	if !exists {
		return nil, fmt.Errorf("unknown event type: %s", env.Type)
	}
	return builder(env.Payload)
}

func marshalPayload(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %v", err)
	}
	return data, nil
}
