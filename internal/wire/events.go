package wire

import (
	"github.com/tabellone/scoreboard-server/internal/dispatch"
	"github.com/tabellone/scoreboard-server/internal/engine"
)

// ServerEvent is the envelope for every server-to-client message.
type ServerEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

const (
	EventSnapshot   = "snapshot"
	EventAck        = "ack"
	EventEventLog   = "event_log"
	EventIntroVideo = "intro_video"
	EventError      = "error"
)

type AckPayload struct {
	OK bool `json:"ok"`
}

type EventLogPayload struct {
	Entries []dispatch.Entry `json:"entries"`
}

type IntroVideoPayload struct {
	Key string `json:"key"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func SnapshotEvent(snap engine.Snapshot) ServerEvent {
	return ServerEvent{Type: EventSnapshot, Payload: snap}
}

func AckEvent() ServerEvent {
	return ServerEvent{Type: EventAck, Payload: AckPayload{OK: true}}
}

func EventLogEvent(entries []dispatch.Entry) ServerEvent {
	return ServerEvent{Type: EventEventLog, Payload: EventLogPayload{Entries: entries}}
}

func IntroVideoEvent(key string) ServerEvent {
	return ServerEvent{Type: EventIntroVideo, Payload: IntroVideoPayload{Key: key}}
}

func ErrorEvent(message string) ServerEvent {
	return ServerEvent{Type: EventError, Payload: ErrorPayload{Message: message}}
}
