// Package realtime defines the knowledge-base lifecycle events published to
// downstream consumers (indexers, UIs) over the event bus.
package realtime

import (
	"strconv"
	"time"
)

type EventType string

const (
	EventInfoBaseUploaded          EventType = "infobase.uploaded"
	EventInfoBaseArtifactsRecorded EventType = "infobase.artifacts_recorded"
	EventInfoBaseIndexed           EventType = "infobase.indexed"
	EventInfoBaseDeleted           EventType = "infobase.deleted"
	EventProjectDeleted            EventType = "project.deleted"
)

type Event struct {
	Type EventType `json:"type"`
	// Channel scopes the event, e.g. "project:12".
	Channel string         `json:"channel"`
	Data    map[string]any `json:"data,omitempty"`
	At      time.Time      `json:"at"`
}

func NewEvent(t EventType, projectID uint, data map[string]any) Event {
	return Event{
		Type:    t,
		Channel: ProjectChannel(projectID),
		Data:    data,
		At:      time.Now().UTC(),
	}
}

func ProjectChannel(projectID uint) string {
	return "project:" + strconv.FormatUint(uint64(projectID), 10)
}
