package config

import "fmt"

type EventChannelStruct struct {
	prefix string
}

func NewEventChannelStruct(prefix string) *EventChannelStruct {
	return &EventChannelStruct{prefix: prefix}
}

// All returns the Pub/Sub channel every change event is published to.
func (e *EventChannelStruct) All() string {
	return fmt.Sprintf("%s:events", e.prefix)
}

// Entity returns the Pub/Sub channel for one entity type ("subject", "competency").
func (e *EventChannelStruct) Entity(entity string) string {
	return fmt.Sprintf("%s:events:%s", e.prefix, entity)
}

var EventChannel = NewEventChannelStruct("evaluation")
