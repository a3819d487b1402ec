// Package telemetry provides field statistics, perf timing and CSV output.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventSpawn EventType = iota
	EventExpire
	EventDespawn
	EventInflow
)

// Event is a single wisp or field occurrence.
type Event struct {
	Type   EventType
	Tick   int32
	WispID uint32
	Amount float32 // pressure injected, for inflow events
}

// NewSpawnEvent records a wisp being created.
func NewSpawnEvent(tick int32, wispID uint32) Event {
	return Event{Type: EventSpawn, Tick: tick, WispID: wispID}
}

// NewRemoveEvent records a wisp leaving the arena. despawned is true when
// removal was forced rather than the wisp running out of life.
func NewRemoveEvent(tick int32, wispID uint32, despawned bool) Event {
	t := EventExpire
	if despawned {
		t = EventDespawn
	}
	return Event{Type: t, Tick: tick, WispID: wispID}
}

// NewInflowEvent records pressure injected by emitters during one tick.
func NewInflowEvent(tick int32, amount float32) Event {
	return Event{Type: EventInflow, Tick: tick, Amount: amount}
}
