package ecs

import "github.com/jakecoffman/cp"

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

const EventCollision = "collision"

// CollisionEvent records one overlapping pair found during a physics pass.
type CollisionEvent struct {
	A, B ID
	// Axis is "x" or "y".
	Axis string
	MTV  cp.Vector
	// Static is set when B is a scene tile body.
	Static bool
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Collisions returns the queued collision events without draining.
func (q *EventQueue) Collisions() []CollisionEvent {
	if q == nil {
		return nil
	}
	var out []CollisionEvent
	for _, evt := range q.items {
		if ce, ok := evt.Data.(CollisionEvent); ok && evt.Type == EventCollision {
			out = append(out, ce)
		}
	}
	return out
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
