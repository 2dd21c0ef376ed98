package core

import (
	"sync"

	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
)

// System internal event codes. Application should use codes beyond 255.
type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01
	// Keyboard key pressed. Data: *KeyEvent
	EVENT_CODE_KEY_PRESSED EventCode = 0x02
	// Keyboard key released. Data: *KeyEvent
	EVENT_CODE_KEY_RELEASED EventCode = 0x03
	// Mouse button pressed. Data: *MouseEvent
	EVENT_CODE_BUTTON_PRESSED EventCode = 0x04
	// Mouse button released. Data: *MouseEvent
	EVENT_CODE_BUTTON_RELEASED EventCode = 0x05
	// Mouse moved. Data: *MouseEvent
	EVENT_CODE_MOUSE_MOVED EventCode = 0x06
	// Mouse wheel. Data: *MouseEvent
	EVENT_CODE_MOUSE_WHEEL EventCode = 0x07
	// Resized/resolution changed. Data: *SystemEvent
	EVENT_CODE_RESIZED EventCode = 0x08
	// A material definition changed on disk. Data: *MaterialEvent
	EVENT_CODE_MATERIAL_RELOADED EventCode = 0x09

	MAX_EVENT_CODE EventCode = 0xFF
)

type EventContext struct {
	Type EventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseEvent struct {
	Button Button
	PosX   uint16
	PosY   uint16
	Scroll int8
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type MaterialEvent struct {
	Path     string
	Material *metadata.MaterialConfig
}

// Should return true if handled.
type FnOnEvent func(context EventContext) bool

type ListenerID uint32

type registeredEvent struct {
	id       ListenerID
	callback FnOnEvent
}

// EventSystem dispatches events synchronously to registered listeners, in
// registration order, until one of them reports the event as handled.
type EventSystem struct {
	mu         sync.RWMutex
	registered map[EventCode][]*registeredEvent
	nextID     ListenerID
}

func NewEventSystem() *EventSystem {
	return &EventSystem{
		registered: make(map[EventCode][]*registeredEvent),
	}
}

// Register adds a listener for the given code and returns its id, which is
// needed to unregister it.
func (es *EventSystem) Register(code EventCode, onEvent FnOnEvent) ListenerID {
	es.mu.Lock()
	defer es.mu.Unlock()

	es.nextID++
	es.registered[code] = append(es.registered[code], &registeredEvent{
		id:       es.nextID,
		callback: onEvent,
	})
	return es.nextID
}

func (es *EventSystem) Unregister(code EventCode, id ListenerID) bool {
	es.mu.Lock()
	defer es.mu.Unlock()

	events := es.registered[code]
	for i, e := range events {
		if e.id == id {
			es.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	// Not found.
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 */
func (es *EventSystem) Fire(context EventContext) bool {
	es.mu.RLock()
	events := make([]*registeredEvent, len(es.registered[context.Type]))
	copy(events, es.registered[context.Type])
	es.mu.RUnlock()

	for _, e := range events {
		if e.callback(context) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}

func (es *EventSystem) Shutdown() error {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.registered = make(map[EventCode][]*registeredEvent)
	return nil
}
