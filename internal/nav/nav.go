// Package nav holds the screen state machine of an interactive session.
// Screens and events are plain values; Next is a pure function.
package nav

import "fmt"

// Kind identifies a screen variant.
type Kind int

const (
	KindInbox Kind = iota
	KindMessage
	KindCompose
)

func (k Kind) String() string {
	switch k {
	case KindInbox:
		return "inbox"
	case KindMessage:
		return "message"
	case KindCompose:
		return "compose"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Screen is the active screen. MessageID is set only for KindMessage.
type Screen struct {
	Kind      Kind
	MessageID string
}

// Inbox returns the inbox screen, which is also the initial screen.
func Inbox() Screen { return Screen{Kind: KindInbox} }

// Message returns the screen showing the message with the given id.
func Message(id string) Screen { return Screen{Kind: KindMessage, MessageID: id} }

// Compose returns the compose screen.
func Compose() Screen { return Screen{Kind: KindCompose} }

func (s Screen) String() string {
	if s.Kind == KindMessage {
		return fmt.Sprintf("message(%s)", s.MessageID)
	}
	return s.Kind.String()
}

// Effect is the backend work a screen needs when it is entered.
type Effect int

const (
	EffectNone Effect = iota
	EffectListInbox
	EffectGetMessage
)

// Entry returns the effect to run on entering s.
func (s Screen) Entry() Effect {
	switch s.Kind {
	case KindInbox:
		return EffectListInbox
	case KindMessage:
		return EffectGetMessage
	default:
		return EffectNone
	}
}

// EventKind identifies a navigation event.
type EventKind int

const (
	EventOpen EventKind = iota + 1
	EventComposeNew
	EventBack
	EventCancel
	EventSent
	EventQuit
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventComposeNew:
		return "compose"
	case EventBack:
		return "back"
	case EventCancel:
		return "cancel"
	case EventSent:
		return "sent"
	case EventQuit:
		return "quit"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is something a screen asks the state machine to do.
type Event struct {
	Kind      EventKind
	MessageID string
}

// Open asks to show the message with the given id.
func Open(id string) Event { return Event{Kind: EventOpen, MessageID: id} }

func ComposeNew() Event { return Event{Kind: EventComposeNew} }
func Back() Event       { return Event{Kind: EventBack} }
func Cancel() Event     { return Event{Kind: EventCancel} }

// Sent reports a successful send from the compose screen.
func Sent() Event { return Event{Kind: EventSent} }

// Quit ends the session. It never changes the screen; the caller terminates.
func Quit() Event { return Event{Kind: EventQuit} }

// Next returns the screen that follows s on ev and whether it differs from s.
// Events that do not apply to s leave it unchanged.
func Next(s Screen, ev Event) (Screen, bool) {
	switch s.Kind {
	case KindInbox:
		switch ev.Kind {
		case EventOpen:
			if ev.MessageID != "" {
				return Message(ev.MessageID), true
			}
		case EventComposeNew:
			return Compose(), true
		}
	case KindMessage:
		switch ev.Kind {
		case EventBack:
			return Inbox(), true
		case EventComposeNew:
			return Compose(), true
		}
	case KindCompose:
		switch ev.Kind {
		case EventCancel, EventSent:
			return Inbox(), true
		}
	}
	return s, false
}
