package types

// Kind classifies a message for dispatch purposes
type Kind string

const (
	// KindRequest is a plain request handled by exactly one handler
	KindRequest Kind = "request"
	// KindCommand is a state-changing request; dispatched identically to KindRequest
	KindCommand Kind = "command"
	// KindQuery is a read-only request; dispatched identically to KindRequest
	KindQuery Kind = "query"
	// KindNotification is a broadcast event delivered to zero or more handlers
	KindNotification Kind = "notification"
)

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}

// Message is the capability tag shared by all dispatchable values.
// A message is immutable data; it carries no behavior of its own.
type Message interface {
	MessageKind() Kind
}

// Request is a message handled by exactly one handler, optionally
// producing a response. Commands and queries are semantic subtypes;
// the engine treats all three kinds identically.
type Request interface {
	Message
	isRequest()
}

// Notification is a broadcast event message. Unlike requests, many
// handlers may subscribe to a single notification type.
type Notification interface {
	Message
	isNotification()
}

// RequestTag marks a value type as a plain request.
// Embed it in a request struct:
//
//	type Ping struct {
//	    types.RequestTag
//	    Seq int
//	}
type RequestTag struct{}

func (RequestTag) MessageKind() Kind { return KindRequest }
func (RequestTag) isRequest()        {}

// CommandTag marks a value type as a command (state-changing intent)
type CommandTag struct{}

func (CommandTag) MessageKind() Kind { return KindCommand }
func (CommandTag) isRequest()        {}

// QueryTag marks a value type as a query (read-only intent)
type QueryTag struct{}

func (QueryTag) MessageKind() Kind { return KindQuery }
func (QueryTag) isRequest()        {}

// NotificationTag marks a value type as a notification
type NotificationTag struct{}

func (NotificationTag) MessageKind() Kind { return KindNotification }
func (NotificationTag) isNotification()   {}
