// Package catalog records request-handler, behavior, and
// notification-handler associations. The catalog is mutable during
// composition, then frozen and read-only for the process lifetime.
package catalog

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/dualizor/dualizor/internal/logger"
	"github.com/dualizor/dualizor/pkg/registry"
	"github.com/dualizor/dualizor/pkg/types"
)

// Source records how a binding entered the catalog
type Source string

const (
	SourceManual     Source = "manual"
	SourceDiscovered Source = "discovered"
)

// HandlerBinding associates a concrete request type with one handler
// implementation. At most one binding per request type is valid at
// validation time; the catalog itself records every binding so defects
// are observable.
type HandlerBinding struct {
	RequestType reflect.Type
	Key         string
	Lifetime    registry.Lifetime
	Factory     registry.Factory
	Source      Source
}

// BehaviorBinding registers a middleware behavior with explicit
// ordering. Behaviors sort by (Order ascending, registration sequence
// ascending).
type BehaviorBinding struct {
	Key      string
	Order    int
	Lifetime registry.Lifetime
	Factory  registry.Factory
	Source   Source

	// Matches reports whether the behavior applies to a request type.
	// A nil Matches applies to every request type.
	Matches func(reflect.Type) bool

	seq int
}

// NotificationBinding associates a notification type with one of many
// handler implementations. No uniqueness constraint applies.
type NotificationBinding struct {
	NotificationType reflect.Type
	Key              string
	Lifetime         registry.Lifetime
	Factory          registry.Factory
	Source           Source
}

// HandlerKey returns the registry key a named handler implementation
// for a request type is registered and resolved under. Keys are unique
// per implementation so over-binding a request type stays observable.
func HandlerKey(t reflect.Type, name string) string {
	return "handler:" + t.String() + "#" + name
}

// NotificationKey returns the registry key a named notification
// handler implementation is registered and resolved under.
func NotificationKey(t reflect.Type, name string) string {
	return "notification:" + t.String() + "#" + name
}

// BehaviorKey returns the registry key a named behavior is registered
// and resolved under.
func BehaviorKey(name string) string {
	return "behavior:" + name
}

// Catalog is the aggregate of all registrations. It is owned by the
// composition root; the dispatch engine and notification publisher
// hold only a read reference after Freeze.
type Catalog struct {
	mu            sync.RWMutex
	handlers      map[reflect.Type][]HandlerBinding
	declared      map[reflect.Type]bool
	behaviors     []BehaviorBinding
	notifications map[reflect.Type][]NotificationBinding
	nextSeq       int
	frozen        bool
	logger        *logger.Logger
}

// New creates an empty catalog
func New(log *logger.Logger) *Catalog {
	if log == nil {
		log = logger.Global()
	}

	return &Catalog{
		handlers:      make(map[reflect.Type][]HandlerBinding),
		declared:      make(map[reflect.Type]bool),
		notifications: make(map[reflect.Type][]NotificationBinding),
		logger:        log.With("component", "catalog"),
	}
}

// RegisterHandler records a handler binding for a concrete request
// type. Registering the identical (request type, key) pair twice is a
// no-op. Distinct keys for the same request type are recorded as
// additional bindings; the startup validator reports them as defects.
func (c *Catalog) RegisterHandler(b HandlerBinding) error {
	if err := validateHandlerBinding(b); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return types.NewError(types.ErrCodeConfigClosed, "catalog is frozen")
	}

	for _, existing := range c.handlers[b.RequestType] {
		if existing.Key == b.Key {
			return nil
		}
	}

	c.handlers[b.RequestType] = append(c.handlers[b.RequestType], b)
	c.declared[b.RequestType] = true
	c.logger.Debug("Handler registered",
		"request_type", b.RequestType.String(),
		"key", b.Key,
		"source", b.Source)

	return nil
}

// DeclareRequest records a request type with no binding yet. Declared
// types participate in startup validation, so a declared type that
// never receives a handler surfaces as a cardinality defect.
func (c *Catalog) DeclareRequest(t reflect.Type) error {
	if t == nil {
		return types.NewError(types.ErrCodeInvalid, "request type cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return types.NewError(types.ErrCodeConfigClosed, "catalog is frozen")
	}

	c.declared[t] = true
	return nil
}

// RegisterBehavior records a behavior binding. Registering the same
// key twice is a no-op.
func (c *Catalog) RegisterBehavior(b BehaviorBinding) error {
	if b.Key == "" {
		return types.NewError(types.ErrCodeInvalid, "behavior key cannot be empty")
	}
	if b.Factory == nil {
		return types.NewError(types.ErrCodeInvalid, "behavior factory cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return types.NewError(types.ErrCodeConfigClosed, "catalog is frozen")
	}

	for _, existing := range c.behaviors {
		if existing.Key == b.Key {
			return nil
		}
	}

	b.seq = c.nextSeq
	c.nextSeq++
	c.behaviors = append(c.behaviors, b)
	c.logger.Debug("Behavior registered", "key", b.Key, "order", b.Order, "source", b.Source)

	return nil
}

// RegisterNotificationHandler records a notification handler binding.
// Registering the identical (notification type, key) pair twice is a
// no-op. Zero or many bindings per notification type are permitted.
func (c *Catalog) RegisterNotificationHandler(b NotificationBinding) error {
	if b.NotificationType == nil {
		return types.NewError(types.ErrCodeInvalid, "notification type cannot be nil")
	}
	if b.Key == "" {
		return types.NewError(types.ErrCodeInvalid, "notification handler key cannot be empty")
	}
	if b.Factory == nil {
		return types.NewError(types.ErrCodeInvalid, "notification handler factory cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return types.NewError(types.ErrCodeConfigClosed, "catalog is frozen")
	}

	for _, existing := range c.notifications[b.NotificationType] {
		if existing.Key == b.Key {
			return nil
		}
	}

	c.notifications[b.NotificationType] = append(c.notifications[b.NotificationType], b)
	c.logger.Debug("Notification handler registered",
		"notification_type", b.NotificationType.String(),
		"key", b.Key,
		"source", b.Source)

	return nil
}

// Candidate is one discoverable registration. Exactly one field should
// be set. Candidates replace open-ended runtime type scanning: the
// host supplies the enumeration explicitly.
type Candidate struct {
	Handler      *HandlerBinding
	Behavior     *BehaviorBinding
	Notification *NotificationBinding
	Request      reflect.Type
}

// DiscoveryFlags gates discovery per registration category
type DiscoveryFlags struct {
	Handlers      bool
	Behaviors     bool
	Notifications bool
}

// Discover applies a host-supplied candidate set to the catalog.
// Manual registrations always win: a request type that already has any
// binding is never overwritten, and behavior keys already present are
// skipped. Each category is skipped entirely when its flag is false.
func (c *Catalog) Discover(candidates []Candidate, flags DiscoveryFlags) error {
	for _, cand := range candidates {
		switch {
		case cand.Handler != nil:
			if !flags.Handlers {
				continue
			}
			if c.hasHandlerBinding(cand.Handler.RequestType) {
				c.logger.Debug("Discovery skipped, request type already bound",
					"request_type", cand.Handler.RequestType.String())
				continue
			}
			b := *cand.Handler
			b.Source = SourceDiscovered
			if err := c.RegisterHandler(b); err != nil {
				return err
			}

		case cand.Behavior != nil:
			if !flags.Behaviors {
				continue
			}
			b := *cand.Behavior
			b.Source = SourceDiscovered
			if err := c.RegisterBehavior(b); err != nil {
				return err
			}

		case cand.Notification != nil:
			if !flags.Notifications {
				continue
			}
			b := *cand.Notification
			b.Source = SourceDiscovered
			if err := c.RegisterNotificationHandler(b); err != nil {
				return err
			}

		case cand.Request != nil:
			if err := c.DeclareRequest(cand.Request); err != nil {
				return err
			}

		default:
			return types.NewError(types.ErrCodeInvalid, "empty discovery candidate")
		}
	}

	return nil
}

func (c *Catalog) hasHandlerBinding(t reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handlers[t]) > 0
}

// Freeze closes the catalog for mutation. Behaviors are sorted once by
// (order ascending, registration sequence ascending); all reads after
// Freeze observe immutable state.
func (c *Catalog) Freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return
	}

	sort.SliceStable(c.behaviors, func(i, j int) bool {
		if c.behaviors[i].Order != c.behaviors[j].Order {
			return c.behaviors[i].Order < c.behaviors[j].Order
		}
		return c.behaviors[i].seq < c.behaviors[j].seq
	})

	c.frozen = true
	c.logger.Info("Catalog frozen",
		"request_types", len(c.declared),
		"behaviors", len(c.behaviors),
		"notification_types", len(c.notifications))
}

// Frozen reports whether the catalog has been frozen
func (c *Catalog) Frozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frozen
}

// Binding returns the effective handler binding for a request type.
// When a type is over-bound (a cardinality defect tolerated by a
// non-throw validation mode), the last-bound handler wins, matching
// the registry tie-break.
func (c *Catalog) Binding(t reflect.Type) (HandlerBinding, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bindings := c.handlers[t]
	if len(bindings) == 0 {
		return HandlerBinding{}, types.NewError(types.ErrCodeUnresolvedHandler,
			fmt.Sprintf("no handler registered for request type: %s", t.String()))
	}

	return bindings[len(bindings)-1], nil
}

// Bindings returns every handler binding recorded for a request type
func (c *Catalog) Bindings(t reflect.Type) []HandlerBinding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]HandlerBinding{}, c.handlers[t]...)
}

// BehaviorsFor returns the behavior bindings applicable to a request
// type in execution order.
func (c *Catalog) BehaviorsFor(t reflect.Type) []BehaviorBinding {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matched := make([]BehaviorBinding, 0, len(c.behaviors))
	for _, b := range c.behaviors {
		if b.Matches == nil || b.Matches(t) {
			matched = append(matched, b)
		}
	}

	if !c.frozen {
		// Freeze sorts once; before that, sort per read.
		sort.SliceStable(matched, func(i, j int) bool {
			if matched[i].Order != matched[j].Order {
				return matched[i].Order < matched[j].Order
			}
			return matched[i].seq < matched[j].seq
		})
	}

	return matched
}

// NotificationBindings returns the notification handler bindings for a
// notification type in registration order. An empty result is valid.
func (c *Catalog) NotificationBindings(t reflect.Type) []NotificationBinding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]NotificationBinding{}, c.notifications[t]...)
}

// Behaviors returns every behavior binding in execution order
func (c *Catalog) Behaviors() []BehaviorBinding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]BehaviorBinding{}, c.behaviors...)
}

// NotificationTypes returns every notification type with at least one
// binding.
func (c *Catalog) NotificationTypes() []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]reflect.Type, 0, len(c.notifications))
	for t := range c.notifications {
		out = append(out, t)
	}
	return out
}

// RequestTypes returns every request type known to the catalog,
// declared or bound.
func (c *Catalog) RequestTypes() []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]reflect.Type, 0, len(c.declared))
	for t := range c.declared {
		out = append(out, t)
	}
	return out
}

func validateHandlerBinding(b HandlerBinding) error {
	if b.RequestType == nil {
		return types.NewError(types.ErrCodeInvalid, "request type cannot be nil")
	}
	if b.Key == "" {
		return types.NewError(types.ErrCodeInvalid, "handler key cannot be empty")
	}
	if b.Factory == nil {
		return types.NewError(types.ErrCodeInvalid, "handler factory cannot be nil")
	}
	return nil
}
