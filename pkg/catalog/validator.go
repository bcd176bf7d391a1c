package catalog

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/dualizor/dualizor/internal/logger"
	"github.com/dualizor/dualizor/pkg/types"
)

// ValidationMode governs the reaction to registration defects found at
// composition time.
type ValidationMode string

const (
	// ModeThrow fails composition on the first validation pass with defects
	ModeThrow ValidationMode = "throw"
	// ModeLog records each defect and continues
	ModeLog ValidationMode = "log"
	// ModeIgnore continues silently
	ModeIgnore ValidationMode = "ignore"
)

// ParseValidationMode converts a string to a ValidationMode
func ParseValidationMode(s string) (ValidationMode, error) {
	switch strings.ToLower(s) {
	case "throw":
		return ModeThrow, nil
	case "log":
		return ModeLog, nil
	case "ignore":
		return ModeIgnore, nil
	default:
		return "", types.NewError(types.ErrCodeInvalid, "unknown validation mode: "+s)
	}
}

// Defect describes a request type bound to zero or more than one
// handler.
type Defect struct {
	RequestType reflect.Type
	Bindings    int
}

// String returns a human readable description of the defect
func (d Defect) String() string {
	if d.Bindings == 0 {
		return fmt.Sprintf("request type %s has no handler", d.RequestType.String())
	}
	return fmt.Sprintf("request type %s has %d handlers", d.RequestType.String(), d.Bindings)
}

// Defects inspects the registration graph and returns every
// handler-cardinality defect: a request type with zero or with more
// than one handler binding. Notification handlers are never inspected;
// their multiplicity is unconstrained.
func (c *Catalog) Defects() []Defect {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var defects []Defect
	for t := range c.declared {
		n := len(c.handlers[t])
		if n != 1 {
			defects = append(defects, Defect{RequestType: t, Bindings: n})
		}
	}

	sort.Slice(defects, func(i, j int) bool {
		return defects[i].RequestType.String() < defects[j].RequestType.String()
	})

	return defects
}

// Validate runs the startup validation pass once, at composition time.
// ModeThrow returns an aggregate error so the engine never starts with
// a defective graph; ModeLog warns per defect and continues; ModeIgnore
// continues silently.
func Validate(c *Catalog, mode ValidationMode, log *logger.Logger) error {
	if log == nil {
		log = logger.Global()
	}
	log = log.With("component", "startup_validator")

	defects := c.Defects()
	if len(defects) == 0 {
		log.Debug("Startup validation passed", "request_types", len(c.RequestTypes()))
		return nil
	}

	switch mode {
	case ModeIgnore:
		return nil

	case ModeLog:
		for _, d := range defects {
			log.Warn("Handler cardinality defect",
				"request_type", d.RequestType.String(),
				"bindings", d.Bindings)
		}
		return nil

	default:
		descriptions := make([]string, len(defects))
		for i, d := range defects {
			descriptions[i] = d.String()
		}
		return types.NewError(types.ErrCodeHandlerCardinality,
			fmt.Sprintf("%d registration defect(s): %s", len(defects), strings.Join(descriptions, "; ")))
	}
}
