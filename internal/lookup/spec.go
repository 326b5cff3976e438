// Package lookup implements the $bidirectionalGraphLookup stage: a pull-based
// pipeline stage that, for each input document, searches a collection from the
// startWith values toward the target values and writes the path found into
// the as field.
package lookup

import (
	"fmt"
	"math"

	"github.com/persistorai/pathfinder/internal/models"
)

// StageName is the key a stage definition is wrapped in.
const StageName = "$bidirectionalGraphLookup"

// Spec is a parsed stage definition.
type Spec struct {
	From             string
	As               string
	ConnectFromField string
	ConnectToField   string
	StartWith        Expression
	Target           Expression
	Restrict         models.Filter
	DepthField       string
	MaxDepth         *int

	// MaxMemoryBytes overrides the engine memory ceiling when positive.
	MaxMemoryBytes int64

	// SingleShot and StopAtFirstMeeting override service defaults when set.
	SingleShot         *bool
	StopAtFirstMeeting *bool
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrInvalidStageSpec, fmt.Sprintf(format, args...))
}

// ParseStage parses a definition, unwrapping {"$bidirectionalGraphLookup": {...}} when present.
func ParseStage(raw map[string]any) (*Spec, error) {
	if inner, ok := raw[StageName]; ok {
		if len(raw) != 1 {
			return nil, invalid("%s must be the only key of the stage", StageName)
		}

		m, ok := asObject(inner)
		if !ok {
			return nil, invalid("the %s stage specification must be an object", StageName)
		}

		return ParseSpec(m)
	}

	return ParseSpec(raw)
}

// ParseSpec validates a stage specification object.
func ParseSpec(raw map[string]any) (*Spec, error) {
	s := &Spec{}

	var startSeen, targetSeen bool

	for name, v := range raw {
		var err error

		switch name {
		case "from":
			s.From, err = stringArg(name, v)
		case "as":
			s.As, err = pathArg(name, v)
		case "connectFromField":
			s.ConnectFromField, err = pathArg(name, v)
		case "connectToField":
			s.ConnectToField, err = pathArg(name, v)
		case "depthField":
			s.DepthField, err = pathArg(name, v)
		case "startWith":
			s.StartWith, err = ParseExpression(v)
			startSeen = true
		case "target":
			s.Target, err = ParseExpression(v)
			targetSeen = true
		case "restrictSearchWithMatch":
			m, ok := asObject(v)
			if !ok {
				return nil, invalid("restrictSearchWithMatch must be an object")
			}

			s.Restrict = models.Filter(m)
		case "maxDepth":
			var n int64

			n, err = integerArg(name, v)
			if err == nil && n < 0 {
				err = invalid("maxDepth must be non-negative")
			}

			if err == nil {
				d := int(n)
				s.MaxDepth = &d
			}
		case "maxMemoryBytes":
			s.MaxMemoryBytes, err = integerArg(name, v)
			if err == nil && s.MaxMemoryBytes <= 0 {
				err = invalid("maxMemoryBytes must be positive")
			}
		case "singleShot":
			s.SingleShot, err = boolArg(name, v)
		case "stopAtFirstMeeting":
			s.StopAtFirstMeeting, err = boolArg(name, v)
		default:
			return nil, invalid("unknown argument %q", name)
		}

		if err != nil {
			if name == "startWith" || name == "target" {
				return nil, fmt.Errorf("%s: %w", name, err)
			}

			return nil, err
		}
	}

	for name, val := range map[string]string{
		"from":             s.From,
		"as":               s.As,
		"connectFromField": s.ConnectFromField,
		"connectToField":   s.ConnectToField,
	} {
		if val == "" {
			return nil, invalid("missing '%s' option", name)
		}
	}

	if !startSeen {
		return nil, invalid("missing 'startWith' option")
	}

	if !targetSeen {
		return nil, invalid("missing 'target' option")
	}

	return s, nil
}

// Serialize renders the spec in its wrapped stage form.
func (s *Spec) Serialize() map[string]any {
	spec := map[string]any{
		"from":             s.From,
		"as":               s.As,
		"connectFromField": s.ConnectFromField,
		"connectToField":   s.ConnectToField,
		"startWith":        s.StartWith.Serialize(),
		"target":           s.Target.Serialize(),
	}

	if s.Restrict != nil {
		spec["restrictSearchWithMatch"] = map[string]any(s.Restrict)
	}

	if s.DepthField != "" {
		spec["depthField"] = s.DepthField
	}

	if s.MaxDepth != nil {
		spec["maxDepth"] = *s.MaxDepth
	}

	if s.MaxMemoryBytes > 0 {
		spec["maxMemoryBytes"] = s.MaxMemoryBytes
	}

	if s.SingleShot != nil {
		spec["singleShot"] = *s.SingleShot
	}

	if s.StopAtFirstMeeting != nil {
		spec["stopAtFirstMeeting"] = *s.StopAtFirstMeeting
	}

	return map[string]any{StageName: spec}
}

func stringArg(name string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalid("'%s' must be a string, found %T", name, v)
	}

	if s == "" {
		return "", invalid("'%s' must not be empty", name)
	}

	return s, nil
}

func pathArg(name string, v any) (string, error) {
	s, err := stringArg(name, v)
	if err != nil {
		return "", err
	}

	if _, ok := models.FieldPath(s); !ok {
		return "", invalid("'%s' must be a valid field path, found %q", name, s)
	}

	return s, nil
}

func integerArg(name string, v any) (int64, error) {
	f, ok := models.Number(v)
	if !ok {
		return 0, invalid("'%s' must be a number, found %T", name, v)
	}

	if f != math.Trunc(f) {
		return 0, invalid("'%s' must be an integral value, found %v", name, v)
	}

	if math.Abs(f) > math.MaxInt32*1024.0 {
		return 0, invalid("'%s' is out of range, found %v", name, v)
	}

	return int64(f), nil
}

func boolArg(name string, v any) (*bool, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, invalid("'%s' must be a boolean, found %T", name, v)
	}

	return &b, nil
}

func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case models.Document:
		return t, true
	default:
		return nil, false
	}
}
