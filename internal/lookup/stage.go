package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/models"
	"github.com/persistorai/pathfinder/internal/pathfind"
)

// State is the position of a Stage in its pull cycle.
type State int

// Stage states. A stage moves Idle -> Searching -> PathFound or Exhausted,
// and to Done once its input ends or, in single-shot mode, after one output.
const (
	Idle State = iota
	Searching
	PathFound
	Exhausted
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case PathFound:
		return "path_found"
	case Exhausted:
		return "exhausted"
	default:
		return "done"
	}
}

// Source supplies stage inputs. Next returns io.EOF once exhausted.
type Source interface {
	Next(ctx context.Context) (models.Document, error)
}

// SliceSource serves documents from memory.
type SliceSource struct {
	docs []models.Document
	pos  int
}

// NewSliceSource returns a Source over docs.
func NewSliceSource(docs []models.Document) *SliceSource {
	return &SliceSource{docs: docs}
}

// Next returns the next document or io.EOF.
func (s *SliceSource) Next(context.Context) (models.Document, error) {
	if s.pos >= len(s.docs) {
		return nil, io.EOF
	}

	d := s.docs[s.pos]
	s.pos++

	return d, nil
}

// Options are the service-level defaults a spec may override.
type Options struct {
	Engine     pathfind.Options
	SingleShot bool
}

// Stage drives one bidirectional search per pulled input.
type Stage struct {
	spec    *Spec
	catalog pathfind.Catalog
	source  Source
	engine  pathfind.Options
	single  bool
	log     logrus.FieldLogger

	state    State
	executed bool
}

// NewStage creates a stage reading inputs from source and searching collections of catalog.
func NewStage(spec *Spec, catalog pathfind.Catalog, source Source, opts Options, log logrus.FieldLogger) *Stage {
	engine := opts.Engine
	if spec.MaxMemoryBytes > 0 {
		engine.MemoryLimitBytes = spec.MaxMemoryBytes
	}

	if spec.StopAtFirstMeeting != nil {
		engine.StopAtFirstMeeting = *spec.StopAtFirstMeeting
	}

	single := opts.SingleShot
	if spec.SingleShot != nil {
		single = *spec.SingleShot
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Stage{spec: spec, catalog: catalog, source: source, engine: engine, single: single, log: log}
}

// State returns the current state.
func (s *Stage) State() State {
	return s.state
}

// Next pulls one input, searches with fresh state and returns the input with
// the path written to the as field. It returns io.EOF when done. In
// single-shot mode only the first input is ever consumed.
func (s *Stage) Next(ctx context.Context) (models.Document, error) {
	if s.state == Done {
		return nil, io.EOF
	}

	if s.single && s.executed {
		s.state = Done

		return nil, io.EOF
	}

	s.state = Idle

	input, err := s.source.Next(ctx)
	if errors.Is(err, io.EOF) {
		s.state = Done

		return nil, io.EOF
	}

	if err != nil {
		s.state = Done

		return nil, fmt.Errorf("reading stage input: %w", err)
	}

	s.executed = true
	s.state = Searching

	path, err := s.search(ctx, input)
	if err != nil {
		s.state = Done

		return nil, err
	}

	if path.Found {
		s.state = PathFound
	} else {
		s.state = Exhausted
	}

	return s.emit(input, path), nil
}

func (s *Stage) search(ctx context.Context, input models.Document) (*models.Path, error) {
	store, err := s.catalog.Collection(ctx, s.spec.From)
	if errors.Is(err, models.ErrCollectionNotFound) {
		return models.NotFound(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("resolving collection %s: %w", s.spec.From, err)
	}

	q := pathfind.BatchQuery{
		ConnectFromField: s.spec.ConnectFromField,
		ConnectToField:   s.spec.ConnectToField,
		Start:            seedValues(s.spec.StartWith.Evaluate(input)),
		Target:           seedValues(s.spec.Target.Evaluate(input)),
		Restrict:         s.spec.Restrict,
		MaxDepth:         s.spec.MaxDepth,
	}

	path, err := pathfind.New(store, s.engine, s.log).BatchSearch(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageName, err)
	}

	s.log.WithFields(logrus.Fields{
		"from":          s.spec.From,
		"found":         path.Found,
		"depth":         path.Depth,
		"store_queries": path.Stats.StoreQueries,
	}).Debug("lookup.next")

	return path, nil
}

// emit copies input and sets the as field to the path records, annotated with
// their hop distance when depthField is set.
func (s *Stage) emit(input models.Document, path *models.Path) models.Document {
	records := make([]any, 0, len(path.Nodes))

	for i, n := range path.Nodes {
		rec := n.Clone()
		if s.spec.DepthField != "" {
			setPath(rec, s.spec.DepthField, i)
		}

		records = append(records, map[string]any(rec))
	}

	out := input.Clone()
	setPath(out, s.spec.As, records)

	return out
}

// setPath assigns v at a dotted path, copying intermediate objects so the
// caller's input is not modified.
func setPath(doc models.Document, path string, v any) {
	parts := strings.Split(path, ".")
	cur := map[string]any(doc)

	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
		} else {
			next = models.Document(next).Clone()
		}

		cur[p] = next
		cur = next
	}

	cur[parts[len(parts)-1]] = v
}

// Run drains the stage into a slice.
func (s *Stage) Run(ctx context.Context) ([]models.Document, error) {
	var out []models.Document

	for {
		doc, err := s.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}

		if err != nil {
			return out, err
		}

		out = append(out, doc)
	}
}
