package pathfind

import (
	"github.com/persistorai/pathfinder/internal/models"
)

// meter accounts the approximate bytes held by one invocation.
type meter struct {
	limit    int64
	visited  int64
	frontier int64
}

func (m *meter) check() error {
	if m.limit > 0 && m.visited+m.frontier >= m.limit {
		return models.ErrMemoryLimitExceeded
	}

	return nil
}

// SearchState is the per-invocation state shared by both bidirectional
// strategies: one visited map per direction, a record cache, the best meeting
// found so far and memory accounting.
type SearchState struct {
	visited  [2]map[models.NodeKey]models.SearchRecord
	records  map[models.NodeKey]models.Document
	maxTotal int

	met         bool
	meeting     models.NodeKey
	meetingCost int

	mem   meter
	stats models.SearchStats
}

// newSearchState creates empty state. Meetings whose total depth exceeds
// maxTotal are ignored; a negative maxTotal means unbounded.
func newSearchState(limit int64, maxTotal int) *SearchState {
	return &SearchState{
		visited: [2]map[models.NodeKey]models.SearchRecord{
			make(map[models.NodeKey]models.SearchRecord),
			make(map[models.NodeKey]models.SearchRecord),
		},
		records:  make(map[models.NodeKey]models.Document),
		maxTotal: maxTotal,
		mem:      meter{limit: limit},
	}
}

// seen returns the record of key in dir.
func (s *SearchState) seen(dir models.Direction, key models.NodeKey) (models.SearchRecord, bool) {
	rec, ok := s.visited[dir][key]

	return rec, ok
}

// visit records rec in its direction and caches doc. It returns false when the
// node was already visited in that direction.
func (s *SearchState) visit(rec models.SearchRecord, doc models.Document) bool {
	m := s.visited[rec.Direction]
	if _, dup := m[rec.ID]; dup {
		return false
	}

	m[rec.ID] = rec
	s.mem.visited += models.ApproxSize(rec.ID) + models.ApproxSize(rec.Parent)

	if _, cached := s.records[rec.ID]; !cached && doc != nil {
		s.records[rec.ID] = doc
		s.mem.visited += models.ApproxSize(doc)
	}

	return true
}

// offerMeeting considers key as a crossing if both directions have visited it.
func (s *SearchState) offerMeeting(key models.NodeKey) {
	f, ok := s.visited[models.Forward][key]
	if !ok {
		return
	}

	b, ok := s.visited[models.Backward][key]
	if !ok {
		return
	}

	total := f.Depth + b.Depth
	if s.maxTotal >= 0 && total > s.maxTotal {
		return
	}

	if !s.met || total < s.meetingCost || (total == s.meetingCost && key < s.meeting) {
		s.met = true
		s.meeting = key
		s.meetingCost = total
	}
}

// scanMeetings checks every node of the smaller visited map against the other.
func (s *SearchState) scanMeetings() {
	small, large := s.visited[models.Forward], s.visited[models.Backward]
	if len(large) < len(small) {
		small, large = large, small
	}

	for key := range small {
		if _, ok := large[key]; ok {
			s.offerMeeting(key)
		}
	}
}

// chain walks parent pointers in dir from key to its root.
func (s *SearchState) chain(dir models.Direction, key models.NodeKey) ([]models.NodeKey, bool) {
	m := s.visited[dir]
	out := []models.NodeKey{key}

	for steps := 0; ; steps++ {
		rec, ok := m[key]
		if !ok || steps > len(m) {
			return nil, false
		}

		if rec.IsRoot() {
			return out, true
		}

		key = rec.Parent
		out = append(out, key)
	}
}

// reconstruct joins the forward chain (start to meeting) with the backward
// chain (meeting to end), adding the meeting node once.
func (s *SearchState) reconstruct() ([]models.NodeKey, bool) {
	if !s.met {
		return nil, false
	}

	fwd, ok := s.chain(models.Forward, s.meeting)
	if !ok {
		return nil, false
	}

	bwd, ok := s.chain(models.Backward, s.meeting)
	if !ok {
		return nil, false
	}

	keys := make([]models.NodeKey, 0, len(fwd)+len(bwd)-1)
	for i := len(fwd) - 1; i >= 0; i-- {
		keys = append(keys, fwd[i])
	}

	return append(keys, bwd[1:]...), true
}

// finish fills the final statistics.
func (s *SearchState) finish() models.SearchStats {
	s.stats.NodesVisited = len(s.visited[models.Forward]) + len(s.visited[models.Backward])
	s.stats.VisitedBytes = s.mem.visited
	s.stats.FrontierBytes = s.mem.frontier

	return s.stats
}
