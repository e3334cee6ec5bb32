package paa

// QuestionSet is an insertion-ordered set of question strings with a hard cap.
// Identity is the exact string; no trimming or case folding is applied.
type QuestionSet struct {
	limit int
	items []string
	seen  map[string]struct{}
}

// NewQuestionSet creates a set that holds at most limit questions.
// A limit <= 0 produces a set that is already full.
func NewQuestionSet(limit int) *QuestionSet {
	if limit < 0 {
		limit = 0
	}
	return &QuestionSet{
		limit: limit,
		items: make([]string, 0, min(limit, VariantCount*len(Offsets)*4)),
		seen:  make(map[string]struct{}),
	}
}

// Add appends q if it is non-empty, unseen, and the set is not full.
// It reports whether q was appended.
func (s *QuestionSet) Add(q string) bool {
	if q == "" || s.Full() {
		return false
	}
	if _, dup := s.seen[q]; dup {
		return false
	}
	s.seen[q] = struct{}{}
	s.items = append(s.items, q)
	return true
}

// Full reports whether the cap has been reached.
func (s *QuestionSet) Full() bool {
	return len(s.items) >= s.limit
}

// Len returns the number of questions held.
func (s *QuestionSet) Len() int {
	return len(s.items)
}

// Items returns a copy of the questions in first-seen order, never longer than the cap.
func (s *QuestionSet) Items() []string {
	n := min(len(s.items), s.limit)
	out := make([]string, n)
	copy(out, s.items[:n])
	return out
}
