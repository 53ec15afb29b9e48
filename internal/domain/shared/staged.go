package shared

// StagedList holds a list whose mutations are applied optimistically.
// A caller stages a change, shows the staged view immediately, then
// either Commits once the remote side acknowledges or Rolls back to the
// pre-change snapshot when it fails. At most one change is staged at a
// time; staging again before resolving replaces the pending change but
// keeps the original snapshot, so a rollback always restores the last
// committed state.
type StagedList[T any] struct {
	committed []T
	staged    []T
	pending   bool
}

// NewStagedList creates a staged list seeded with the committed items.
func NewStagedList[T any](items []T) *StagedList[T] {
	l := &StagedList[T]{}
	l.Reset(items)
	return l
}

// Items returns the current view: the staged items while a change is
// pending, the committed items otherwise. The returned slice is a copy.
func (l *StagedList[T]) Items() []T {
	src := l.committed
	if l.pending {
		src = l.staged
	}
	out := make([]T, len(src))
	copy(out, src)
	return out
}

// Len returns the size of the current view.
func (l *StagedList[T]) Len() int {
	if l.pending {
		return len(l.staged)
	}
	return len(l.committed)
}

// Pending reports whether an unresolved change is staged.
func (l *StagedList[T]) Pending() bool {
	return l.pending
}

// Stage replaces the visible items with the given provisional list.
func (l *StagedList[T]) Stage(items []T) {
	l.staged = make([]T, len(items))
	copy(l.staged, items)
	l.pending = true
}

// StageRemove stages the removal of every item matching the predicate.
// Returns the number of items removed from the view.
func (l *StagedList[T]) StageRemove(match func(T) bool) int {
	next := make([]T, 0, len(l.committed))
	removed := 0
	for _, item := range l.committed {
		if match(item) {
			removed++
			continue
		}
		next = append(next, item)
	}
	l.staged = next
	l.pending = true
	return removed
}

// Commit makes the staged items the committed state.
func (l *StagedList[T]) Commit() error {
	if !l.pending {
		return ErrNoPendingEdit
	}
	l.committed = l.staged
	l.staged = nil
	l.pending = false
	return nil
}

// Rollback discards the staged items and restores the committed state.
func (l *StagedList[T]) Rollback() error {
	if !l.pending {
		return ErrNoPendingEdit
	}
	l.staged = nil
	l.pending = false
	return nil
}

// Reset replaces the committed state and drops any pending change.
// Used after a full reload from the remote source.
func (l *StagedList[T]) Reset(items []T) {
	l.committed = make([]T, len(items))
	copy(l.committed, items)
	l.staged = nil
	l.pending = false
}
