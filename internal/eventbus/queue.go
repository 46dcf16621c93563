package eventbus

// workQueue is a priority-ordered pending queue. Items are kept in dispatch
// order: lower priority rank first, FIFO within the same rank. The queue is
// small (one entry per in-flight story at most a handful deep), so a linear
// stable insert beats a heap here and keeps iteration trivial.
type workQueue struct {
	items []*WorkItem
}

// push inserts an item after every queued item of the same or higher
// priority, preserving FIFO order within a rank.
func (q *workQueue) push(item *WorkItem) {
	rank := item.Priority.Rank()
	pos := len(q.items)
	for i, queued := range q.items {
		if queued.Priority.Rank() > rank {
			pos = i
			break
		}
	}

	q.items = append(q.items, nil)
	copy(q.items[pos+1:], q.items[pos:])
	q.items[pos] = item
}

// next returns the first queued item accepted by the eligibility predicate,
// removing it from the queue. Returns nil when nothing is dispatchable.
func (q *workQueue) next(eligible func(*WorkItem) bool) *WorkItem {
	for i, item := range q.items {
		if eligible(item) {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return item
		}
	}
	return nil
}

// remove removes and returns the item with the given work ID, or nil.
func (q *workQueue) remove(workID string) *WorkItem {
	for i, item := range q.items {
		if item.WorkID == workID {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return item
		}
	}
	return nil
}

// find returns the queued item with the given work ID without removing it.
func (q *workQueue) find(workID string) *WorkItem {
	for _, item := range q.items {
		if item.WorkID == workID {
			return item
		}
	}
	return nil
}

func (q *workQueue) len() int {
	return len(q.items)
}
