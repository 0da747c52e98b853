package crawl

// queue is a FIFO of URLs that never accepts the same URL twice.
type queue struct {
	items []string
	seen  map[string]struct{}
	next  int
}

func newQueue() *queue {
	return &queue{seen: map[string]struct{}{}}
}

// push enqueues u and reports whether it was new.
func (q *queue) push(u string) bool {
	if _, ok := q.seen[u]; ok {
		return false
	}
	q.seen[u] = struct{}{}
	q.items = append(q.items, u)
	return true
}

func (q *queue) pop() (string, bool) {
	if q.next >= len(q.items) {
		return "", false
	}
	u := q.items[q.next]
	q.next++
	return u, true
}

func (q *queue) len() int {
	return len(q.items)
}

// all returns every accepted URL, in discovery order.
func (q *queue) all() []string {
	return q.items
}
