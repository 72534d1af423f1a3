package viewer

import "github.com/Faultbox/meshlens/internal/pipeline"

// loadQueue tracks in-flight LoadFiles batches so their outcomes can be
// collected on the render thread without blocking.
type loadQueue struct {
	pending []<-chan pipeline.Outcome
}

func (q *loadQueue) add(ch <-chan pipeline.Outcome) {
	q.pending = append(q.pending, ch)
}

// poll hands every ready outcome to fn and drops finished batches.
func (q *loadQueue) poll(fn func(pipeline.Outcome)) {
	open := q.pending[:0]
	for _, ch := range q.pending {
		if drain(ch, fn) {
			open = append(open, ch)
		}
	}
	for i := len(open); i < len(q.pending); i++ {
		q.pending[i] = nil
	}
	q.pending = open
}

// len returns the number of batches still loading.
func (q *loadQueue) len() int {
	return len(q.pending)
}

// drain receives until ch is empty. It reports whether ch is still open.
func drain(ch <-chan pipeline.Outcome, fn func(pipeline.Outcome)) bool {
	for {
		select {
		case o, ok := <-ch:
			if !ok {
				return false
			}
			fn(o)
		default:
			return true
		}
	}
}

// receiveAll returns every value buffered in ch without blocking.
func receiveAll(ch <-chan string) []string {
	var out []string
	for {
		select {
		case s := <-ch:
			out = append(out, s)
		default:
			return out
		}
	}
}

// mergePaths appends the paths of b missing from a, keeping first-seen order.
func mergePaths(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, p := range list {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}
