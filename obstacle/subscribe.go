package obstacle

import (
	"sync"

	"grid-planner/spatial"
)

// subscriber forwards change boxes without ever blocking the store. When the
// consumer falls behind, pending boxes are merged into one.
type subscriber struct {
	out  chan spatial.Box
	wake chan struct{}
	done chan struct{}

	mu      sync.Mutex
	pending []spatial.Box
	limit   int
}

func (sub *subscriber) push(box spatial.Box) {
	sub.mu.Lock()
	if len(sub.pending) >= sub.limit && len(sub.pending) > 0 {
		merged := sub.pending[0]
		for _, b := range sub.pending[1:] {
			merged = merged.Union(b)
		}
		sub.pending = append(sub.pending[:0], merged.Union(box))
	} else {
		sub.pending = append(sub.pending, box)
	}
	sub.mu.Unlock()

	select {
	case sub.wake <- struct{}{}:
	default:
	}
}

func (sub *subscriber) run() {
	defer close(sub.out)
	for {
		select {
		case <-sub.done:
			return
		case <-sub.wake:
		}

		sub.mu.Lock()
		batch := sub.pending
		sub.pending = nil
		sub.mu.Unlock()

		for _, box := range batch {
			select {
			case sub.out <- box:
			case <-sub.done:
				return
			}
		}
	}
}

// Subscribe returns a channel receiving the world box touched by every
// Add or Remove. The returned func cancels the subscription and closes the
// channel. buf bounds both the channel and the backlog before merging.
func (s *Store) Subscribe(buf int) (<-chan spatial.Box, func()) {
	buf = max(buf, 1)
	sub := &subscriber{
		out:   make(chan spatial.Box, buf),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
		limit: buf,
	}

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	s.subMu.Unlock()
	go sub.run()

	var once sync.Once
	return sub.out, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(sub.done)
		})
	}
}

func (s *Store) publish(box spatial.Box) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, sub := range s.subs {
		sub.push(box)
	}
}
