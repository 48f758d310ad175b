package wallet

import "sync"

// emitter fans provider events out to subscribers.
type emitter struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]Listener
}

func (e *emitter) On(event string, fn Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.subs == nil {
		e.subs = make(map[string]map[int]Listener)
	}
	if e.subs[event] == nil {
		e.subs[event] = make(map[int]Listener)
	}
	id := e.next
	e.next++
	e.subs[event][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs[event], id)
			e.mu.Unlock()
		})
	}
}

func (e *emitter) Emit(event string, payload any) {
	e.mu.Lock()
	fns := make([]Listener, 0, len(e.subs[event]))
	for _, fn := range e.subs[event] {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(payload)
	}
}

func (e *emitter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, s := range e.subs {
		n += len(s)
	}
	return n
}
