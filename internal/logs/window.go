package logs

// Window is a fixed-capacity FIFO of lines. Pushing into a full window evicts
// the oldest line first, so it never holds more than Cap entries.
type Window struct {
	ring  []string
	start int
	size  int
}

// NewWindow returns an empty window. Capacities below one are raised to one.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{ring: make([]string, capacity)}
}

// Push appends line, evicting the oldest entry when the window is full.
func (w *Window) Push(line string) {
	capacity := len(w.ring)
	if w.size < capacity {
		w.ring[(w.start+w.size)%capacity] = line
		w.size++
		return
	}
	w.ring[w.start] = line
	w.start = (w.start + 1) % capacity
}

// Len reports how many lines the window currently holds.
func (w *Window) Len() int { return w.size }

// Cap reports the window capacity.
func (w *Window) Cap() int { return len(w.ring) }

// Lines returns a copy of the window contents, oldest first.
func (w *Window) Lines() []string {
	lines := make([]string, w.size)
	for i := range lines {
		lines[i] = w.ring[(w.start+i)%len(w.ring)]
	}
	return lines
}
