package event

// Assembler collects the events of one pipeline run in discovery order.
// It is not safe for concurrent use; each run owns its own Assembler.
type Assembler struct {
	visited map[string]bool
	events  []*Event
}

// NewAssembler creates an empty Assembler
func NewAssembler() *Assembler {
	return &Assembler{
		visited: make(map[string]bool),
		events:  make([]*Event, 0),
	}
}

// Visit marks url as visited. It returns false when url was already seen in
// this run, in which case the caller must skip the event, including its fetch.
func (a *Assembler) Visit(url string) bool {
	if a.visited[url] {
		return false
	}
	a.visited[url] = true
	return true
}

// Add appends evt unless an event with the same URL was already added.
// Events without a URL are rejected.
func (a *Assembler) Add(evt *Event) bool {
	if evt == nil || evt.URL == "" {
		return false
	}
	for _, existing := range a.events {
		if existing.URL == evt.URL {
			return false
		}
	}
	a.visited[evt.URL] = true
	a.events = append(a.events, evt)
	return true
}

// Len returns the number of assembled events
func (a *Assembler) Len() int {
	return len(a.events)
}

// Events returns the assembled events in the order they were added
func (a *Assembler) Events() []*Event {
	out := make([]*Event, len(a.events))
	copy(out, a.events)
	return out
}
