package session

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"telegram-subscription-tracker/internal/domain/model"
)

// HandlerFunc handles one event. Returning an error hands the conversion to a
// user-facing response to the Dispatcher.
type HandlerFunc func(ctx context.Context, ev Event) (Response, error)

// Entry binds a matcher to a handler. Lower Priority wins; equal priorities
// resolve in registration order.
type Entry[In any] struct {
	Name     string
	Priority int
	Match    func(In) bool
	Handle   HandlerFunc
}

// Registry is an ordered set of handlers keyed by a matcher over In.
type Registry[In any] struct {
	name    string
	entries []Entry[In]
}

func NewRegistry[In any](name string) *Registry[In] {
	return &Registry[In]{name: name}
}

func (r *Registry[In]) Name() string { return r.name }

func (r *Registry[In]) Register(entries ...Entry[In]) {
	r.entries = append(r.entries, entries...)
	sort.SliceStable(r.entries, func(i, j int) bool {
		return r.entries[i].Priority < r.entries[j].Priority
	})
}

// Lookup returns the winning entry for in.
func (r *Registry[In]) Lookup(in In) (Entry[In], bool) {
	for _, e := range r.entries {
		if e.Match(in) {
			return e, true
		}
	}
	return Entry[In]{}, false
}

// Entries returns the handlers in lookup order.
func (r *Registry[In]) Entries() []Entry[In] {
	out := make([]Entry[In], len(r.entries))
	copy(out, r.entries)
	return out
}

// Overlap is an input claimed by more than one handler.
type Overlap[In any] struct {
	Input    In
	Handlers []string
}

// Overlaps reports every fixture matched by more than one entry.
func (r *Registry[In]) Overlaps(fixtures []In) []Overlap[In] {
	var out []Overlap[In]
	for _, in := range fixtures {
		var names []string
		for _, e := range r.entries {
			if e.Match(in) {
				names = append(names, e.Name)
			}
		}
		if len(names) > 1 {
			out = append(out, Overlap[In]{Input: in, Handlers: names})
		}
	}
	return out
}

// Matchers.

func Exact(s string) func(string) bool {
	return func(in string) bool { return in == s }
}

func Prefix(p string) func(string) bool {
	return func(in string) bool { return strings.HasPrefix(in, p) }
}

func Pattern(re *regexp.Regexp) func(string) bool {
	return re.MatchString
}

// Command matches "/name" alone or followed by arguments or a @bot suffix.
func Command(name string) func(string) bool {
	return func(in string) bool {
		word, _, _ := strings.Cut(strings.TrimSpace(in), " ")
		word, _, _ = strings.Cut(word, "@")
		return word == name
	}
}

func InState(st model.DialogueState) func(model.DialogueState) bool {
	return func(in model.DialogueState) bool { return in == st }
}
