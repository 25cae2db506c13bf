// Package intent maps classified (type, intent) pairs to reply handlers.
// It is the extension point for routing outcomes that need bespoke handling
// beyond the canned social replies and the knowledge flow.
package intent

// Response is what a handler produces for one turn.
type Response struct {
	Text string
	Mode string
}

// Handler produces a reply for a classified message.
// lang is the detected language tag, message the raw user text.
type Handler func(lang, message string) Response

// Key identifies a registered handler.
type Key struct {
	Type   string // e.g. "social", "question"
	Intent string // e.g. "greeting", "pricing"
}

// Registry holds the (type, intent) → handler table. Registration happens at
// startup; lookups afterwards are read-only, so no lock is needed.
type Registry struct {
	handlers map[Key]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Key]Handler)}
}

// Register binds a handler to (typ, intent). Later registrations replace
// earlier ones.
func (r *Registry) Register(typ, intentName string, h Handler) {
	r.handlers[Key{Type: typ, Intent: intentName}] = h
}

// Lookup returns the handler for (typ, intent). When no exact match exists it
// falls back to the type's wildcard handler (intent ""), then reports false.
func (r *Registry) Lookup(typ, intentName string) (Handler, bool) {
	if h, ok := r.handlers[Key{Type: typ, Intent: intentName}]; ok {
		return h, true
	}
	if h, ok := r.handlers[Key{Type: typ}]; ok {
		return h, true
	}
	return nil, false
}
