package dashboard

import (
	"context"
	"sync"
)

// InMemoryPreferenceStore keeps per-user layout and shell overrides for the life of the process.
type InMemoryPreferenceStore struct {
	mu     sync.RWMutex
	byUser map[string]LayoutOverrides
}

// NewInMemoryPreferenceStore creates an empty preference store.
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{byUser: map[string]LayoutOverrides{}}
}

// LayoutOverrides returns a copy of what the viewer saved. Viewers without saved
// preferences, anonymous ones included, get the default shell in their locale.
func (s *InMemoryPreferenceStore) LayoutOverrides(_ context.Context, viewer ViewerContext) (LayoutOverrides, error) {
	s.mu.RLock()
	saved, ok := s.byUser[viewer.UserID]
	s.mu.RUnlock()
	if ok && viewer.UserID != "" {
		return saved.clone(), nil
	}
	return LayoutOverrides{Locale: viewer.Locale}.withDefaults(), nil
}

// SaveLayoutOverrides replaces the viewer's overrides. The viewer locale is kept when none is given.
func (s *InMemoryPreferenceStore) SaveLayoutOverrides(_ context.Context, viewer ViewerContext, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return errMissingViewer
	}
	if overrides.Locale == "" {
		overrides.Locale = viewer.Locale
	}
	stored := overrides.withDefaults().clone()
	s.mu.Lock()
	s.byUser[viewer.UserID] = stored
	s.mu.Unlock()
	return nil
}

// withDefaults fills nil maps and the shell. An Arabic locale opens the shell in Arabic.
func (o LayoutOverrides) withDefaults() LayoutOverrides {
	if o.AreaOrder == nil {
		o.AreaOrder = map[string][]string{}
	}
	if o.HiddenWidgets == nil {
		o.HiddenWidgets = map[string]bool{}
	}
	if o.Shell == nil {
		shell := DefaultShellState()
		if o.Locale == altLanguage {
			shell.Language = altLanguage
		}
		o.Shell = &shell
	}
	return o
}

func (o LayoutOverrides) clone() LayoutOverrides {
	out := o
	out.AreaOrder = make(map[string][]string, len(o.AreaOrder))
	for area, ids := range o.AreaOrder {
		out.AreaOrder[area] = append([]string(nil), ids...)
	}
	out.HiddenWidgets = make(map[string]bool, len(o.HiddenWidgets))
	for id, hidden := range o.HiddenWidgets {
		out.HiddenWidgets[id] = hidden
	}
	if o.Shell != nil {
		shell := *o.Shell
		out.Shell = &shell
	}
	return out
}
