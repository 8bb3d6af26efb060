// Package panel holds the per-session dashboard state: the cached event and
// lead lists, the active tab and the lead search query.
package panel

import (
	"context"
	"errors"
	"sync"

	"gitea.jw6.us/james/campusdesk/internal/api"
	"gitea.jw6.us/james/campusdesk/internal/leads"
)

// ErrLeadsUnavailable is reported when the leads tab could not be loaded.
var ErrLeadsUnavailable = errors.New("failed to load leads")

type Tab string

const (
	TabDashboard Tab = "dashboard"
	TabLeads     Tab = "leads"
)

// Backend serves the two lists the panel caches.
type Backend interface {
	ListEvents(ctx context.Context) ([]api.Event, error)
	ListLeads(ctx context.Context) ([]api.Lead, error)
}

// Panel is safe for concurrent use by requests of the same session.
type Panel struct {
	backend Backend

	mu           sync.Mutex
	events       []api.Event
	eventsLoaded bool
	leads        []api.Lead
	leadsLoaded  bool
	tab          Tab
	query        string
}

func New(backend Backend) *Panel {
	return &Panel{backend: backend, tab: TabDashboard}
}

// Mount loads the events the first time the dashboard is shown.
func (p *Panel) Mount(ctx context.Context) error {
	p.mu.Lock()
	loaded := p.eventsLoaded
	p.mu.Unlock()
	if loaded {
		return nil
	}
	return p.LoadEvents(ctx)
}

// LoadEvents replaces the cached events with the backend's list. On failure
// the previous list is kept.
func (p *Panel) LoadEvents(ctx context.Context) error {
	events, err := p.backend.ListEvents(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.events = events
	p.eventsLoaded = true
	p.mu.Unlock()
	return nil
}

// ActivateDashboard switches to the dashboard tab.
func (p *Panel) ActivateDashboard(ctx context.Context) error {
	p.mu.Lock()
	p.tab = TabDashboard
	p.mu.Unlock()
	return p.Mount(ctx)
}

// ActivateLeads switches to the leads tab and re-fetches the lead list.
func (p *Panel) ActivateLeads(ctx context.Context) error {
	p.mu.Lock()
	p.tab = TabLeads
	p.mu.Unlock()

	list, err := p.backend.ListLeads(ctx)
	if err != nil {
		return errors.Join(ErrLeadsUnavailable, err)
	}
	p.mu.Lock()
	p.leads = list
	p.leadsLoaded = true
	p.mu.Unlock()
	return nil
}

// Search sets the lead query. It never calls the backend.
func (p *Panel) Search(q string) {
	p.mu.Lock()
	p.query = q
	p.mu.Unlock()
}

func (p *Panel) Query() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

func (p *Panel) Tab() Tab {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tab
}

// Events returns a copy of the cached events.
func (p *Panel) Events() []api.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]api.Event(nil), p.events...)
}

// LeadsLoaded reports whether the leads tab has been fetched at least once.
func (p *Panel) LeadsLoaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.leadsLoaded
}

// FilteredLeads applies the current query to the cached leads.
func (p *Panel) FilteredLeads() []api.Lead {
	p.mu.Lock()
	defer p.mu.Unlock()
	return leads.Filter(p.leads, p.query)
}
