package workspace

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/propdesk/propdesk/internal/core/gallery"
	"github.com/propdesk/propdesk/internal/core/listing"
	"github.com/propdesk/propdesk/internal/core/property"
)

var ErrDraftNotFound = errors.New("draft not found")

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Draft is an open create or edit page: the form as last submitted and
// its image editor.
type Draft struct {
	ID         string
	PropertyID string
	Editor     *gallery.Editor

	mu   sync.Mutex
	form property.Form
}

func (d *Draft) Mode() Mode {
	if d.PropertyID == "" {
		return ModeCreate
	}
	return ModeEdit
}

func (d *Draft) Form() property.Form {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.form
}

func (d *Draft) SetForm(f property.Form) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.form = f
}

type DraftView struct {
	ID         string             `json:"id"`
	PropertyID string             `json:"property_id,omitempty"`
	Mode       Mode               `json:"mode"`
	Form       property.Form      `json:"form"`
	Images     []gallery.ImageRef `json:"images"`
}

func (d *Draft) View() DraftView {
	return DraftView{
		ID:         d.ID,
		PropertyID: d.PropertyID,
		Mode:       d.Mode(),
		Form:       d.Form(),
		Images:     d.Editor.Images(),
	}
}

type workspace struct {
	listing  *listing.Controller
	drafts   map[string]*Draft
	lastSeen time.Time
}

// Registry holds the per-session state: one listing controller and any
// open drafts per session id.
type Registry struct {
	fetcher  listing.Fetcher
	previews gallery.Previews
	logger   *slog.Logger
	idle     time.Duration
	now      func() time.Time

	mu         sync.Mutex
	workspaces map[string]*workspace
}

func NewRegistry(fetcher listing.Fetcher, previews gallery.Previews, logger *slog.Logger, idle time.Duration) *Registry {
	if previews == nil {
		previews = gallery.NewMemoryPreviews()
	}
	return &Registry{
		fetcher:    fetcher,
		previews:   previews,
		logger:     logger.With("component", "workspace"),
		idle:       idle,
		now:        time.Now,
		workspaces: make(map[string]*workspace),
	}
}

func (r *Registry) get(sid string) *workspace {
	ws, ok := r.workspaces[sid]
	if !ok {
		ws = &workspace{
			listing: listing.NewController(r.fetcher, r.logger),
			drafts:  make(map[string]*Draft),
		}
		r.workspaces[sid] = ws
	}
	ws.lastSeen = r.now()
	return ws
}

func (r *Registry) Listing(sid string) *listing.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(sid).listing
}

// NewDraft opens a create draft, or an edit draft seeded from p.
func (r *Registry) NewDraft(sid string, p *property.Property) *Draft {
	d := &Draft{
		ID:     uuid.NewString(),
		Editor: gallery.NewEditor(r.previews),
		form:   property.NewForm(),
	}
	if p != nil {
		d.PropertyID = p.ID.String()
		d.form = property.FormFromProperty(p)
		d.Editor.Seed(p.ImageURLs(""))
	}

	r.mu.Lock()
	r.get(sid).drafts[d.ID] = d
	r.mu.Unlock()

	r.logger.Debug("draft opened", "draft_id", d.ID, "mode", d.Mode())
	return d
}

func (r *Registry) Draft(sid, id string) (*Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.get(sid).drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return d, nil
}

// DiscardDraft closes the draft's editor, releasing its preview handles.
func (r *Registry) DiscardDraft(sid, id string) error {
	r.mu.Lock()
	ws := r.get(sid)
	d, ok := ws.drafts[id]
	delete(ws.drafts, id)
	r.mu.Unlock()

	if !ok {
		return ErrDraftNotFound
	}
	d.Editor.Close()
	return nil
}

// Evict drops everything held for sid.
func (r *Registry) Evict(sid string) {
	r.mu.Lock()
	ws, ok := r.workspaces[sid]
	delete(r.workspaces, sid)
	r.mu.Unlock()

	if ok {
		closeDrafts(ws)
	}
}

// InvalidateListings marks every session's cached listing pages stale.
func (r *Registry) InvalidateListings() {
	r.mu.Lock()
	controllers := make([]*listing.Controller, 0, len(r.workspaces))
	for _, ws := range r.workspaces {
		controllers = append(controllers, ws.listing)
	}
	r.mu.Unlock()

	for _, c := range controllers {
		c.Invalidate()
	}
}

// Sweep evicts sessions idle for longer than the configured duration.
func (r *Registry) Sweep() int {
	if r.idle <= 0 {
		return 0
	}

	cutoff := r.now().Add(-r.idle)
	var stale []*workspace

	r.mu.Lock()
	for sid, ws := range r.workspaces {
		if ws.lastSeen.Before(cutoff) {
			stale = append(stale, ws)
			delete(r.workspaces, sid)
		}
	}
	r.mu.Unlock()

	for _, ws := range stale {
		closeDrafts(ws)
	}
	if len(stale) > 0 {
		r.logger.Info("evicted idle sessions", "count", len(stale))
	}
	return len(stale)
}

// Run sweeps on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	all := r.workspaces
	r.workspaces = make(map[string]*workspace)
	r.mu.Unlock()

	for _, ws := range all {
		closeDrafts(ws)
	}
}

func closeDrafts(ws *workspace) {
	for _, d := range ws.drafts {
		d.Editor.Close()
	}
}
