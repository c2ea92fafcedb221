package property

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/propdesk/propdesk/internal/core/gallery"
	"github.com/propdesk/propdesk/internal/core/validation"
)

var (
	ErrNotFound     = errors.New("property not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// Payload is the multipart body of a create or update call.
type Payload struct {
	Fields       []Field
	Files        []gallery.File
	RetainedURLs []string
}

// API is the remote listing service.
type API interface {
	ListProperties(ctx context.Context, params url.Values) (*Page, error)
	GetProperty(ctx context.Context, id string) (*Property, error)
	CreateProperty(ctx context.Context, token string, payload *Payload) (*Property, error)
	UpdateProperty(ctx context.Context, token, id string, payload *Payload) (*Property, error)
	DeleteProperty(ctx context.Context, token, id string) error
}

type cached struct {
	property  *Property
	fetchedAt time.Time
}

type Service struct {
	api       API
	validator *validation.Validator
	logger    *slog.Logger
	ttl       time.Duration

	group singleflight.Group

	mu          sync.Mutex
	cache       map[string]cached
	generations map[string]uint64
	listeners   []func(id string)
}

func NewService(api API, validator *validation.Validator, logger *slog.Logger, ttl time.Duration) *Service {
	return &Service{
		api:         api,
		validator:   validator,
		logger:      logger.With("component", "property"),
		ttl:         ttl,
		cache:       make(map[string]cached),
		generations: make(map[string]uint64),
	}
}

// OnChange registers fn to run after every successful create, update or
// delete. id is empty for creates.
func (s *Service) OnChange(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) List(ctx context.Context, params url.Values) (*Page, error) {
	page, err := s.api.ListProperties(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	if page.Items == nil {
		page.Items = []Property{}
	}
	return page, nil
}

// Get is a read-through lookup keyed by id. Concurrent lookups share one
// remote call, which a cancelled caller does not abort. A result that raced
// with a write to the same id is returned but not cached.
func (s *Service) Get(ctx context.Context, id string) (*Property, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	if c, ok := s.cache[id]; ok && (s.ttl <= 0 || time.Since(c.fetchedAt) < s.ttl) {
		s.mu.Unlock()
		return c.property, nil
	}
	gen := s.generations[id]
	s.mu.Unlock()

	ch := s.group.DoChan(id, func() (interface{}, error) {
		return s.api.GetProperty(context.WithoutCancel(ctx), id)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	v, err := res.Val, res.Err
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get property %s: %w", id, err)
	}
	p := v.(*Property)

	s.mu.Lock()
	if s.generations[id] == gen {
		s.cache[id] = cached{property: p, fetchedAt: time.Now()}
	} else {
		s.logger.Debug("discarding superseded property response", "id", id)
	}
	s.mu.Unlock()

	return p, nil
}

func (s *Service) Create(ctx context.Context, token string, form Form, images gallery.Submission) (*Property, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	if err := s.validate(CreateSchema, form, images); err != nil {
		return nil, err
	}

	created, err := s.api.CreateProperty(ctx, token, newPayload(form, images))
	if err != nil {
		return nil, fmt.Errorf("create property: %w", err)
	}

	s.logger.Info("property created", "id", idOf(created), "files", len(images.Files))
	s.changed("")
	return created, nil
}

func (s *Service) Update(ctx context.Context, token, id string, form Form, images gallery.Submission) (*Property, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	if err := s.validate(EditSchema, form, images); err != nil {
		return nil, err
	}

	updated, err := s.api.UpdateProperty(ctx, token, id, newPayload(form, images))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update property %s: %w", id, err)
	}

	s.logger.Info("property updated", "id", id, "files", len(images.Files), "retained", len(images.RetainedURLs))
	s.changed(id)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, token, id string) error {
	if token == "" {
		return ErrUnauthorized
	}
	if err := s.api.DeleteProperty(ctx, token, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete property %s: %w", id, err)
	}

	s.logger.Info("property deleted", "id", id)
	s.changed(id)
	return nil
}

func (s *Service) validate(schema map[string]interface{}, form Form, images gallery.Submission) error {
	visible := make([]string, 0, len(images.Files)+len(images.RetainedURLs))
	visible = append(visible, images.RetainedURLs...)
	for _, f := range images.Files {
		visible = append(visible, f.Name)
	}
	retained := append([]string{}, images.RetainedURLs...)

	doc, err := form.document(visible, retained)
	if err != nil {
		return err
	}
	return humanize(s.validator.Validate(doc, schema))
}

// changed drops the cached copy of id and bumps its generation so that an
// in-flight read started before the write is not cached.
func (s *Service) changed(id string) {
	s.mu.Lock()
	if id != "" {
		delete(s.cache, id)
		s.generations[id]++
		s.group.Forget(id)
	}
	listeners := append([]func(string){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(id)
	}
}

func newPayload(form Form, images gallery.Submission) *Payload {
	return &Payload{
		Fields:       form.Fields(),
		Files:        images.Files,
		RetainedURLs: images.RetainedURLs,
	}
}

func idOf(p *Property) string {
	if p == nil {
		return ""
	}
	return p.ID.String()
}
