package workspace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/propdesk/propdesk/internal/core/gallery"
	"github.com/propdesk/propdesk/internal/core/listing"
	"github.com/propdesk/propdesk/internal/core/property"
	"github.com/propdesk/propdesk/internal/logging"
)

type pageFetcher struct{ calls int }

func (f *pageFetcher) FetchPage(ctx context.Context, q listing.FilterQuery) (*property.Page, error) {
	f.calls++
	return &property.Page{Total: 1}, nil
}

func newTestRegistry() (*Registry, *gallery.MemoryPreviews, *pageFetcher) {
	previews := gallery.NewMemoryPreviews()
	fetcher := &pageFetcher{}
	return NewRegistry(fetcher, previews, logging.Discard(), time.Hour), previews, fetcher
}

func TestRegistry_ListingPerSession(t *testing.T) {
	r, _, _ := newTestRegistry()

	a := r.Listing("a")
	require.Same(t, a, r.Listing("a"))
	require.NotSame(t, a, r.Listing("b"))
}

func TestRegistry_EditDraftSeedsFromProperty(t *testing.T) {
	r, _, _ := newTestRegistry()

	p := &property.Property{
		ID:     "12",
		Title:  "Nhà phố",
		Status: property.StatusSold,
		Images: []property.Image{{Path: "https://cdn.test/1.jpg"}, {Path: "https://cdn.test/2.jpg"}},
	}
	d := r.NewDraft("a", p)

	v := d.View()
	require.Equal(t, ModeEdit, v.Mode)
	require.Equal(t, "12", v.PropertyID)
	require.Equal(t, "Nhà phố", v.Form.Title)
	require.Len(t, v.Images, 2)
	require.Equal(t, gallery.KindRemote, v.Images[0].Kind)

	got, err := r.Draft("a", d.ID)
	require.NoError(t, err)
	require.Same(t, d, got)

	_, err = r.Draft("b", d.ID)
	require.ErrorIs(t, err, ErrDraftNotFound)
}

func TestRegistry_DiscardReleasesPreviews(t *testing.T) {
	r, previews, _ := newTestRegistry()

	d := r.NewDraft("a", nil)
	require.Equal(t, ModeCreate, d.Mode())
	_, err := d.Editor.AddFiles([]gallery.File{{Name: "a.png", Data: []byte("\x89PNG\r\n\x1a\n")}})
	require.NoError(t, err)
	require.Equal(t, 1, previews.Live())

	require.NoError(t, r.DiscardDraft("a", d.ID))
	require.Equal(t, 0, previews.Live())
	require.ErrorIs(t, r.DiscardDraft("a", d.ID), ErrDraftNotFound)
}

func TestRegistry_EvictAndSweep(t *testing.T) {
	r, previews, _ := newTestRegistry()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	d := r.NewDraft("old", nil)
	_, err := d.Editor.AddFiles([]gallery.File{{Name: "a.jpg", Data: []byte{0xff, 0xd8, 0xff}}})
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	r.Listing("fresh")

	require.Equal(t, 1, r.Sweep())
	require.Equal(t, 0, previews.Live())

	d = r.NewDraft("fresh", nil)
	d.Editor.AddFiles([]gallery.File{{Name: "b.jpg", Data: []byte{0xff, 0xd8, 0xff}}})
	r.Evict("fresh")
	require.Equal(t, 0, previews.Live())
}

func TestRegistry_InvalidateListings(t *testing.T) {
	r, _, fetcher := newTestRegistry()
	ctx := context.Background()

	r.Listing("a").Load(ctx)
	r.Listing("b").Load(ctx)
	require.Equal(t, 2, fetcher.calls)

	r.Listing("a").Load(ctx)
	require.Equal(t, 2, fetcher.calls)

	r.InvalidateListings()
	r.Listing("a").Load(ctx)
	r.Listing("b").Load(ctx)
	require.Equal(t, 4, fetcher.calls)
}
