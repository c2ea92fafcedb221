package gallery

import (
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// Editor holds the ordered photo list of a property being created or edited.
// Local files and remote URLs share one list; the upload and retain sets are
// projections of it.
type Editor struct {
	mu       sync.Mutex
	previews Previews
	refs     []ImageRef
	closed   bool
}

func NewEditor(previews Previews) *Editor {
	if previews == nil {
		previews = NewMemoryPreviews()
	}
	return &Editor{previews: previews}
}

// Seed replaces the list with the persisted images of an existing property.
func (e *Editor) Seed(urls []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	e.releaseLocked()
	e.refs = make([]ImageRef, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		e.refs = append(e.refs, ImageRef{Kind: KindRemote, URL: u})
	}
	return nil
}

func (e *Editor) AddFiles(files []File) ([]ImageRef, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}

	added := make([]ImageRef, 0, len(files))
	for _, f := range files {
		if f.ContentType == "" {
			f.ContentType = mimetype.Detect(f.Data).String()
		}
		file := f
		ref := ImageRef{Kind: KindLocal, File: &file, Handle: e.previews.Acquire(file)}
		e.refs = append(e.refs, ref)
		added = append(added, ref)
	}
	return added, nil
}

// AddURL appends a remote image unless url is empty or already listed.
func (e *Editor) AddURL(url string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || url == "" || e.indexLocked(url) >= 0 {
		return false
	}
	e.refs = append(e.refs, ImageRef{Kind: KindRemote, URL: url})
	return true
}

// RemoveByHandle drops the entry identified by a preview handle or URL.
func (e *Editor) RemoveByHandle(ref string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexLocked(ref)
	if i < 0 {
		return false
	}
	removed := e.refs[i]
	e.refs = append(e.refs[:i:i], e.refs[i+1:]...)
	if removed.Kind == KindLocal {
		e.previews.Release(removed.Handle)
	}
	return true
}

func (e *Editor) Images() []ImageRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]ImageRef(nil), e.refs...)
}

func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.refs)
}

func (e *Editor) Submission() Submission {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Submission{Files: []File{}, RetainedURLs: []string{}}
	for _, r := range e.refs {
		switch r.Kind {
		case KindLocal:
			s.Files = append(s.Files, *r.File)
		case KindRemote:
			s.RetainedURLs = append(s.RetainedURLs, r.URL)
		}
	}
	return s
}

// Preview returns the file behind a live handle owned by this editor.
func (e *Editor) Preview(handle string) (File, bool) {
	e.mu.Lock()
	i := e.indexLocked(handle)
	owned := i >= 0 && e.refs[i].Kind == KindLocal
	e.mu.Unlock()

	if !owned {
		return File{}, false
	}
	return e.previews.Open(handle)
}

// Close releases every outstanding preview handle. The editor is unusable
// afterwards.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.releaseLocked()
	e.refs = nil
	e.closed = true
}

func (e *Editor) indexLocked(ref string) int {
	for i, r := range e.refs {
		if r.Ref() == ref {
			return i
		}
	}
	return -1
}

func (e *Editor) releaseLocked() {
	for _, r := range e.refs {
		if r.Kind == KindLocal {
			e.previews.Release(r.Handle)
		}
	}
}
