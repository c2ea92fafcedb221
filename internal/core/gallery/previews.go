package gallery

import (
	"sync"

	"github.com/google/uuid"
)

// Previews hands out preview handles for local files. Every Acquire must be
// paired with a Release.
type Previews interface {
	Acquire(f File) string
	Release(handle string)
	Open(handle string) (File, bool)
}

type MemoryPreviews struct {
	mu    sync.RWMutex
	files map[string]File
}

func NewMemoryPreviews() *MemoryPreviews {
	return &MemoryPreviews{files: make(map[string]File)}
}

func (p *MemoryPreviews) Acquire(f File) string {
	handle := uuid.NewString()

	p.mu.Lock()
	p.files[handle] = f
	p.mu.Unlock()

	return handle
}

func (p *MemoryPreviews) Release(handle string) {
	p.mu.Lock()
	delete(p.files, handle)
	p.mu.Unlock()
}

func (p *MemoryPreviews) Open(handle string) (File, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	f, ok := p.files[handle]
	return f, ok
}

// Live reports how many handles are outstanding.
func (p *MemoryPreviews) Live() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.files)
}
