package gallery

import (
	"errors"
	"fmt"
)

var ErrClosed = errors.New("image editor is closed")

type Kind int

const (
	// KindRemote is an image the API already knows by URL.
	KindRemote Kind = iota
	// KindLocal is a file chosen this session and not uploaded yet.
	KindLocal
)

func (k Kind) String() string {
	if k == KindLocal {
		return "local"
	}
	return "remote"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "local":
		*k = KindLocal
	case "remote":
		*k = KindRemote
	default:
		return fmt.Errorf("unknown image kind %q", b)
	}
	return nil
}

type File struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

func (f File) Size() int {
	return len(f.Data)
}

// ImageRef is one entry of the visible list.
type ImageRef struct {
	Kind   Kind   `json:"kind"`
	URL    string `json:"url,omitempty"`
	Handle string `json:"handle,omitempty"`
	File   *File  `json:"file,omitempty"`
}

// Ref is what the UI hands back to identify the entry: the preview handle
// for local files, the URL for remote images.
func (r ImageRef) Ref() string {
	if r.Kind == KindLocal {
		return r.Handle
	}
	return r.URL
}

// Submission is what a save sends: new files to upload and remote URLs to keep.
type Submission struct {
	Files        []File   `json:"files"`
	RetainedURLs []string `json:"retained_urls"`
}

func (s Submission) Empty() bool {
	return len(s.Files) == 0 && len(s.RetainedURLs) == 0
}
