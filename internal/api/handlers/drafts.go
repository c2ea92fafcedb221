package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propdesk/propdesk/internal/api/middleware"
	"github.com/propdesk/propdesk/internal/core/gallery"
	"github.com/propdesk/propdesk/internal/core/property"
	"github.com/propdesk/propdesk/internal/core/workspace"
)

const maxImageSize = 10 << 20

type DraftHandler struct {
	registry   *workspace.Registry
	properties *property.Service
}

func NewDraftHandler(registry *workspace.Registry, properties *property.Service) *DraftHandler {
	return &DraftHandler{registry: registry, properties: properties}
}

func (h *DraftHandler) draft(c *gin.Context) (*workspace.Draft, bool) {
	d, err := h.registry.Draft(middleware.GetSessionID(c), c.Param("draftId"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return d, true
}

type createDraftRequest struct {
	PropertyID string `json:"property_id"`
}

// Create opens a blank create draft, or an edit draft seeded from an
// existing property when property_id is given.
func (h *DraftHandler) Create(c *gin.Context) {
	var req createDraftRequest
	if c.Request.Body != nil {
		// An empty body asks for a blank draft.
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var seed *property.Property
	if req.PropertyID != "" {
		p, err := h.properties.Get(c.Request.Context(), req.PropertyID)
		if err != nil {
			respondError(c, err)
			return
		}
		seed = p
	}

	d := h.registry.NewDraft(middleware.GetSessionID(c), seed)
	c.JSON(http.StatusCreated, d.View())
}

func (h *DraftHandler) Get(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d.View())
}

func (h *DraftHandler) AddFiles(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}

	files := make([]gallery.File, 0, len(headers))
	for _, fh := range headers {
		f, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		files = append(files, f)
	}

	added, err := d.Editor.AddFiles(files)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added, "draft": d.View()})
}

func readUpload(fh *multipart.FileHeader) (gallery.File, error) {
	if fh.Size > maxImageSize {
		return gallery.File{}, fmt.Errorf("%s is larger than %d MB", fh.Filename, maxImageSize>>20)
	}
	src, err := fh.Open()
	if err != nil {
		return gallery.File{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxImageSize))
	if err != nil {
		return gallery.File{}, err
	}
	// Content type is sniffed by the editor.
	return gallery.File{Name: fh.Filename, Data: data}, nil
}

type addURLRequest struct {
	URL string `json:"url"`
}

func (h *DraftHandler) AddURL(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	var req addURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	added := d.Editor.AddURL(req.URL)
	c.JSON(http.StatusOK, gin.H{"added": added, "draft": d.View()})
}

func (h *DraftHandler) RemoveImage(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	if !d.Editor.RemoveByHandle(c.Query("ref")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	c.JSON(http.StatusOK, d.View())
}

func (h *DraftHandler) Preview(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	f, ok := d.Editor.Preview(c.Param("handle"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "preview not found"})
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, f.ContentType, f.Data)
}

// Submit validates the form against the draft's images and sends it to
// the listing API. The draft survives failures so nothing is retyped.
func (h *DraftHandler) Submit(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	form := d.Form()
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d.SetForm(form)

	token := middleware.GetSession(c).Token
	images := d.Editor.Submission()

	var (
		saved *property.Property
		err   error
	)
	status := http.StatusOK
	if d.Mode() == workspace.ModeCreate {
		saved, err = h.properties.Create(c.Request.Context(), token, form, images)
		status = http.StatusCreated
	} else {
		saved, err = h.properties.Update(c.Request.Context(), token, d.PropertyID, form, images)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	h.registry.DiscardDraft(middleware.GetSessionID(c), d.ID)
	c.JSON(status, gin.H{"property": saved})
}

func (h *DraftHandler) Discard(c *gin.Context) {
	if err := h.registry.DiscardDraft(middleware.GetSessionID(c), c.Param("draftId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "draft discarded"})
}
