package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/propdesk/propdesk/config"
	"github.com/propdesk/propdesk/internal/core/property"
	"github.com/propdesk/propdesk/internal/core/session"
)

// StatusError is a non-2xx response from the listing API.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, msg)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case property.ErrNotFound:
		return e.Code == http.StatusNotFound
	case property.ErrUnauthorized:
		return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
	}
	return false
}

type Client struct {
	baseURL   string
	imageBase string
	http      *http.Client
	logger    *slog.Logger
}

func NewClient(cfg config.APIConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	imageBase := cfg.ImageBaseURL
	if imageBase == "" {
		imageBase = cfg.BaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		imageBase: imageBase,
		http:      &http.Client{Timeout: timeout},
		logger:    logger.With("component", "remote"),
	}
}

func (c *Client) ListProperties(ctx context.Context, params url.Values) (*property.Page, error) {
	path := "/properties"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var page property.Page
	if err := c.do(ctx, http.MethodGet, path, "", nil, "", &page); err != nil {
		return nil, err
	}
	for i := range page.Items {
		c.resolveImages(&page.Items[i])
	}
	return &page, nil
}

func (c *Client) GetProperty(ctx context.Context, id string) (*property.Property, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/properties/"+url.PathEscape(id), "", nil, "", &raw); err != nil {
		return nil, err
	}
	return c.decodeProperty(raw)
}

func (c *Client) CreateProperty(ctx context.Context, token string, payload *property.Payload) (*property.Property, error) {
	return c.send(ctx, "/properties", token, payload)
}

// UpdateProperty posts to the item path; the API does not accept PUT with
// multipart bodies.
func (c *Client) UpdateProperty(ctx context.Context, token, id string, payload *property.Payload) (*property.Property, error) {
	return c.send(ctx, "/properties/"+url.PathEscape(id), token, payload)
}

func (c *Client) DeleteProperty(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/properties/"+url.PathEscape(id), token, nil, "", nil)
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (session.Values, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return session.Values{}, err
	}

	var resp loginResponse
	err = c.do(ctx, http.MethodPost, "/login", "", bytes.NewReader(body), "application/json", &resp)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 {
			return session.Values{}, session.ErrInvalidCredentials
		}
		return session.Values{}, err
	}
	if resp.Token == "" {
		return session.Values{}, session.ErrInvalidCredentials
	}

	return session.Values{Token: resp.Token, Name: resp.User.Name, Email: resp.User.Email}, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/logout", token, nil, "", nil)
}

func (c *Client) send(ctx context.Context, path, token string, payload *property.Payload) (*property.Property, error) {
	body, contentType, err := encodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, path, token, body, contentType, &raw); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &property.Property{}, nil
	}
	return c.decodeProperty(raw)
}

func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("listing api unreachable", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	c.logger.Debug("listing api call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// decodeProperty accepts both a bare object and one wrapped in "data".
func (c *Client) decodeProperty(raw json.RawMessage) (*property.Property, error) {
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Data) > 0 && wrapped.Data[0] == '{' {
		raw = wrapped.Data
	}

	var p property.Property
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode property: %w", err)
	}
	c.resolveImages(&p)
	return &p, nil
}

func (c *Client) resolveImages(p *property.Property) {
	for i := range p.Images {
		if p.Images[i].Path != "" {
			p.Images[i].Path = p.Images[i].URL(c.imageBase)
		}
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodePayload(payload *property.Payload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range payload.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}

	for _, f := range payload.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, quoteEscaper.Replace(f.Name)))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	for _, u := range payload.RetainedURLs {
		if err := w.WriteField("imageUrls[]", u); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
