// Package cdn uploads character assets to Bunny storage and builds their
// pull zone URLs.
package cdn

//go:generate mockgen -destination=mock/mock_client.go -package=cdnmock github.com/dabidoe/character-foundry/internal/clients/cdn Client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dabidoe/character-foundry/internal/errors"
)

// DefaultRegion is Falkenstein
const DefaultRegion = "de"

// DefaultPurgeURL is Bunny's cache purge endpoint
const DefaultPurgeURL = "https://api.bunny.net/purge"

// maxErrorBody caps how much of a failed response is logged
const maxErrorBody = 512

var regionEndpoints = map[string]string{
	"de":  "storage.bunnycdn.com",
	"ny":  "ny.storage.bunnycdn.com",
	"la":  "la.storage.bunnycdn.com",
	"sg":  "sg.storage.bunnycdn.com",
	"syd": "syd.storage.bunnycdn.com",
}

// StorageEndpoint returns the storage host of a region; unknown regions use
// the default
func StorageEndpoint(region string) string {
	if host, ok := regionEndpoints[strings.ToLower(region)]; ok {
		return host
	}
	return regionEndpoints[DefaultRegion]
}

// UploadInput is one file upload
type UploadInput struct {
	Path        string
	Data        []byte
	ContentType string
}

// UploadOutput describes the stored file
type UploadOutput struct {
	URL  string `json:"cdnUrl"`
	Path string `json:"fileName"`
	Size int    `json:"size"`
}

// File is one entry of a storage directory listing
type File struct {
	ObjectName  string    `json:"ObjectName"`
	Path        string    `json:"Path"`
	Length      int64     `json:"Length"`
	IsDirectory bool      `json:"IsDirectory"`
	LastChanged time.Time `json:"-"`
	RawChanged  string    `json:"LastChanged"`
}

// Client is the storage surface the portrait pipeline needs
type Client interface {
	Upload(ctx context.Context, input *UploadInput) (*UploadOutput, error)
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, dir string) ([]File, error)
	Purge(ctx context.Context, fileURL string) error
	FileURL(path string) string
}

// Config for the Bunny client
type Config struct {
	APIKey      string
	StorageZone string
	Region      string
	// PullZoneURL is the public base, e.g. https://foundry.b-cdn.net
	PullZoneURL string

	// StorageBaseURL and PurgeURL override the Bunny endpoints
	StorageBaseURL string
	PurgeURL       string

	HTTPClient *http.Client
	Timeout    time.Duration
}

// Validate checks required fields and fills defaults
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("api_key", c.APIKey, vb)
	errors.ValidateRequired("storage_zone", c.StorageZone, vb)
	errors.ValidateRequired("pull_zone_url", c.PullZoneURL, vb)

	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.StorageBaseURL == "" {
		c.StorageBaseURL = "https://" + StorageEndpoint(c.Region)
	}
	if c.PurgeURL == "" {
		c.PurgeURL = DefaultPurgeURL
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}

	return vb.Build()
}

type bunny struct {
	apiKey   string
	baseURL  string
	pullZone string
	purgeURL string
	http     *http.Client
}

// New creates a Bunny storage client
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &bunny{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(cfg.StorageBaseURL, "/") + "/" + strings.Trim(cfg.StorageZone, "/"),
		pullZone: strings.TrimRight(cfg.PullZoneURL, "/"),
		purgeURL: cfg.PurgeURL,
		http:     httpClient,
	}, nil
}

func cleanPath(p string) string {
	return strings.TrimLeft(strings.TrimSpace(p), "/")
}

func (b *bunny) FileURL(path string) string {
	return b.pullZone + "/" + cleanPath(path)
}

func (b *bunny) Upload(ctx context.Context, input *UploadInput) (*UploadOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	path := cleanPath(input.Path)
	if path == "" {
		return nil, errors.InvalidArgument("path is required")
	}
	if len(input.Data) == 0 {
		return nil, errors.InvalidArgument("data is required")
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := b.do(ctx, http.MethodPut, b.baseURL+"/"+path, input.Data, contentType); err != nil {
		return nil, errors.External(err, "failed to upload to CDN")
	}

	slog.InfoContext(ctx, "uploaded file to CDN", "path", path, "size", len(input.Data))

	return &UploadOutput{
		URL:  b.FileURL(path),
		Path: path,
		Size: len(input.Data),
	}, nil
}

func (b *bunny) Delete(ctx context.Context, path string) error {
	path = cleanPath(path)
	if path == "" {
		return errors.InvalidArgument("path is required")
	}

	if _, err := b.do(ctx, http.MethodDelete, b.baseURL+"/"+path, nil, ""); err != nil {
		return errors.External(err, "failed to delete from CDN")
	}
	return nil
}

func (b *bunny) List(ctx context.Context, dir string) ([]File, error) {
	dir = cleanPath(dir)
	if dir != "" && !strings.HasSuffix(dir, "/") {
		dir += "/"
	}

	body, err := b.do(ctx, http.MethodGet, b.baseURL+"/"+dir, nil, "")
	if err != nil {
		return nil, errors.External(err, "failed to list CDN files")
	}

	var files []File
	if err := json.Unmarshal(body, &files); err != nil {
		return nil, errors.External(err, "failed to decode CDN listing")
	}
	for i := range files {
		if t, err := time.Parse("2006-01-02T15:04:05.999", files[i].RawChanged); err == nil {
			files[i].LastChanged = t
		}
	}
	return files, nil
}

func (b *bunny) Purge(ctx context.Context, fileURL string) error {
	if fileURL == "" {
		return errors.InvalidArgument("url is required")
	}

	target := b.purgeURL + "?url=" + url.QueryEscape(fileURL)
	if _, err := b.do(ctx, http.MethodPost, target, nil, ""); err != nil {
		return errors.External(err, "failed to purge CDN cache")
	}
	return nil
}

func (b *bunny) do(ctx context.Context, method, target string, data []byte, contentType string) ([]byte, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("AccessKey", b.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method == http.MethodGet {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(payload) > maxErrorBody {
			payload = payload[:maxErrorBody]
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	return payload, nil
}
