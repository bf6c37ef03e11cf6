package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/woodshed-app/woodshed/internal/store"
)

// HTTPRemote is a RemoteStore over a document-oriented HTTP API:
//
//	GET    /collections/{collection}/records
//	PUT    /collections/{collection}/records/{id}   (update, 404 when absent)
//	POST   /collections/{collection}/records/{id}   (create)
//	DELETE /collections/{collection}/records/{id}
type HTTPRemote struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewHTTPRemote creates a remote with sane defaults. A hung remote call
// would otherwise stall the whole sync cycle, hence the bounded timeout.
func NewHTTPRemote(baseURL, apiKey string) *HTTPRemote {
	timeout := 10 * time.Second
	return &HTTPRemote{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
		Timeout:    timeout,
	}
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// List fetches every record of a collection.
func (r *HTTPRemote) List(ctx context.Context, collection string) ([]store.Record, error) {
	var resp struct {
		Items []store.Record `json:"items"`
	}
	err := r.do(ctx, http.MethodGet, r.collectionPath(collection), nil, &resp)
	return resp.Items, err
}

// Create inserts a record.
func (r *HTTPRemote) Create(ctx context.Context, collection, id string, record store.Record) error {
	return r.do(ctx, http.MethodPost, r.recordPath(collection, id), record, nil)
}

// Update overwrites a record; ErrNotFound when it does not exist.
func (r *HTTPRemote) Update(ctx context.Context, collection, id string, record store.Record) error {
	return r.do(ctx, http.MethodPut, r.recordPath(collection, id), record, nil)
}

// Delete removes a record; ErrNotFound when it does not exist.
func (r *HTTPRemote) Delete(ctx context.Context, collection, id string) error {
	return r.do(ctx, http.MethodDelete, r.recordPath(collection, id), nil, nil)
}

func (r *HTTPRemote) do(ctx context.Context, method, endpoint string, body any, out any) error {
	// Fallback for zero-value remotes; never assigned back, so a shared
	// remote stays safe for concurrent use.
	client := r.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: r.Timeout}
	}
	url := strings.TrimRight(r.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.APIKey != "" {
		req.Header.Set("X-Api-Key", r.APIKey)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (r *HTTPRemote) collectionPath(collection string) string {
	return fmt.Sprintf("collections/%s/records", url.PathEscape(collection))
}

func (r *HTTPRemote) recordPath(collection, id string) string {
	return fmt.Sprintf("collections/%s/records/%s", url.PathEscape(collection), url.PathEscape(id))
}
