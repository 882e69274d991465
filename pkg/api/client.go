package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/inspect"
	"github.com/sdc-protocol/sdc-go/pkg/mdib"
)

// DefaultTimeout bounds every client request.
const DefaultTimeout = 10 * time.Second

// Client talks to the API of a running provider.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the API at baseURL (e.g.
// "http://127.0.0.1:8080"). A nil httpClient uses DefaultTimeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// StatusError is returned for non-2xx replies.
type StatusError struct {
	Status  int
	Message string
	Details string
}

func (e *StatusError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Snapshot fetches the materialized MDIB.
func (c *Client) Snapshot(ctx context.Context) (*mdib.Snapshot, error) {
	var snap mdib.Snapshot
	if err := c.do(ctx, http.MethodGet, "/snapshot", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Info fetches sequence id, MDIB version and operation count.
func (c *Client) Info(ctx context.Context) (*InfoResponse, error) {
	var info InfoResponse
	if err := c.do(ctx, http.MethodGet, "/info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Operations lists the registered operations.
func (c *Client) Operations(ctx context.Context) ([]Operation, error) {
	var ops []Operation
	if err := c.do(ctx, http.MethodGet, "/operations", nil, &ops); err != nil {
		return nil, err
	}
	return ops, nil
}

// Invoke calls an operation. argument takes the JSON shape of the
// operation kind.
func (c *Client) Invoke(ctx context.Context, handle string, argument any, source string) (*InvocationInfo, error) {
	var info InvocationInfo
	body := InvokeRequest{Argument: argument, Source: source}
	if err := c.do(ctx, http.MethodPost, "/operations/"+url.PathEscape(handle), body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Journal lists recorded reports of an operation; an empty handle lists
// all. limit 0 means no limit.
func (c *Client) Journal(ctx context.Context, handle string, limit int) ([]JournalEntry, error) {
	path := "/journal"
	if handle != "" {
		path += "/" + url.PathEscape(handle)
	}
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var entries []JournalEntry
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &StatusError{Status: resp.StatusCode, Message: e.Error, Details: e.Details}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ inspect.SnapshotSource = (*Client)(nil)
