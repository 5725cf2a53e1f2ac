// Package laz is the runtime half of a schema-driven RPC system. A Client
// discovers a server's functions and routes from its published metadata
// document, resolves logical function names onto HTTP endpoints, and executes
// calls: reads as GET with query-encoded parameters, writes as POST with a
// JSON body.
package laz

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

const defaultAPIPrefix = "/api"

// Client is the runtime dispatcher for one server. All state is written once
// during construction or an explicit Refresh; the metadata snapshot is swapped
// atomically, so a Client is safe for unlimited concurrent callers.
type Client struct {
	addr       ServerAddr
	httpClient *http.Client
	resolver   Resolver
	apiPrefix  string
	logger     *slog.Logger
	snapshot   atomic.Pointer[Snapshot]
}

// NewClient creates a client for the given server with an empty metadata
// snapshot. Call Init to fetch metadata, or use the package-level Init.
func NewClient(addr ServerAddr) *Client {
	c := &Client{
		addr:       addr,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		resolver:   HeuristicResolver{},
		apiPrefix:  defaultAPIPrefix,
	}
	c.snapshot.Store(emptySnapshot())
	return c
}

// WithHTTPClient sets a custom HTTP client.
// It returns the client for chaining.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithResolver replaces the endpoint resolution strategy.
func (c *Client) WithResolver(r Resolver) *Client {
	c.resolver = r
	return c
}

// WithAPIPrefix sets the path prefix prepended to resolved endpoint paths.
// The default is "/api". A resolved path that already starts with the prefix
// is never prefixed twice. Use "" to disable prefixing.
func (c *Client) WithAPIPrefix(prefix string) *Client {
	c.apiPrefix = prefix
	return c
}

// WithLogger sets a custom logger. If not set, slog.Default() will be used.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger
	return c
}

func (c *Client) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// InitResult reports how client initialization went. Degraded is true when
// the metadata fetch or parse failed; the client is still usable for direct
// CallEndpoint calls, and Cause carries the failure for callers that want to
// observe degradation without inspecting a log sink.
type InitResult struct {
	Client   *Client
	Degraded bool
	Cause    error
}

// Init fetches the metadata document and installs the snapshot. It never
// fails: on any fetch or parse error the client keeps an empty snapshot and
// the result is marked degraded.
func (c *Client) Init(ctx context.Context) *InitResult {
	snap, err := c.fetchSnapshot(ctx)
	if err != nil {
		c.log().Warn("failed to load RPC metadata, continuing with empty snapshot",
			slog.String("server", c.addr.BaseURL()),
			slog.Any("error", err))
		return &InitResult{Client: c, Degraded: true, Cause: err}
	}

	c.snapshot.Store(snap)
	c.log().Info("loaded RPC metadata",
		slog.String("server", c.addr.BaseURL()),
		slog.Int("functions", len(snap.Functions)),
		slog.Int("endpoints", len(snap.Endpoints)))
	return &InitResult{Client: c}
}

// Init creates a client for addr and loads its metadata. See Client.Init for
// the degradation contract.
func Init(ctx context.Context, addr ServerAddr) *InitResult {
	return NewClient(addr).Init(ctx)
}

// Refresh re-fetches the metadata document and atomically swaps the snapshot.
// Unlike Init, failures are surfaced and the previous snapshot is kept.
func (c *Client) Refresh(ctx context.Context) error {
	snap, err := c.fetchSnapshot(ctx)
	if err != nil {
		return err
	}
	c.snapshot.Store(snap)
	return nil
}

func (c *Client) fetchSnapshot(ctx context.Context) (*Snapshot, error) {
	raw, err := FetchMetadata(ctx, c.httpClient, c.addr.BaseURL())
	if err != nil {
		return nil, err
	}
	return ParseSnapshot(raw)
}

// FetchMetadata retrieves the raw metadata document from a server. A nil
// httpClient falls back to http.DefaultClient. Callers that need the parsed
// form pass the result to ParseSnapshot; the generator keeps the raw bytes
// for change detection.
func FetchMetadata(ctx context.Context, httpClient *http.Client, baseURL string) ([]byte, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	metadataURL := strings.TrimRight(baseURL, "/") + MetadataPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metadataURL, nil)
	if err != nil {
		return nil, WrapError(CodeTransport, err, "cannot build metadata request")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, WrapError(CodeTransport, err, "metadata fetch failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(CodeTransport, err, "cannot read metadata response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, Errorf(CodeServer, "metadata fetch returned HTTP %d", resp.StatusCode).
			WithDetail("status", resp.StatusCode).
			WithDetail("body", string(body))
	}

	return body, nil
}

// Snapshot returns the current metadata snapshot. The returned value must be
// treated as read-only.
func (c *Client) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

// FunctionNames returns the names of all known functions, sorted.
func (c *Client) FunctionNames() []string {
	return c.Snapshot().FunctionNames()
}

// Function returns the metadata for one function.
func (c *Client) Function(name string) (FunctionMetadata, bool) {
	fn, ok := c.Snapshot().Functions[name]
	return fn, ok
}

// Endpoints returns the discovered endpoint list in server order.
func (c *Client) Endpoints() []EndpointInfo {
	return c.Snapshot().Endpoints
}

// CallFunction looks up a function by name, resolves its endpoint and
// executes the call. The result is the raw JSON response.
func (c *Client) CallFunction(ctx context.Context, name string, params any) (json.RawMessage, error) {
	snap := c.Snapshot()

	fn, ok := snap.Functions[name]
	if !ok {
		return nil, Errorf(CodeFunctionNotFound, "unknown function: %s", name)
	}

	path, ok := c.resolver.Resolve(name, snap.Endpoints)
	if !ok {
		return nil, Errorf(CodeFunctionNotFound, "no endpoint found for function: %s", name)
	}

	return c.CallEndpoint(ctx, path, fn.IsMutation, params)
}

// CallWithInput JSON-encodes a typed input value and calls the named
// function. For reads with a struct input, the struct's fields become query
// parameters; for writes it becomes the JSON body.
func (c *Client) CallWithInput(ctx context.Context, name string, input any) (json.RawMessage, error) {
	return c.CallFunction(ctx, name, input)
}

// CallEndpoint executes a call against an explicit endpoint path, bypassing
// function lookup and resolution. Mutations POST a JSON body; reads GET with
// the params flattened into the query string. A non-2xx response yields a
// server error carrying the status and body text.
func (c *Client) CallEndpoint(ctx context.Context, path string, mutation bool, params any) (json.RawMessage, error) {
	fullURL := c.addr.BaseURL() + c.prefixed(path)
	c.log().Debug("calling RPC endpoint",
		slog.String("url", fullURL),
		slog.Bool("mutation", mutation))

	var req *http.Request
	if mutation {
		var body io.Reader
		if params != nil {
			encoded, err := json.Marshal(params)
			if err != nil {
				return nil, WrapError(CodeDecode, err, "cannot encode request body")
			}
			body = bytes.NewReader(encoded)
		}
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, body)
		if err != nil {
			return nil, WrapError(CodeTransport, err, "cannot build request")
		}
		if body != nil {
			r.Header.Set("Content-Type", "application/json")
		}
		req = r
	} else {
		r, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, WrapError(CodeTransport, err, "cannot build request")
		}
		query, err := buildQuery(params)
		if err != nil {
			return nil, err
		}
		if len(query) > 0 {
			r.URL.RawQuery = query.Encode()
		}
		req = r
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, WrapError(CodeTransport, err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(CodeTransport, err, "cannot read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, Errorf(CodeServer, "endpoint %s failed with status %d: %s",
			path, resp.StatusCode, string(body)).
			WithDetail("status", resp.StatusCode).
			WithDetail("body", string(body))
	}

	var out json.RawMessage
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, WrapError(CodeDecode, err, "response body is not valid JSON")
	}
	return out, nil
}

// prefixed joins the configured API prefix with a resolved endpoint path.
// Discovered URIs sometimes already carry the prefix; in that case it is not
// applied again, so the final URL contains the prefix exactly once.
func (c *Client) prefixed(path string) string {
	if c.apiPrefix == "" {
		return path
	}
	if path == c.apiPrefix || strings.HasPrefix(path, c.apiPrefix+"/") {
		return path
	}
	return c.apiPrefix + path
}

// CallAs calls a function and decodes the JSON result into T.
func CallAs[T any](ctx context.Context, c *Client, name string, params any) (T, error) {
	var out T
	raw, err := c.CallFunction(ctx, name, params)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, WrapError(CodeDecode, err, "response does not match the expected shape")
	}
	return out, nil
}
