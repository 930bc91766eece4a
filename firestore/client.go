// Copyright 2026 The Firedoc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package firestore provides a minimal client for reading and writing
// Firestore documents through the Firestore REST API.
//
// A Client is bound to a project, a database and a path prefix inside it,
// usually a collection. GetDocument fetches a document and decodes its
// fields from Firestore's typed wire values into plain Go values.
// UpdateDocument writes fields that are already in wire form; the client
// does not encode Go values for writes.
//
// The client does not retry, cache, batch, or obtain credentials. The HTTP
// exchange is delegated to a Transport, and the bearer token is supplied with
// Options.Token, Authorize or AuthorizeTokenSource.
//
// URLs
//
// OpenClientURL opens clients from URLs like
// "firestore://myproject/users?database=mydb". See URLOpener for the format.
//
// OpenCensus Integration
//
// GetDocument and UpdateDocument create OpenCensus spans, and record their
// latency under the views in OpenCensusViews.
package firestore // import "firedoc.dev/firestore"

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"firedoc.dev/internal/docerr"
	"firedoc.dev/internal/trace"
	"github.com/google/wire"
	"golang.org/x/oauth2"
)

const (
	// DefaultHost is the Firestore REST endpoint.
	DefaultHost = "firestore.googleapis.com"
	// DefaultDatabase is the name of a project's default database.
	DefaultDatabase = "(default)"

	apiVersion = "v1"
	pkgName    = "firedoc.dev/firestore"
)

var (
	latencyMeasure = trace.LatencyMeasure(pkgName)

	// OpenCensusViews are predefined views for OpenCensus metrics.
	OpenCensusViews = trace.Views(pkgName, latencyMeasure)
)

// Set is a Wire provider set that provides a *Client over the default HTTP
// transport, given an *http.Client and a *Config.
var Set = wire.NewSet(
	NewHTTPTransport,
	wire.Bind(new(Transport), new(*HTTPTransport)),
	OpenClient,
)

// Options sets options for New.
type Options struct {
	// Database is the database name. Defaults to DefaultDatabase.
	Database string

	// Token, if set, is sent as a bearer token with every request.
	Token string

	// Host is the host of the REST endpoint, optionally with a port.
	// Defaults to DefaultHost.
	Host string

	// Insecure makes the client use http instead of https. It is meant for
	// the Firestore emulator.
	Insecure bool

	// ErrorDetail converts failed responses into errors.
	// Defaults to DetailedError.
	ErrorDetail ErrorDetailFunc

	// CheckWrites makes UpdateDocument report a non-200 response as an error.
	// By default the response to a write is not inspected.
	CheckWrites bool

	// MaxDepth, if positive, limits how deeply GetDocument decodes nested
	// maps and arrays. Top-level fields are at depth 1; values below
	// MaxDepth decode to nil.
	MaxDepth int
}

// Config holds what OpenClient needs to construct a Client.
type Config struct {
	ProjectID string
	// SubPath is the path below the database's documents, such as "users"
	// or "rooms/eros/messages".
	SubPath string
	Options Options
}

// OpenClient is New for callers that carry their settings in a Config.
func OpenClient(t Transport, cfg *Config) *Client {
	opts := cfg.Options
	return New(t, cfg.ProjectID, cfg.SubPath, &opts)
}

// Client reads and writes documents under a fixed path prefix.
// It is safe for concurrent use.
type Client struct {
	transport   Transport
	basePath    string
	scheme      string
	errorDetail ErrorDetailFunc
	checkWrites bool
	maxDepth    int
	tracer      *trace.Tracer

	mu     sync.RWMutex
	header http.Header
}

// New returns a Client for the documents under subPath in the given project.
// opts may be nil. New does no I/O.
func New(t Transport, projectID, subPath string, opts *Options) *Client {
	if opts == nil {
		opts = &Options{}
	}
	host := opts.Host
	if host == "" {
		host = DefaultHost
	}
	database := opts.Database
	if database == "" {
		database = DefaultDatabase
	}
	scheme := "https://"
	if opts.Insecure {
		scheme = "http://"
	}
	errorDetail := opts.ErrorDetail
	if errorDetail == nil {
		errorDetail = DetailedError
	}
	c := &Client{
		transport:   t,
		basePath:    host + "/" + apiVersion + "/projects/" + projectID + "/databases/" + database + "/documents/" + subPath,
		scheme:      scheme,
		errorDetail: errorDetail,
		checkWrites: opts.CheckWrites,
		maxDepth:    opts.MaxDepth,
		tracer:      &trace.Tracer{Package: pkgName, LatencyMeasure: latencyMeasure},
		header:      http.Header{},
	}
	if opts.Token != "" {
		c.Authorize(opts.Token)
	}
	return c
}

// Authorize sets the bearer token sent with subsequent requests, replacing
// any previous one.
func (c *Client) Authorize(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.header.Set("Authorization", "Bearer "+token)
}

// AuthorizeTokenSource fetches a token from ts and calls Authorize with its
// access token. The token is not refreshed; call AuthorizeTokenSource again
// to pick up a new one.
func (c *Client) AuthorizeTokenSource(ts oauth2.TokenSource) error {
	tok, err := ts.Token()
	if err != nil {
		return docerr.Newf(docerr.Unauthenticated, err, "firestore: obtain token")
	}
	c.Authorize(tok.AccessToken)
	return nil
}

// Header returns a copy of the headers sent with each request.
func (c *Client) Header() http.Header {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.header.Clone()
}

// URL returns the request URL for the document at path, relative to the
// client's path prefix. Runs of slashes are collapsed into one.
func (c *Client) URL(path string) string {
	return c.scheme + collapseSlashes(c.basePath+"/"+path)
}

// collapseSlashes replaces every run of '/' in s with a single '/'.
func collapseSlashes(s string) string {
	if !strings.Contains(s, "//") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prev := byte(0)
	for i := 0; i < len(s); i++ {
		if s[i] == '/' && prev == '/' {
			continue
		}
		prev = s[i]
		b.WriteByte(s[i])
	}
	return b.String()
}

// GetDocument fetches the document at path, relative to the client's path
// prefix, and returns its decoded fields. See DecodeDocument for the value
// types.
//
// A non-200 response is converted into an error by the ErrorDetail option.
// Errors from the transport are returned as is.
func (c *Client) GetDocument(ctx context.Context, path string) (_ map[string]interface{}, err error) {
	ctx = c.tracer.Start(ctx, "GetDocument")
	defer func() { c.tracer.End(ctx, "GetDocument", err) }()

	resp, err := c.transport.Get(ctx, c.URL(path), c.Header())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.errorDetail(resp)
	}
	var doc struct {
		Fields *map[string]interface{} `json:"fields"`
	}
	if err := resp.decodeJSON(&doc); err != nil {
		return nil, docerr.Newf(docerr.Internal, err, "firestore: malformed document %q", path)
	}
	if doc.Fields == nil {
		return nil, docerr.Newf(docerr.Internal, nil, "firestore: document %q has no fields member", path)
	}
	return decodeFields(*doc.Fields, 1, c.maxDepth), nil
}

// UpdateDocument writes fields to the document at path, relative to the
// client's path prefix, with a PATCH whose body is {"fields": data}.
// data must already be in Firestore's wire form, for example
// {"age": {"integerValue": "36"}}.
//
// Unless the CheckWrites option is set, the response is not inspected, and
// only transport errors are reported.
func (c *Client) UpdateDocument(ctx context.Context, path string, data map[string]interface{}) (err error) {
	ctx = c.tracer.Start(ctx, "UpdateDocument")
	defer func() { c.tracer.End(ctx, "UpdateDocument", err) }()

	resp, err := c.transport.Patch(ctx, c.URL(path), c.Header(), map[string]interface{}{"fields": data})
	if err != nil {
		return err
	}
	if c.checkWrites && resp.StatusCode != http.StatusOK {
		return c.errorDetail(resp)
	}
	return nil
}
