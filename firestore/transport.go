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

package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"

	"firedoc.dev/internal/docerr"
	"firedoc.dev/internal/useragent"
	"golang.org/x/net/context/ctxhttp"
)

// Transport sends document requests. Implementations must not retain header
// or body after the call returns.
type Transport interface {
	// Get issues a GET request to url with the given headers.
	Get(ctx context.Context, url string, header http.Header) (*Response, error)
	// Patch issues a PATCH request to url with the given headers and body
	// encoded as JSON.
	Patch(ctx context.Context, url string, header http.Header, body interface{}) (*Response, error)
}

// Response is the part of an HTTP response the client looks at.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// decodeJSON unmarshals the response body into v, preserving integers as
// json.Number.
func (r *Response) decodeJSON(v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()
	return dec.Decode(v)
}

// maxResponseSize bounds the bytes read from a response body. Firestore
// documents are at most 1 MiB, but error pages and field names add overhead.
var maxResponseSize int64 = 32 << 20

// HTTPTransport is a Transport that sends requests with an *http.Client.
type HTTPTransport struct {
	// Client is the HTTP client used to make requests.
	Client *http.Client
}

// NewHTTPTransport returns a transport that sends requests through client,
// adding the firedoc product token to the User-Agent. A nil client means
// http.DefaultClient.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{Client: useragent.HTTPClient(client, "firestore")}
}

// Get implements Transport.Get.
func (t *HTTPTransport) Get(ctx context.Context, url string, header http.Header) (*Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	setHeader(req, header)
	return t.do(ctx, req)
}

// Patch implements Transport.Patch.
func (t *HTTPTransport) Patch(ctx context.Context, url string, header http.Header, body interface{}) (*Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("firestore: encode request body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPatch, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	setHeader(req, header)
	req.Header.Set("Content-Type", "application/json")
	return t.do(ctx, req)
}

func setHeader(req *http.Request, header http.Header) {
	for k, vv := range header {
		req.Header[k] = append([]string(nil), vv...)
	}
}

func (t *HTTPTransport) do(ctx context.Context, req *http.Request) (*Response, error) {
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := ctxhttp.Do(ctx, client, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(&io.LimitedReader{R: resp.Body, N: maxResponseSize + 1})
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > maxResponseSize {
		return nil, docerr.Newf(docerr.ResourceExhausted, nil,
			"firestore: response to %s %s exceeds %d bytes", req.Method, req.URL, maxResponseSize)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
