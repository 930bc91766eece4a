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

// Package useragent sets the User-Agent for firedoc requests to Firestore.
package useragent // import "firedoc.dev/internal/useragent"

import (
	"net/http"
	"strings"
)

// Prefix is the product token added to the User-Agent of firedoc requests.
const Prefix = "firedoc"

// Version is the firedoc version reported in the User-Agent.
const Version = "0.1.0"

// UserAgent returns the product token for api, such as "firedoc/0.1.0 firestore".
func UserAgent(api string) string {
	return Prefix + "/" + Version + " " + api
}

// userAgentTransport wraps an http.RoundTripper, adding a User-Agent header
// to each request.
type userAgentTransport struct {
	api  string
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	// Clone the request to avoid mutating it.
	newReq := req.Clone(req.Context())
	ua := UserAgent(t.api)
	if existing := req.UserAgent(); existing != "" && !strings.Contains(existing, ua) {
		ua = existing + " " + ua
	}
	newReq.Header.Set("User-Agent", ua)
	return base.RoundTrip(newReq)
}

// HTTPClient returns a copy of client that adds the firedoc product token for
// api to the User-Agent header of all requests.
func HTTPClient(client *http.Client, api string) *http.Client {
	c := *client
	c.Transport = &userAgentTransport{api: api, base: c.Transport}
	return &c
}
