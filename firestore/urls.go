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
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"firedoc.dev/gcp"
	"golang.org/x/oauth2"
)

// Scheme is the URL scheme URLOpener opens clients for.
const Scheme = "firestore"

// URLOpener opens Firestore URLs like
// "firestore://myproject/rooms/eros/messages?database=mydb".
//
// The host is the project ID and the path is the client's path prefix below
// the database's documents. The following query parameters are supported:
//
//   - database: the database name; defaults to Options.Database, then "(default)".
//   - host: the REST endpoint host, for example "localhost:8080" for the emulator.
//   - insecure: "true" to use http instead of https.
type URLOpener struct {
	// Transport sends the client's requests. If nil, a transport over
	// http.DefaultClient is used.
	Transport Transport

	// TokenSource, if set, supplies the bearer token the client is
	// authorized with when it is opened.
	TokenSource oauth2.TokenSource

	// Options specifies the options to pass to New.
	Options Options
}

// OpenClientURL opens a Client based on u.
func (o *URLOpener) OpenClientURL(ctx context.Context, u *url.URL) (*Client, error) {
	if u.Scheme != Scheme {
		return nil, fmt.Errorf("open client %v: scheme %q, want %q", u, u.Scheme, Scheme)
	}
	projectID := u.Host
	if projectID == "" {
		return nil, fmt.Errorf("open client %v: project ID is required", u)
	}
	opts := o.Options
	q := u.Query()
	if v := q.Get("database"); v != "" {
		opts.Database = v
	}
	if v := q.Get("host"); v != "" {
		opts.Host = v
	}
	if v := q.Get("insecure"); v != "" {
		insecure, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("open client %v: invalid insecure value %q", u, v)
		}
		opts.Insecure = insecure
	}
	q.Del("database")
	q.Del("host")
	q.Del("insecure")
	for param := range q {
		return nil, fmt.Errorf("open client %v: invalid query parameter %q", u, param)
	}
	t := o.Transport
	if t == nil {
		t = NewHTTPTransport(nil)
	}
	c := New(t, projectID, strings.TrimPrefix(u.Path, "/"), &opts)
	if o.TokenSource != nil {
		if err := c.AuthorizeTokenSource(o.TokenSource); err != nil {
			return nil, fmt.Errorf("open client %v: %v", u, err)
		}
	}
	return c, nil
}

// lazyCredsOpener authorizes clients with Application Default Credentials,
// looked up on first use. Clients for an insecure (emulator) endpoint are
// opened without credentials.
type lazyCredsOpener struct {
	init   sync.Once
	opener *URLOpener
	err    error
}

func (o *lazyCredsOpener) OpenClientURL(ctx context.Context, u *url.URL) (*Client, error) {
	if insecure, _ := strconv.ParseBool(u.Query().Get("insecure")); insecure {
		return (&URLOpener{}).OpenClientURL(ctx, u)
	}
	o.init.Do(func() {
		creds, err := gcp.DefaultCredentials(ctx)
		if err != nil {
			o.err = err
			return
		}
		o.opener = &URLOpener{TokenSource: gcp.CredentialsTokenSource(creds)}
	})
	if o.err != nil {
		return nil, fmt.Errorf("open client %v: %v", u, o.err)
	}
	return o.opener.OpenClientURL(ctx, u)
}

var defaultOpener = &lazyCredsOpener{}

// OpenClientURL opens the Client identified by urlstr, which must have the
// form described at URLOpener. Unless the URL sets insecure=true, the client
// is authorized with a token from Application Default Credentials.
func OpenClientURL(ctx context.Context, urlstr string) (*Client, error) {
	u, err := url.Parse(urlstr)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		return nil, errors.New("firestore: URL has no scheme")
	}
	return defaultOpener.OpenClientURL(ctx, u)
}
