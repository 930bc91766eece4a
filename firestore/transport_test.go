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
	"net/http"
	"strings"
	"testing"

	"firedoc.dev/docerrors"
	"firedoc.dev/internal/testing/fakefs"
	"firedoc.dev/internal/testing/replay"
	"firedoc.dev/requestlog"
	"github.com/dnaeon/go-vcr/recorder"
	"github.com/google/go-cmp/cmp"
)

const docName = "projects/my-project-id/databases/(default)/documents/users/ada"

func newFakeClient(t *testing.T, opts Options) (*Client, *fakefs.Server) {
	t.Helper()
	srv := fakefs.NewServer()
	t.Cleanup(srv.Close)
	opts.Host = srv.Host()
	opts.Insecure = true
	return New(NewHTTPTransport(srv.Client()), "my-project-id", "users", &opts), srv
}

func TestHTTPTransportRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, srv := newFakeClient(t, Options{Token: "secret", CheckWrites: true})
	srv.Token = "secret"

	data := map[string]interface{}{
		"name": map[string]interface{}{"stringValue": "Ada"},
		"age":  map[string]interface{}{"integerValue": "36"},
		"tags": map[string]interface{}{"arrayValue": map[string]interface{}{"values": []interface{}{
			map[string]interface{}{"stringValue": "math"},
			map[string]interface{}{"booleanValue": true},
		}}},
	}
	if err := c.UpdateDocument(ctx, "ada", data); err != nil {
		t.Fatal(err)
	}
	got, err := c.GetDocument(ctx, "ada")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]interface{}{
		"name": "Ada",
		"age":  int64(36),
		"tags": []interface{}{"math", true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}

	reqs := srv.Requests()
	if len(reqs) != 2 {
		t.Fatalf("got %d requests, want 2", len(reqs))
	}
	if reqs[0].Method != http.MethodPatch || reqs[1].Method != http.MethodGet {
		t.Errorf("got methods %s, %s; want PATCH, GET", reqs[0].Method, reqs[1].Method)
	}
	for _, r := range reqs {
		if r.Path != "/v1/"+docName {
			t.Errorf("got path %q, want %q", r.Path, "/v1/"+docName)
		}
		if r.Authorization != "Bearer secret" {
			t.Errorf("got Authorization %q", r.Authorization)
		}
	}
	var body map[string]interface{}
	if err := json.Unmarshal(reqs[0].Body, &body); err != nil {
		t.Fatal(err)
	}
	if _, ok := body["fields"]; !ok || len(body) != 1 {
		t.Errorf("PATCH body %s, want a single fields member", reqs[0].Body)
	}
}

func TestHTTPTransportErrors(t *testing.T) {
	ctx := context.Background()
	c, srv := newFakeClient(t, Options{CheckWrites: true})

	_, err := c.GetDocument(ctx, "nobody")
	if got := docerrors.Code(err); got != docerrors.NotFound {
		t.Errorf("GetDocument missing: got %v (code %v), want NotFound", err, got)
	}

	bad := map[string]interface{}{"a": map[string]interface{}{"bogusValue": 1}}
	err = c.UpdateDocument(ctx, "ada", bad)
	if got := docerrors.Code(err); got != docerrors.InvalidArgument {
		t.Errorf("UpdateDocument invalid: got %v (code %v), want InvalidArgument", err, got)
	}

	srv.Token = "secret"
	_, err = c.GetDocument(ctx, "ada")
	if got := docerrors.Code(err); got != docerrors.Unauthenticated {
		t.Errorf("GetDocument without token: got %v (code %v), want Unauthenticated", err, got)
	}
}

func TestHTTPTransportEmptyDocument(t *testing.T) {
	c, srv := newFakeClient(t, Options{})
	srv.Put(docName, nil)
	// A document with no fields has no fields member.
	_, err := c.GetDocument(context.Background(), "ada")
	if got := docerrors.Code(err); got != docerrors.Internal {
		t.Errorf("got %v (code %v), want Internal", err, got)
	}
}

func TestHTTPTransportUserAgent(t *testing.T) {
	var got string
	srv := fakefs.NewServer()
	defer srv.Close()
	base := srv.Client().Transport
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		got = req.UserAgent()
		return base.RoundTrip(req)
	})}
	tr := NewHTTPTransport(client)
	if _, err := tr.Get(context.Background(), srv.URL+"/v1/"+docName, nil); err != nil {
		t.Fatal(err)
	}
	if want := "firedoc/0.1.0 firestore"; got != want {
		t.Errorf("got User-Agent %q, want %q", got, want)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestHTTPTransportRequestLog(t *testing.T) {
	c0, srv := newFakeClient(t, Options{})
	srv.Put(docName, map[string]interface{}{"n": map[string]interface{}{"integerValue": "1"}})

	var buf bytes.Buffer
	logged := &http.Client{Transport: requestlog.NewTransport(requestlog.NewNCSALogger(&buf, nil), nil)}
	c := New(NewHTTPTransport(logged), "my-project-id", "users", &Options{Host: srv.Host(), Insecure: true})
	if _, err := c.GetDocument(context.Background(), "ada"); err != nil {
		t.Fatal(err)
	}
	line := buf.String()
	if !strings.Contains(line, `"GET `+c0.URL("ada")+` HTTP/1.1" 200 `) {
		t.Errorf("log line %q does not record the request", line)
	}
	if !strings.Contains(line, `"firedoc/0.1.0 firestore"`) {
		t.Errorf("log line %q does not record the User-Agent", line)
	}
}

func TestReplayGetDocument(t *testing.T) {
	r, done, err := replay.NewRecorder(t, recorder.ModeReplaying, "get_document")
	if err != nil {
		t.Fatal(err)
	}
	defer done()

	c := New(NewHTTPTransport(&http.Client{Transport: r}), "my-project-id", "users", nil)
	got, err := c.GetDocument(context.Background(), "ada")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]interface{}{
		"name":     "Ada Lovelace",
		"born":     int64(1815),
		"notes":    []interface{}{"analytical engine", int64(1843)},
		"address":  map[string]interface{}{"city": "London"},
		"verified": true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
}

func TestHTTPTransportResponseTooLarge(t *testing.T) {
	defer func(n int64) { maxResponseSize = n }(maxResponseSize)
	maxResponseSize = 512

	c, srv := newFakeClient(t, Options{})
	srv.Put(docName, map[string]interface{}{"big": map[string]interface{}{"stringValue": strings.Repeat("x", 1024)}})
	_, err := c.GetDocument(context.Background(), "ada")
	if got := docerrors.Code(err); got != docerrors.ResourceExhausted {
		t.Errorf("oversized document: got %v (code %v), want ResourceExhausted", err, got)
	}

	srv.Put(docName, map[string]interface{}{"small": map[string]interface{}{"stringValue": "x"}})
	got, err := c.GetDocument(context.Background(), "ada")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]interface{}{"small": "x"}, got); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
}
