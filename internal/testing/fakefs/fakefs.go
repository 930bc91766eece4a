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

// Package fakefs provides an in-memory fake of the Firestore REST document
// endpoints, for tests.
package fakefs // import "firedoc.dev/internal/testing/fakefs"

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// Request is a request the server received.
type Request struct {
	Method        string
	Path          string
	Authorization string
	Body          []byte
}

// Server serves GET and PATCH on
// /v1/projects/{project}/databases/{database}/documents/{document}.
// Documents are keyed by their full resource name.
type Server struct {
	*httptest.Server

	// Token, if set, is the bearer token every request must carry.
	Token string

	mu       sync.Mutex
	docs     map[string]document
	requests []Request
}

type document struct {
	fields     map[string]interface{}
	createTime time.Time
	updateTime time.Time
}

// NewServer starts and returns a new Server. The caller should call Close
// when finished, to shut it down.
func NewServer() *Server {
	s := &Server{docs: map[string]document{}}
	r := mux.NewRouter()
	const docPath = "/v1/projects/{project}/databases/{database}/documents/{document:.+}"
	r.HandleFunc(docPath, s.get).Methods(http.MethodGet)
	r.HandleFunc(docPath, s.patch).Methods(http.MethodPatch)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("The requested URL %s was not found on this server.", r.URL.Path))
	})
	r.Use(s.record, s.authorize)
	s.Server = httptest.NewServer(r)
	return s
}

// Host returns the host:port the server listens on.
func (s *Server) Host() string {
	return strings.TrimPrefix(s.URL, "http://")
}

// Put stores a document with the given wire-form fields under name, a path
// like "projects/p/databases/(default)/documents/users/1".
func (s *Server) Put(name string, fields map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	s.docs[name] = document{fields: fields, createTime: now, updateTime: now}
}

// Fields returns the wire-form fields stored under name.
func (s *Server) Fields(name string) (map[string]interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[name]
	return d.fields, ok
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := ioutil.ReadAll(r.Body)
		r.Body = ioutil.NopCloser(strings.NewReader(string(body)))
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.Token {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED",
				"Request had invalid authentication credentials. Expected OAuth 2 access token, login cookie or other valid authentication credential.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func resourceName(r *http.Request) string {
	return strings.TrimPrefix(r.URL.Path, "/v1/")
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	name := resourceName(r)
	s.mu.Lock()
	d, ok := s.docs[name]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Document \""+name+"\" not found.")
		return
	}
	writeDocument(w, name, d)
}

func (s *Server) patch(w http.ResponseWriter, r *http.Request) {
	name := resourceName(r)
	var body struct {
		Fields map[string]interface{} `json:"fields"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "Invalid JSON payload received. "+err.Error())
		return
	}
	for field, v := range body.Fields {
		if err := validateValue(v); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT",
				fmt.Sprintf("Invalid JSON payload received. Invalid value at 'document.fields[%s].value': %v", field, err))
			return
		}
	}
	now := time.Now().UTC()
	s.mu.Lock()
	d, ok := s.docs[name]
	if !ok {
		d.createTime = now
	}
	d.fields = body.Fields
	d.updateTime = now
	s.docs[name] = d
	s.mu.Unlock()
	writeDocument(w, name, d)
}

var wireTags = map[string]bool{
	"nullValue":      true,
	"booleanValue":   true,
	"integerValue":   true,
	"doubleValue":    true,
	"timestampValue": true,
	"stringValue":    true,
	"bytesValue":     true,
	"referenceValue": true,
	"geoPointValue":  true,
	"arrayValue":     true,
	"mapValue":       true,
}

// validateValue reports whether v is a well-formed wire value.
func validateValue(v interface{}) error {
	m, ok := v.(map[string]interface{})
	if !ok || len(m) != 1 {
		return fmt.Errorf("value must be an object with exactly one member")
	}
	for tag, payload := range m {
		if !wireTags[tag] {
			return fmt.Errorf("Unknown name %q", tag)
		}
		switch tag {
		case "mapValue":
			pm, _ := payload.(map[string]interface{})
			fields, _ := pm["fields"].(map[string]interface{})
			for _, fv := range fields {
				if err := validateValue(fv); err != nil {
					return err
				}
			}
		case "arrayValue":
			pm, _ := payload.(map[string]interface{})
			values, _ := pm["values"].([]interface{})
			for _, ev := range values {
				if err := validateValue(ev); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func writeDocument(w http.ResponseWriter, name string, d document) {
	out := map[string]interface{}{
		"name":       name,
		"createTime": d.createTime.Format(time.RFC3339Nano),
		"updateTime": d.updateTime.Format(time.RFC3339Nano),
	}
	// Firestore omits "fields" for a document without fields.
	if len(d.fields) > 0 {
		out["fields"] = d.fields
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	json.NewEncoder(w).Encode(out)
}

func writeError(w http.ResponseWriter, code int, status, message string) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
			"status":  status,
		},
	})
}
