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

// Package requestlog provides an http.RoundTripper that logs information
// about outgoing requests.
package requestlog // import "firedoc.dev/requestlog"

import (
	"io"
	"net/http"
	"sync"
	"time"

	"go.opencensus.io/trace"
)

// Logger wraps the Log method.  Log must be safe to call from multiple
// goroutines.  Log must not hold onto an Entry after it returns.
type Logger interface {
	Log(*Entry)
}

// Entry records information about a completed outgoing HTTP request.
// Host is the host the request was sent to. Status is zero if the round
// trip failed, in which case Err is set.
type Entry struct {
	SentTime        time.Time
	RequestMethod   string
	RequestURL      string
	RequestBodySize int64
	Proto           string
	UserAgent       string
	Host            string

	Status           int
	ResponseBodySize int64
	Latency          time.Duration
	Err              error
	TraceID          trace.TraceID
	SpanID           trace.SpanID
}

// A Transport emits information about each round trip to a Logger.
type Transport struct {
	log  Logger
	base http.RoundTripper
}

// NewTransport returns a transport that sends requests through base and
// emits an Entry to log once the response body is closed or the round trip
// fails. A nil base means http.DefaultTransport.
func NewTransport(log Logger, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{log: log, base: base}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	sc := trace.FromContext(req.Context()).SpanContext()
	ent := &Entry{
		SentTime:        start,
		RequestMethod:   req.Method,
		RequestURL:      req.URL.String(),
		RequestBodySize: req.ContentLength,
		Proto:           req.Proto,
		UserAgent:       req.UserAgent(),
		Host:            req.URL.Host,
		TraceID:         sc.TraceID,
		SpanID:          sc.SpanID,
	}
	if ent.Proto == "" {
		ent.Proto = "HTTP/1.1"
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		ent.Latency = time.Since(start)
		ent.Err = err
		t.log.Log(ent)
		return nil, err
	}
	ent.Status = resp.StatusCode
	resp.Body = &bodyCounter{r: resp.Body, done: func(n int64) {
		ent.Latency = time.Since(start)
		ent.ResponseBodySize = n
		t.log.Log(ent)
	}}
	return resp, nil
}

// bodyCounter counts the bytes read from a response body and reports the
// count once, on Close.
type bodyCounter struct {
	r    io.ReadCloser
	n    int64
	once sync.Once
	done func(int64)
}

func (b *bodyCounter) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.n += int64(n)
	return n, err
}

func (b *bodyCounter) Close() error {
	err := b.r.Close()
	b.once.Do(func() { b.done(b.n) })
	return err
}
