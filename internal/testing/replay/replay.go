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

// Package replay provides the ability to record and replay HTTP requests.
package replay // import "firedoc.dev/internal/testing/replay"

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnaeon/go-vcr/cassette"
	"github.com/dnaeon/go-vcr/recorder"
)

// NewRecorder returns a go-vcr.Recorder which reads or writes golden files
// named filename (without the .yaml suffix) in testdata.
// When recording, done() saves the recording with the Authorization request
// header dropped.
// When replaying, HTTP requests are expected to arrive in the same order as
// in the recording, with the same method and URL.
func NewRecorder(t *testing.T, mode recorder.Mode, filename string) (r *recorder.Recorder, done func(), err error) {
	path := filepath.Join("testdata", filename)
	if mode == recorder.ModeRecording {
		t.Logf("Recording into golden file %s", path)
	} else {
		t.Logf("Replaying from golden file %s", path)
	}
	r, err = recorder.NewAsMode(path, mode, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to record: %v", err)
	}

	cur := 0
	lastMatch := -1
	r.SetMatcher(func(r *http.Request, i cassette.Request) bool {
		// If we've already used the request at this index, skip it.
		if cur <= lastMatch {
			cur++
			return false
		}
		if r.Method != i.Method {
			t.Fatalf("mismatched Method at request #%d; got %q want %q", cur, r.Method, i.Method)
		}
		if got := r.URL.String(); got != i.URL {
			t.Fatalf("mismatched URL at request #%d; got\n%q\nwant\n%q", cur, got, i.URL)
		}
		t.Logf("matched request #%d (%s %s)", cur, i.Method, i.URL)
		lastMatch = cur
		cur = 0
		return true
	})
	return r, func() {
		if err := r.Stop(); err != nil {
			t.Error(err)
		}
		if mode == recorder.ModeRecording {
			if err := scrubRecording(path); err != nil {
				t.Errorf("failed to scrub recording: %v", err)
			}
		}
	}, nil
}

// scrubRecording drops the Authorization header from a saved recording.
func scrubRecording(path string) error {
	c, err := cassette.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing to scrub!
			return nil
		}
		return err
	}
	for _, action := range c.Interactions {
		action.Request.Headers.Del("Authorization")
	}
	return c.Save()
}
