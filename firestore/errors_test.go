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
	"net/http"
	"strings"
	"testing"

	"firedoc.dev/docerrors"
	"golang.org/x/xerrors"
)

func TestDetailedError(t *testing.T) {
	for _, test := range []struct {
		desc     string
		resp     *Response
		wantCode docerrors.ErrorCode
		wantMsg  string
	}{
		{
			desc: "envelope",
			resp: &Response{StatusCode: http.StatusNotFound, Body: []byte(
				`{"error": {"code": 404, "message": "Document not found.", "status": "NOT_FOUND"}}`)},
			wantCode: docerrors.NotFound,
			wantMsg:  "HTTP 404 NOT_FOUND: Document not found.",
		},
		{
			desc: "status overrides HTTP code",
			resp: &Response{StatusCode: http.StatusBadRequest, Body: []byte(
				`{"error": {"code": 400, "message": "Precondition failed.", "status": "FAILED_PRECONDITION"}}`)},
			wantCode: docerrors.FailedPrecondition,
			wantMsg:  "HTTP 400 FAILED_PRECONDITION: Precondition failed.",
		},
		{
			desc:     "plain body",
			resp:     &Response{StatusCode: http.StatusBadGateway, Body: []byte("upstream down\n")},
			wantCode: docerrors.Internal,
			wantMsg:  "HTTP 502: upstream down",
		},
		{
			desc:     "empty body",
			resp:     &Response{StatusCode: http.StatusForbidden},
			wantCode: docerrors.PermissionDenied,
			wantMsg:  "HTTP 403",
		},
		{
			desc:     "unexpected success code",
			resp:     &Response{StatusCode: http.StatusNoContent},
			wantCode: docerrors.Unknown,
			wantMsg:  "HTTP 204",
		},
	} {
		err := DetailedError(test.resp)
		if got := docerrors.Code(err); got != test.wantCode {
			t.Errorf("%s: got code %v, want %v", test.desc, got, test.wantCode)
		}
		var re *RequestError
		if !xerrors.As(err, &re) {
			t.Errorf("%s: %v does not wrap a *RequestError", test.desc, err)
			continue
		}
		if got := re.Error(); got != test.wantMsg {
			t.Errorf("%s: got %q, want %q", test.desc, got, test.wantMsg)
		}
	}
}

func TestRequestErrorTruncatesBody(t *testing.T) {
	re := &RequestError{StatusCode: 500, Body: []byte(strings.Repeat("x", 1000))}
	got := re.Error()
	if want := "HTTP 500: " + strings.Repeat("x", 256) + "..."; got != want {
		t.Errorf("got %d bytes, want %d", len(got), len(want))
	}
}
