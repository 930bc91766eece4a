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
	"encoding/json"
	"fmt"

	"firedoc.dev/internal/docerr"
)

// An ErrorDetailFunc converts a failed response into an error. It must
// return a non-nil error.
type ErrorDetailFunc func(*Response) error

// RequestError describes a request the service answered with an error status.
type RequestError struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Status is the Google RPC status name from the error body, such as
	// "NOT_FOUND". It is empty if the body was not a Google API error.
	Status string
	// Message is the service's error message, if any.
	Message string
	// Body is the raw response body.
	Body []byte
}

func (e *RequestError) Error() string {
	status := fmt.Sprintf("HTTP %d", e.StatusCode)
	if e.Status != "" {
		status += " " + e.Status
	}
	if e.Message != "" {
		return status + ": " + e.Message
	}
	if body := bytes.TrimSpace(e.Body); len(body) > 0 {
		const limit = 256
		if len(body) > limit {
			return fmt.Sprintf("%s: %s...", status, body[:limit])
		}
		return fmt.Sprintf("%s: %s", status, body)
	}
	return status
}

// DetailedError is the default ErrorDetailFunc. It reads the Google API
// error envelope, {"error": {"code": ..., "message": ..., "status": ...}},
// when the body has one, and returns an error wrapping a *RequestError.
// Its docerrors code comes from the RPC status if present, else from the
// HTTP status code.
func DetailedError(resp *Response) error {
	re := &RequestError{StatusCode: resp.StatusCode, Body: resp.Body}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err == nil {
		re.Message = envelope.Error.Message
		re.Status = envelope.Error.Status
	}
	code := docerr.HTTPCode(resp.StatusCode)
	if c, ok := docerr.StatusCode(re.Status); ok {
		code = c
	}
	if code == docerr.OK {
		code = docerr.Unknown
	}
	return docerr.New(code, re, 2, "firestore: request failed")
}
