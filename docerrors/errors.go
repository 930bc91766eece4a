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

// Package docerrors provides support for getting error codes from
// errors returned by firedoc APIs.
package docerrors // import "firedoc.dev/docerrors"

import (
	"context"

	"firedoc.dev/internal/docerr"
	"golang.org/x/xerrors"
)

// An ErrorCode describes the error's category. Programs should act upon an error's
// code, not its message.
type ErrorCode = docerr.ErrorCode

const (
	// Returned by the Code function on a nil error. It is not a valid
	// code for an error.
	OK ErrorCode = docerr.OK

	// The error could not be categorized.
	Unknown ErrorCode = docerr.Unknown

	// The document was not found.
	NotFound ErrorCode = docerr.NotFound

	// The document exists, but it should not.
	AlreadyExists ErrorCode = docerr.AlreadyExists

	// A value given to a firedoc API is incorrect.
	InvalidArgument ErrorCode = docerr.InvalidArgument

	// Something unexpected happened.
	Internal ErrorCode = docerr.Internal

	// The feature is not implemented.
	Unimplemented ErrorCode = docerr.Unimplemented

	// The system was in the wrong state.
	FailedPrecondition ErrorCode = docerr.FailedPrecondition

	// The caller does not have permission to execute the specified operation.
	PermissionDenied ErrorCode = docerr.PermissionDenied

	// Some resource has been exhausted.
	ResourceExhausted ErrorCode = docerr.ResourceExhausted

	// The operation was canceled.
	Canceled ErrorCode = docerr.Canceled

	// The operation timed out.
	DeadlineExceeded ErrorCode = docerr.DeadlineExceeded

	// The request did not carry valid credentials.
	Unauthenticated ErrorCode = docerr.Unauthenticated
)

// Code returns the ErrorCode of err if it, or some error it wraps, is a
// firedoc error. Context cancellation and deadline errors map to Canceled and
// DeadlineExceeded. It returns Unknown for any other non-nil error.
// If err is nil, it returns the special code OK.
func Code(err error) ErrorCode {
	if err == nil {
		return OK
	}
	var e *docerr.Error
	if xerrors.As(err, &e) {
		return e.Code
	}
	switch {
	case xerrors.Is(err, context.Canceled):
		return Canceled
	case xerrors.Is(err, context.DeadlineExceeded):
		return DeadlineExceeded
	}
	return Unknown
}
