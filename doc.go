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

/*
Package firedoc is the root of a small toolkit for reading and writing
Firestore documents over the Firestore REST API.

The client lives in package firestore. It builds document URLs, sends GET
and PATCH requests through a pluggable Transport, and decodes Firestore's
typed wire values into plain Go values. Errors carry a code that package
docerrors extracts, and package requestlog logs outgoing requests.

The firedoc command in cmd/firedoc exposes the client on the command line.
*/
package firedoc // import "firedoc.dev"
