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

// Package gcp provides fundamental wiring for authenticating firedoc clients
// with Google Cloud Application Default Credentials.
package gcp // import "firedoc.dev/gcp"

import (
	"context"
	"errors"

	"cloud.google.com/go/compute/metadata"
	"github.com/google/wire"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scope is the OAuth2 scope that grants access to Cloud Firestore.
const Scope = "https://www.googleapis.com/auth/datastore"

// DefaultIdentity is a Wire provider set that provides the project ID
// and token source from Application Default Credentials (ADC).
var DefaultIdentity = wire.NewSet(
	DefaultCredentials,
	CredentialsTokenSource,
	DefaultProjectID,
)

// A ProjectID is a GCP project ID.
type ProjectID string

// TokenSource wraps a GCP token source that provides Cloud-scoped tokens.
type TokenSource oauth2.TokenSource

// DefaultCredentials obtains the default GCP credentials with Scope.
func DefaultCredentials(ctx context.Context) (*google.Credentials, error) {
	return google.FindDefaultCredentials(ctx, Scope)
}

// CredentialsTokenSource extracts the token source from GCP credentials.
func CredentialsTokenSource(creds *google.Credentials) TokenSource {
	if creds == nil {
		return nil
	}
	return TokenSource(creds.TokenSource)
}

// DefaultProjectID obtains the project ID from the credentials. If the
// credentials carry none and the process runs on Google Compute Engine, the
// project ID comes from the metadata server.
func DefaultProjectID(creds *google.Credentials) (ProjectID, error) {
	if creds == nil {
		return "", errors.New("gcp: no credentials")
	}
	if creds.ProjectID != "" {
		return ProjectID(creds.ProjectID), nil
	}
	if metadata.OnGCE() {
		id, err := metadata.ProjectID()
		if err != nil {
			return "", err
		}
		return ProjectID(id), nil
	}
	return "", errors.New("gcp: unable to detect default GCP project")
}

// AccessToken fetches a token from ts and returns its access token.
func AccessToken(ts TokenSource) (string, error) {
	if ts == nil {
		return "", errors.New("gcp: no token source")
	}
	tok, err := ts.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}
