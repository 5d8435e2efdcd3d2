// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package manifest creates and checks signed build manifests for images.
package manifest

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/imgtrailer/api"
	"github.com/google/imgtrailer/internal/image"
	"golang.org/x/mod/sumdb/note"
)

// New returns the manifest describing a created image.
func New(res image.Result, imagePath string, buildTime time.Time) api.ImageManifest {
	return api.ImageManifest{
		Image:       filepath.Base(imagePath),
		Version:     res.Header.Vers.String(),
		BuildTime:   buildTime.UTC().Format(time.RFC3339),
		ImageHash:   hex.EncodeToString(res.Hash),
		Flags:       res.Header.Flags,
		TrailerSize: res.Header.TlvSz,
		KeyID:       res.Header.KeyID,
	}
}

// Sign serialises the manifest and wraps it in a note signed by s.
func Sign(m api.ImageManifest, s note.Signer) ([]byte, error) {
	js, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	// Note text must end with a newline.
	n, err := note.Sign(&note.Note{Text: string(js) + "\n"}, s)
	if err != nil {
		return nil, fmt.Errorf("failed to sign manifest: %w", err)
	}
	return n, nil
}

// Open checks the signature on a signed manifest and returns its contents.
func Open(b []byte, verifiers ...note.Verifier) (api.ImageManifest, error) {
	n, err := note.Open(b, note.VerifierList(verifiers...))
	if err != nil {
		return api.ImageManifest{}, fmt.Errorf("failed to verify manifest: %w", err)
	}
	var m api.ImageManifest
	if err := json.Unmarshal([]byte(n.Text), &m); err != nil {
		return api.ImageManifest{}, fmt.Errorf("invalid manifest contents %q: %w", n.Text, err)
	}
	return m, nil
}

// CheckImage returns an error if the manifest does not describe res.
func CheckImage(m api.ImageManifest, res image.Result) error {
	if got, want := m.ImageHash, hex.EncodeToString(res.Hash); got != want {
		return fmt.Errorf("manifest image hash %s does not match image %s", got, want)
	}
	if got, want := m.Flags, res.Header.Flags; got != want {
		return fmt.Errorf("manifest flags %s do not match image %s", got, want)
	}
	if got, want := m.TrailerSize, res.Header.TlvSz; got != want {
		return fmt.Errorf("manifest trailer size %d does not match image %d", got, want)
	}
	return nil
}
