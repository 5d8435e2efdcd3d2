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


// Package impl is the implementation of a tool which checks images the way
// the bootloader does.
package impl

import (
	gocrypto "crypto"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/google/imgtrailer/api"
	"github.com/google/imgtrailer/internal/crypto"
	"github.com/google/imgtrailer/internal/image"
	"github.com/google/imgtrailer/internal/manifest"
	"github.com/google/imgtrailer/internal/verify"
	"golang.org/x/mod/sumdb/note"
)

// VerifyOpts encapsulates parameters for the imgverify Main below.
type VerifyOpts struct {
	ImagePath string
	// PubKeyPaths are PEM public keys any of which may have signed the image.
	PubKeyPaths []string
	// ManifestPath and ManifestVerifierPath, if both set, name a signed manifest
	// and the note verifier key it must be signed by.
	ManifestPath         string
	ManifestVerifierPath string
}

// Main is the entrypoint for the implementation of imgverify.
func Main(opts VerifyOpts) error {
	if opts.ImagePath == "" {
		return errors.New("image path is required")
	}
	img, err := os.ReadFile(opts.ImagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	var keys []gocrypto.PublicKey
	for _, p := range opts.PubKeyPaths {
		k, err := crypto.ReadPublicKey(p)
		if err != nil {
			return err
		}
		keys = append(keys, k)
	}

	p, err := verify.Image(img, keys...)
	if err != nil {
		return fmt.Errorf("image %q failed verification: %w", opts.ImagePath, err)
	}
	glog.Infof("Image %q OK: %s", opts.ImagePath, p.Header)
	for _, r := range p.Records {
		glog.Infof("  %s (%d bytes)", r.Kind, len(r.Value))
	}

	if opts.ManifestPath == "" {
		return nil
	}
	if opts.ManifestVerifierPath == "" {
		return errors.New("a manifest verifier key is required to check a manifest")
	}
	vk, err := os.ReadFile(opts.ManifestVerifierPath)
	if err != nil {
		return fmt.Errorf("failed to read manifest verifier key: %w", err)
	}
	v, err := note.NewVerifier(strings.TrimSpace(string(vk)))
	if err != nil {
		return fmt.Errorf("invalid manifest verifier key: %w", err)
	}
	signed, err := os.ReadFile(opts.ManifestPath)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := manifest.Open(signed, v)
	if err != nil {
		return err
	}
	hr, _ := p.Record(api.TLVSHA256)
	if err := manifest.CheckImage(m, image.Result{Header: p.Header, Hash: hr.Value}); err != nil {
		return err
	}
	glog.Infof("Manifest %q matches image: %s", opts.ManifestPath, m)
	return nil
}
