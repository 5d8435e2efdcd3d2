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


// Package config describes how imgtool should build and sign an image.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/imgtrailer/api"
	"gopkg.in/yaml.v3"
)

// Signature schemes understood by imgtool.
const (
	SchemeNone     = "none"
	SchemeRSA2048  = "rsa2048"
	SchemeRSAPSS   = "rsa2048-pss"
	SchemeECDSA224 = "ecdsa224"
	SchemeECDSA256 = "ecdsa256"
)

// Signing is the build configuration for one image.
type Signing struct {
	// Scheme selects the signature record added to the trailer.
	// The SHA256 record is always added.
	Scheme string `yaml:"Scheme"`
	// KeyFile is the PEM private key used for signing.
	// Required unless Scheme is "none".
	KeyFile string `yaml:"KeyFile"`
	// KeyID is copied into the image header.
	KeyID uint8 `yaml:"KeyID"`
	// HeaderSize is the space reserved for the header, including padding.
	// Zero means the bare header.
	HeaderSize uint16 `yaml:"HeaderSize"`
	// Version is the image version as major.minor.revision.build.
	Version string `yaml:"Version"`
	// PIC marks the image as position independent.
	PIC bool `yaml:"PIC"`
	// NonBootable marks the image as not to be booted.
	NonBootable bool `yaml:"NonBootable"`
}

// Validate checks that the configuration describes a buildable image.
func (s Signing) Validate() error {
	switch s.Scheme {
	case SchemeNone:
		if s.KeyFile != "" {
			return fmt.Errorf("KeyFile %q given but scheme is %q", s.KeyFile, s.Scheme)
		}
	case SchemeRSA2048, SchemeRSAPSS, SchemeECDSA224, SchemeECDSA256:
		if s.KeyFile == "" {
			return fmt.Errorf("missing field: KeyFile (required for scheme %q)", s.Scheme)
		}
	case "":
		return errors.New("missing field: Scheme")
	default:
		return fmt.Errorf("unknown scheme %q", s.Scheme)
	}
	if s.HeaderSize != 0 && s.HeaderSize < api.ImageHeaderSize {
		return fmt.Errorf("HeaderSize %d is smaller than the %d byte header", s.HeaderSize, api.ImageHeaderSize)
	}
	if s.Version != "" {
		if _, err := api.ParseImageVersion(s.Version); err != nil {
			return fmt.Errorf("invalid Version: %v", err)
		}
	}
	return nil
}

// ImageVersion returns the parsed Version, or zero if none is set.
func (s Signing) ImageVersion() (api.ImageVersion, error) {
	if s.Version == "" {
		return api.ImageVersion{}, nil
	}
	return api.ParseImageVersion(s.Version)
}

// Load reads and validates the configuration at path.
// Unknown fields are rejected and Scheme defaults to "none".
func Load(path string) (Signing, error) {
	f, err := os.Open(path)
	if err != nil {
		return Signing{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()
	s := Signing{Scheme: SchemeNone}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Signing{}, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Signing{}, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return s, nil
}
