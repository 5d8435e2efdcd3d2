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


// Package impl is the implementation of a tool to build bootable images.
package impl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/imgtrailer/api"
	"github.com/google/imgtrailer/config"
	"github.com/google/imgtrailer/internal/builddb"
	"github.com/google/imgtrailer/internal/crypto"
	"github.com/google/imgtrailer/internal/image"
	"github.com/google/imgtrailer/internal/manifest"
	"github.com/google/imgtrailer/internal/tlv"
	"golang.org/x/mod/sumdb/note"

	_ "github.com/go-sql-driver/mysql" // Load drivers for mysql
	_ "github.com/mattn/go-sqlite3"    // Load drivers for sqlite3
)

// ImgtoolOpts encapsulates parameters for the imgtool Main below.
type ImgtoolOpts struct {
	ConfigPath string
	BinaryPath string
	OutputPath string
	// Version, if set, overrides the version in the config.
	Version string

	// ManifestKeyPath is a file holding a note signer key. If set, a signed
	// manifest is written to ManifestOutput.
	ManifestKeyPath string
	ManifestOutput  string

	// DBDriver and DBConn, if DBConn is set, name the build database to record the image in.
	DBDriver string
	DBConn   string
}

// Main is the entrypoint for the implementation of imgtool.
func Main(ctx context.Context, opts ImgtoolOpts) error {
	if opts.BinaryPath == "" {
		return errors.New("binary path is required")
	}
	if opts.OutputPath == "" {
		return errors.New("output path is required")
	}
	cfg := config.Signing{Scheme: config.SchemeNone}
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return err
		}
	}
	if opts.Version != "" {
		cfg.Version = opts.Version
	}

	iOpts, err := imageOptions(cfg)
	if err != nil {
		return err
	}
	res, err := image.CreateFile(opts.BinaryPath, opts.OutputPath, iOpts)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	glog.Infof("Image hash: %x", res.Hash)
	glog.Infof("Header: %s, trailer %d bytes", res.Header, len(res.Trailer))

	var signedManifest []byte
	if opts.ManifestKeyPath != "" {
		if signedManifest, err = writeManifest(res, opts); err != nil {
			return err
		}
	}

	if opts.DBConn != "" {
		db, err := builddb.NewDatabase(opts.DBDriver, opts.DBConn)
		if err != nil {
			return fmt.Errorf("failed to open build database: %w", err)
		}
		defer db.Close()
		rec := api.ImageRecord{
			Hash:         res.Hash,
			Header:       res.Header,
			Manifest:     signedManifest,
			CreatedNanos: time.Now().UnixNano(),
		}
		if err := db.WriteImage(ctx, rec); err != nil {
			return fmt.Errorf("failed to record build: %w", err)
		}
		glog.Infof("Recorded build %s", rec)
	}
	return nil
}

// imageOptions turns the config into image options, loading the signing key if needed.
func imageOptions(cfg config.Signing) (image.Options, error) {
	v, err := cfg.ImageVersion()
	if err != nil {
		return image.Options{}, err
	}
	o := image.Options{
		Version:     v,
		HeaderSize:  cfg.HeaderSize,
		KeyID:       cfg.KeyID,
		PIC:         cfg.PIC,
		NonBootable: cfg.NonBootable,
	}
	if cfg.Scheme == config.SchemeNone {
		return o, nil
	}
	key, err := crypto.ReadPrivateKey(cfg.KeyFile)
	if err != nil {
		return image.Options{}, err
	}
	s, err := crypto.NewSigner(key, cfg.Scheme == config.SchemeRSAPSS)
	if err != nil {
		return image.Options{}, err
	}
	if err := checkScheme(cfg.Scheme, s); err != nil {
		return image.Options{}, fmt.Errorf("key %q: %w", cfg.KeyFile, err)
	}
	o.Signer = s
	return o, nil
}

var schemeKinds = map[string]api.TLVKind{
	config.SchemeRSA2048:  api.TLVRSA2048,
	config.SchemeRSAPSS:   api.TLVRSA2048,
	config.SchemeECDSA224: api.TLVECDSA224,
	config.SchemeECDSA256: api.TLVECDSA256,
}

func checkScheme(scheme string, s tlv.Signer) error {
	if want := schemeKinds[scheme]; s.Kind() != want {
		return fmt.Errorf("scheme %q needs a %s key, got one producing %s", scheme, want, s.Kind())
	}
	return nil
}

func writeManifest(res image.Result, opts ImgtoolOpts) ([]byte, error) {
	k, err := os.ReadFile(opts.ManifestKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest key: %w", err)
	}
	signer, err := note.NewSigner(strings.TrimSpace(string(k)))
	if err != nil {
		return nil, fmt.Errorf("invalid manifest key: %w", err)
	}
	m := manifest.New(res, opts.OutputPath, time.Now())
	signed, err := manifest.Sign(m, signer)
	if err != nil {
		return nil, err
	}
	out := opts.ManifestOutput
	if out == "" {
		out = opts.OutputPath + ".manifest"
	}
	if err := os.WriteFile(out, signed, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	glog.Infof("Wrote manifest for %s to %q", m, out)
	return signed, nil
}
