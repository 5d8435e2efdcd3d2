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


package impl

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/imgtrailer/api"
	"github.com/google/imgtrailer/internal/builddb"
	"github.com/google/imgtrailer/internal/manifest"
	"github.com/google/imgtrailer/internal/verify"
	"golang.org/x/mod/sumdb/note"
)

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatalf("WriteFile(%q): %v", path, err)
	}
}

func writeECKey(t *testing.T, path string, c elliptic.Curve) *ecdsa.PrivateKey {
	t.Helper()
	k, err := ecdsa.GenerateKey(c, rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	der, err := x509.MarshalECPrivateKey(k)
	if err != nil {
		t.Fatalf("MarshalECPrivateKey: %v", err)
	}
	writeFile(t, path, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))
	return k
}

func TestMainSignedWithManifestAndDB(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	bin := filepath.Join(dir, "app.bin")
	writeFile(t, bin, []byte("application code"))
	key := writeECKey(t, filepath.Join(dir, "key.pem"), elliptic.P256())
	cfg := filepath.Join(dir, "signing.yaml")
	writeFile(t, cfg, []byte(fmt.Sprintf("Scheme: ecdsa256\nKeyFile: %s\nHeaderSize: 128\nVersion: \"1.0\"\n", filepath.Join(dir, "key.pem"))))

	skey, vkey, err := note.GenerateKey(rand.Reader, "builder")
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	writeFile(t, filepath.Join(dir, "note.key"), []byte(skey+"\n"))
	dbPath := filepath.Join(dir, "builds.db")

	out := filepath.Join(dir, "app.img")
	if err := Main(ctx, ImgtoolOpts{
		ConfigPath:      cfg,
		BinaryPath:      bin,
		OutputPath:      out,
		Version:         "1.2.3.4",
		ManifestKeyPath: filepath.Join(dir, "note.key"),
		DBDriver:        "sqlite3",
		DBConn:          dbPath,
	}); err != nil {
		t.Fatalf("Main: %v", err)
	}

	img, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	p, err := verify.Image(img, &key.PublicKey)
	if err != nil {
		t.Fatalf("verify.Image: %v", err)
	}
	if got, want := p.Header.Vers, (api.ImageVersion{Major: 1, Minor: 2, Revision: 3, BuildNum: 4}); got != want {
		t.Errorf("version = %v, want %v", got, want)
	}
	if got, want := p.Header.HdrSz, uint16(128); got != want {
		t.Errorf("HdrSz = %d, want %d", got, want)
	}

	signed, err := os.ReadFile(out + ".manifest")
	if err != nil {
		t.Fatalf("ReadFile(manifest): %v", err)
	}
	v, err := note.NewVerifier(vkey)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	m, err := manifest.Open(signed, v)
	if err != nil {
		t.Fatalf("manifest.Open: %v", err)
	}
	if m.Image != "app.img" || m.Flags != p.Header.Flags {
		t.Errorf("unexpected manifest %s", m)
	}

	db, err := builddb.NewDatabase("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	defer db.Close()
	hr, _ := p.Record(api.TLVSHA256)
	rec, err := db.GetImage(ctx, hr.Value)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if string(rec.Manifest) != string(signed) {
		t.Error("recorded manifest differs from the one written")
	}
}

func TestMainErrors(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "app.bin")
	writeFile(t, bin, []byte("application code"))
	writeECKey(t, filepath.Join(dir, "p224.pem"), elliptic.P224())
	mismatched := filepath.Join(dir, "mismatch.yaml")
	writeFile(t, mismatched, []byte(fmt.Sprintf("Scheme: ecdsa256\nKeyFile: %s\n", filepath.Join(dir, "p224.pem"))))
	missingKey := filepath.Join(dir, "missing.yaml")
	writeFile(t, missingKey, []byte(fmt.Sprintf("Scheme: ecdsa224\nKeyFile: %s\n", filepath.Join(dir, "nope.pem"))))

	for _, test := range []struct {
		desc string
		opts ImgtoolOpts
	}{
		{desc: "no binary", opts: ImgtoolOpts{OutputPath: filepath.Join(dir, "o.img")}},
		{desc: "no output", opts: ImgtoolOpts{BinaryPath: bin}},
		{desc: "bad version", opts: ImgtoolOpts{BinaryPath: bin, OutputPath: filepath.Join(dir, "o.img"), Version: "1.2.3.4.5"}},
		{desc: "key does not match scheme", opts: ImgtoolOpts{ConfigPath: mismatched, BinaryPath: bin, OutputPath: filepath.Join(dir, "o.img")}},
		{desc: "missing key file", opts: ImgtoolOpts{ConfigPath: missingKey, BinaryPath: bin, OutputPath: filepath.Join(dir, "o.img")}},
		{desc: "bad manifest key", opts: ImgtoolOpts{BinaryPath: bin, OutputPath: filepath.Join(dir, "o.img"), ManifestKeyPath: bin}},
	} {
		t.Run(test.desc, func(t *testing.T) {
			if err := Main(context.Background(), test.opts); err == nil {
				t.Error("Main() succeeded, want error")
			}
		})
	}
}
