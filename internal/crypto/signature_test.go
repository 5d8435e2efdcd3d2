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

package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/google/imgtrailer/api"
)

func mustRSATestKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()
	priv, err := ParsePrivateKey([]byte(TestRSAPriv))
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	pub, err := ParsePublicKey([]byte(TestRSAPub))
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	return priv.(*rsa.PrivateKey), pub.(*rsa.PublicKey)
}

func TestRSASignatureRoundTrip(t *testing.T) {
	priv, pub := mustRSATestKeys(t)
	for _, test := range []struct {
		desc      string
		pss       bool
		signbody  string
		verifbody string
		wantFlag  api.ImageFlags
		wantErr   bool
	}{
		{
			desc:      "PKCS#1 v1.5 success",
			signbody:  "My Test Image",
			verifbody: "My Test Image",
			wantFlag:  api.FlagPKCS15RSA2048SHA256,
		}, {
			desc:      "PSS success",
			pss:       true,
			signbody:  "My Test Image",
			verifbody: "My Test Image",
			wantFlag:  api.FlagPKCS1PSSRSA2048SHA256,
		}, {
			desc:      "PKCS#1 v1.5 wrong image",
			signbody:  "My Test Image",
			verifbody: "My Test1 Image",
			wantFlag:  api.FlagPKCS15RSA2048SHA256,
			wantErr:   true,
		}, {
			desc:      "PSS wrong image",
			pss:       true,
			signbody:  "My Test Image",
			verifbody: "My Test1 Image",
			wantFlag:  api.FlagPKCS1PSSRSA2048SHA256,
			wantErr:   true,
		},
	} {
		t.Run(test.desc, func(t *testing.T) {
			s, err := NewRSASigner(priv, test.pss)
			if err != nil {
				t.Fatalf("NewRSASigner: %v", err)
			}
			if got, want := s.Kind(), api.TLVRSA2048; got != want {
				t.Errorf("Kind() = %s, want %s", got, want)
			}
			if got := s.Flag(); got != test.wantFlag {
				t.Errorf("Flag() = %s, want %s", got, test.wantFlag)
			}
			d := sha256.Sum256([]byte(test.signbody))
			sig, err := s.Sign(d[:])
			if err != nil {
				t.Fatalf("Sign: %v", err)
			}
			if got, want := len(sig), int(api.TLVRSA2048.ValueSize()); got != want {
				t.Errorf("signature is %d bytes, want %d", got, want)
			}

			v := sha256.Sum256([]byte(test.verifbody))
			err = VerifyRSA(pub, test.pss, v[:], sig)
			switch {
			case err != nil && !test.wantErr:
				t.Fatalf("Got unexpected error %q", err)
			case err == nil && test.wantErr:
				t.Fatal("Got no error, but wanted error")
			}
		})
	}
}

func TestRSAKeySize(t *testing.T) {
	k, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if _, err := NewRSASigner(k, false); err == nil {
		t.Error("NewRSASigner accepted a 1024 bit key")
	}
}

func TestECDSASignatureRoundTrip(t *testing.T) {
	for _, test := range []struct {
		desc     string
		curve    elliptic.Curve
		wantKind api.TLVKind
		wantFlag api.ImageFlags
	}{
		{desc: "P-224", curve: elliptic.P224(), wantKind: api.TLVECDSA224, wantFlag: api.FlagECDSA224SHA256},
		{desc: "P-256", curve: elliptic.P256(), wantKind: api.TLVECDSA256, wantFlag: api.FlagECDSA256SHA256},
	} {
		t.Run(test.desc, func(t *testing.T) {
			k, err := ecdsa.GenerateKey(test.curve, rand.Reader)
			if err != nil {
				t.Fatalf("GenerateKey: %v", err)
			}
			s, err := NewSigner(k, false)
			if err != nil {
				t.Fatalf("NewSigner: %v", err)
			}
			if got := s.Kind(); got != test.wantKind {
				t.Errorf("Kind() = %s, want %s", got, test.wantKind)
			}
			if got := s.Flag(); got != test.wantFlag {
				t.Errorf("Flag() = %s, want %s", got, test.wantFlag)
			}
			d := sha256.Sum256([]byte("image"))
			// Signatures vary in length, so sign a few times.
			for i := 0; i < 8; i++ {
				sig, err := s.Sign(d[:])
				if err != nil {
					t.Fatalf("Sign: %v", err)
				}
				if len(sig) > int(test.wantKind.ValueSize()) {
					t.Fatalf("signature is %d bytes, reserved %d", len(sig), test.wantKind.ValueSize())
				}
				padded := make([]byte, test.wantKind.ValueSize())
				copy(padded, sig)
				if err := VerifyECDSA(&k.PublicKey, d[:], padded); err != nil {
					t.Fatalf("VerifyECDSA(padded): %v", err)
				}
				bad := sha256.Sum256([]byte("other image"))
				if err := VerifyECDSA(&k.PublicKey, bad[:], padded); err == nil {
					t.Fatal("VerifyECDSA succeeded for the wrong digest")
				}
				padded[len(padded)-1] = 1
				if len(sig) < len(padded) {
					if err := VerifyECDSA(&k.PublicKey, d[:], padded); err == nil {
						t.Fatal("VerifyECDSA accepted non-zero padding")
					}
				}
			}
		})
	}
}

func TestUnsupportedCurve(t *testing.T) {
	k, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if _, err := NewECDSASigner(k); err == nil {
		t.Error("NewECDSASigner accepted a P-384 key")
	}
}

func TestParseKeys(t *testing.T) {
	ec, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	sec1, err := x509.MarshalECPrivateKey(ec)
	if err != nil {
		t.Fatalf("MarshalECPrivateKey: %v", err)
	}
	pkcs8, err := x509.MarshalPKCS8PrivateKey(ec)
	if err != nil {
		t.Fatalf("MarshalPKCS8PrivateKey: %v", err)
	}
	pkix, err := x509.MarshalPKIXPublicKey(&ec.PublicKey)
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey: %v", err)
	}
	enc := func(typ string, b []byte) []byte {
		return pem.EncodeToMemory(&pem.Block{Type: typ, Bytes: b})
	}

	for _, test := range []struct {
		desc    string
		pem     []byte
		private bool
		wantErr bool
	}{
		{desc: "rsa private", pem: []byte(TestRSAPriv), private: true},
		{desc: "rsa public", pem: []byte(TestRSAPub)},
		{desc: "sec1", pem: enc("EC PRIVATE KEY", sec1), private: true},
		{desc: "pkcs8", pem: enc("PRIVATE KEY", pkcs8), private: true},
		{desc: "pkix", pem: enc("PUBLIC KEY", pkix)},
		{desc: "wrong private type", pem: enc("CERTIFICATE", sec1), private: true, wantErr: true},
		{desc: "wrong public type", pem: enc("CERTIFICATE", pkix), wantErr: true},
		{desc: "garbage", pem: []byte("not a key"), private: true, wantErr: true},
		{desc: "trailing data", pem: append(enc("PUBLIC KEY", pkix), []byte("extra")...), wantErr: true},
	} {
		t.Run(test.desc, func(t *testing.T) {
			var err error
			if test.private {
				_, err = ParsePrivateKey(test.pem)
			} else {
				_, err = ParsePublicKey(test.pem)
			}
			if gotErr := err != nil; gotErr != test.wantErr {
				t.Errorf("err = %v, wantErr %t", err, test.wantErr)
			}
		})
	}
}
