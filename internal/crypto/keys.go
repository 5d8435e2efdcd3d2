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

// Package crypto loads image signing keys and implements the signature
// record kinds of the image trailer.
package crypto

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

func decodeSinglePEM(b []byte) (*pem.Block, error) {
	p, rest := pem.Decode(b)
	if p == nil {
		return nil, fmt.Errorf("pem decoded to nil")
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("extraneous data: %v", rest)
	}
	return p, nil
}

// ParsePrivateKey parses a PEM encoded RSA or ECDSA private key.
// PKCS#1 ("RSA PRIVATE KEY"), SEC 1 ("EC PRIVATE KEY") and PKCS#8
// ("PRIVATE KEY") encodings are accepted.
func ParsePrivateKey(b []byte) (crypto.Signer, error) {
	p, err := decodeSinglePEM(b)
	if err != nil {
		return nil, err
	}
	switch p.Type {
	case "RSA PRIVATE KEY":
		k, err := x509.ParsePKCS1PrivateKey(p.Bytes)
		if err != nil {
			return nil, fmt.Errorf("unable to parse RSA private key: %w", err)
		}
		return k, nil
	case "EC PRIVATE KEY":
		k, err := x509.ParseECPrivateKey(p.Bytes)
		if err != nil {
			return nil, fmt.Errorf("unable to parse EC private key: %w", err)
		}
		return k, nil
	case "PRIVATE KEY":
		k, err := x509.ParsePKCS8PrivateKey(p.Bytes)
		if err != nil {
			return nil, fmt.Errorf("unable to parse PKCS#8 private key: %w", err)
		}
		switch k := k.(type) {
		case *rsa.PrivateKey:
			return k, nil
		case *ecdsa.PrivateKey:
			return k, nil
		default:
			return nil, fmt.Errorf("unsupported PKCS#8 key type %T", k)
		}
	default:
		return nil, fmt.Errorf("private key is of the wrong type %s", p.Type)
	}
}

// ReadPrivateKey reads a PEM private key from the named file.
func ReadPrivateKey(path string) (crypto.Signer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %q: %w", path, err)
	}
	k, err := ParsePrivateKey(b)
	if err != nil {
		return nil, fmt.Errorf("key file %q: %w", path, err)
	}
	return k, nil
}

// ParsePublicKey parses a PEM encoded RSA or ECDSA public key, either as
// PKCS#1 ("RSA PUBLIC KEY") or PKIX ("PUBLIC KEY").
func ParsePublicKey(b []byte) (crypto.PublicKey, error) {
	p, err := decodeSinglePEM(b)
	if err != nil {
		return nil, err
	}
	switch p.Type {
	case "RSA PUBLIC KEY":
		k, err := x509.ParsePKCS1PublicKey(p.Bytes)
		if err != nil {
			return nil, fmt.Errorf("unable to parse RSA public key: %w", err)
		}
		return k, nil
	case "PUBLIC KEY":
		k, err := x509.ParsePKIXPublicKey(p.Bytes)
		if err != nil {
			return nil, fmt.Errorf("unable to parse public key: %w", err)
		}
		switch k := k.(type) {
		case *rsa.PublicKey:
			return k, nil
		case *ecdsa.PublicKey:
			return k, nil
		default:
			return nil, fmt.Errorf("unsupported public key type %T", k)
		}
	default:
		return nil, fmt.Errorf("public key is of the wrong type %s", p.Type)
	}
}

// ReadPublicKey reads a PEM public key from the named file.
func ReadPublicKey(path string) (crypto.PublicKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %q: %w", path, err)
	}
	k, err := ParsePublicKey(b)
	if err != nil {
		return nil, fmt.Errorf("key file %q: %w", path, err)
	}
	return k, nil
}
