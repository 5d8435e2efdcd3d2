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
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/imgtrailer/api"
	"github.com/google/imgtrailer/internal/tlv"
)

var pssOpts = &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash}

// RSASigner signs image digests with an RSA-2048 key.
type RSASigner struct {
	key *rsa.PrivateKey
	pss bool
}

var _ tlv.Signer = &RSASigner{}

// NewRSASigner returns a signer using PKCS#1 v1.5 signatures, or RSA-PSS if pss is set.
func NewRSASigner(key *rsa.PrivateKey, pss bool) (*RSASigner, error) {
	if got := key.N.BitLen(); got != 2048 {
		return nil, fmt.Errorf("RSA key is %d bits, only 2048 is supported", got)
	}
	return &RSASigner{key: key, pss: pss}, nil
}

// Kind implements tlv.Signer.
func (s *RSASigner) Kind() api.TLVKind {
	return api.TLVRSA2048
}

// Flag implements tlv.Signer.
func (s *RSASigner) Flag() api.ImageFlags {
	if s.pss {
		return api.FlagPKCS1PSSRSA2048SHA256
	}
	return api.FlagPKCS15RSA2048SHA256
}

// Sign implements tlv.Signer.
func (s *RSASigner) Sign(digest []byte) ([]byte, error) {
	var sig []byte
	var err error
	if s.pss {
		sig, err = rsa.SignPSS(rand.Reader, s.key, crypto.SHA256, digest, pssOpts)
	} else {
		sig, err = rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, digest)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to compute signature: %w", err)
	}
	return sig, nil
}

// ECDSASigner signs image digests with a P-224 or P-256 key.
type ECDSASigner struct {
	key  *ecdsa.PrivateKey
	kind api.TLVKind
	flag api.ImageFlags
}

var _ tlv.Signer = &ECDSASigner{}

// NewECDSASigner returns a signer for the curve of the given key.
func NewECDSASigner(key *ecdsa.PrivateKey) (*ECDSASigner, error) {
	s := &ECDSASigner{key: key}
	switch n := key.Curve.Params().Name; n {
	case "P-224":
		s.kind, s.flag = api.TLVECDSA224, api.FlagECDSA224SHA256
	case "P-256":
		s.kind, s.flag = api.TLVECDSA256, api.FlagECDSA256SHA256
	default:
		return nil, fmt.Errorf("unsupported ECC curve %q", n)
	}
	return s, nil
}

// Kind implements tlv.Signer.
func (s *ECDSASigner) Kind() api.TLVKind {
	return s.kind
}

// Flag implements tlv.Signer.
func (s *ECDSASigner) Flag() api.ImageFlags {
	return s.flag
}

// Sign implements tlv.Signer. Signatures are ASN.1 DER encoded.
func (s *ECDSASigner) Sign(digest []byte) ([]byte, error) {
	sig, err := ecdsa.SignASN1(rand.Reader, s.key, digest)
	if err != nil {
		return nil, fmt.Errorf("failed to compute signature: %w", err)
	}
	return sig, nil
}

// NewSigner returns the trailer signer matching the type of key.
// pss selects RSA-PSS over PKCS#1 v1.5 and is ignored for ECDSA keys.
func NewSigner(key crypto.Signer, pss bool) (tlv.Signer, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return NewRSASigner(k, pss)
	case *ecdsa.PrivateKey:
		return NewECDSASigner(k)
	default:
		return nil, fmt.Errorf("unsupported signing key type %T", key)
	}
}

// VerifyRSA checks an RSA signature over an image digest.
func VerifyRSA(pub *rsa.PublicKey, pss bool, digest, sig []byte) error {
	var err error
	if pss {
		err = rsa.VerifyPSS(pub, crypto.SHA256, digest, sig, pssOpts)
	} else {
		err = rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest, sig)
	}
	if err != nil {
		return fmt.Errorf("failed to verify signature: %w", err)
	}
	return nil
}

type ecdsaSig struct {
	R, S *big.Int
}

// VerifyECDSA checks a DER encoded ECDSA signature over an image digest.
// Zero bytes following the DER sequence are padding and are ignored.
func VerifyECDSA(pub *ecdsa.PublicKey, digest, sig []byte) error {
	var es ecdsaSig
	rest, err := asn1.Unmarshal(sig, &es)
	if err != nil {
		return fmt.Errorf("malformed ECDSA signature: %w", err)
	}
	if len(bytes.Trim(rest, "\x00")) != 0 {
		return errors.New("non-zero bytes follow ECDSA signature")
	}
	if es.R == nil || es.S == nil || !ecdsa.Verify(pub, digest, es.R, es.S) {
		return errors.New("failed to verify signature")
	}
	return nil
}
