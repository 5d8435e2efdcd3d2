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

// Package verify performs the checks a bootloader makes on an image before
// executing it.
package verify

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/golang/glog"
	"github.com/google/imgtrailer/api"
	icrypto "github.com/google/imgtrailer/internal/crypto"
)

var (
	// ErrBadMagic is returned when the image does not start with an image header.
	ErrBadMagic = errors.New("bad image magic")
	// ErrTruncated is returned when the image is shorter than its header claims.
	ErrTruncated = errors.New("image truncated")
	// ErrHashMismatch is returned when the trailer hash does not match the image.
	ErrHashMismatch = errors.New("image hash mismatch")
)

// Record is one entry from an image trailer.
type Record struct {
	Kind  api.TLVKind
	Value []byte
}

// ParsedImage is an image split into its parts.
type ParsedImage struct {
	Header api.ImageHeader
	// Covered is the header, header padding and payload: the bytes the hash is over.
	Covered []byte
	Payload []byte
	Records []Record
}

// Record returns the first record of the given kind, if any.
func (p *ParsedImage) Record(k api.TLVKind) (Record, bool) {
	for _, r := range p.Records {
		if r.Kind == k {
			return r, true
		}
	}
	return Record{}, false
}

// Parse splits an image into header, payload and trailer records.
// No cryptographic checks are made.
func Parse(img []byte) (*ParsedImage, error) {
	h, err := api.UnmarshalImageHeader(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	if h.Magic != api.ImageMagic {
		return nil, fmt.Errorf("%w: 0x%08x", ErrBadMagic, h.Magic)
	}
	if h.HdrSz < api.ImageHeaderSize {
		return nil, fmt.Errorf("header size %d is smaller than the header", h.HdrSz)
	}
	bodyEnd := uint64(h.HdrSz) + uint64(h.ImgSz)
	end := bodyEnd + uint64(h.TlvSz)
	if uint64(len(img)) < end {
		return nil, fmt.Errorf("%w: have %d bytes, header describes %d", ErrTruncated, len(img), end)
	}
	if uint64(len(img)) > end {
		glog.Warningf("Ignoring %d bytes following the image trailer", uint64(len(img))-end)
	}

	p := &ParsedImage{
		Header:  h,
		Covered: img[:bodyEnd],
		Payload: img[h.HdrSz:bodyEnd],
	}
	trailer := img[bodyEnd:end]
	for off := 0; off < len(trailer); {
		th, err := api.UnmarshalTLVHeader(trailer[off:])
		if err != nil {
			return nil, fmt.Errorf("trailer record at offset %d: %w", off, err)
		}
		off += api.TLVHeaderSize
		if off+int(th.Len) > len(trailer) {
			return nil, fmt.Errorf("trailer record %s at offset %d overruns the trailer", th.Type, off-api.TLVHeaderSize)
		}
		p.Records = append(p.Records, Record{Kind: th.Type, Value: trailer[off : off+int(th.Len)]})
		off += int(th.Len)
	}
	return p, nil
}

// sigFlags maps each signature kind to the header flags which may announce it.
var sigFlags = map[api.TLVKind]api.ImageFlags{
	api.TLVRSA2048:  api.FlagPKCS15RSA2048SHA256 | api.FlagPKCS1PSSRSA2048SHA256,
	api.TLVECDSA224: api.FlagECDSA224SHA256,
	api.TLVECDSA256: api.FlagECDSA256SHA256,
}

// Image parses img and checks its hash and signatures.
//
// Every signature record must verify under one of keys. An image with no
// signature records passes with no keys.
func Image(img []byte, keys ...crypto.PublicKey) (*ParsedImage, error) {
	p, err := Parse(img)
	if err != nil {
		return nil, err
	}
	flags := p.Header.Flags

	hr, ok := p.Record(api.TLVSHA256)
	if !ok {
		return nil, errors.New("image has no SHA256 record")
	}
	if !flags.Has(api.FlagSHA256) {
		return nil, errors.New("image has a SHA256 record but the SHA256 flag is not set")
	}
	digest := sha256.Sum256(p.Covered)
	if !bytes.Equal(hr.Value, digest[:]) {
		return nil, fmt.Errorf("%w: trailer has %x, image hashes to %x", ErrHashMismatch, hr.Value, digest[:])
	}

	for _, r := range p.Records {
		if r.Kind == api.TLVSHA256 {
			continue
		}
		want, ok := sigFlags[r.Kind]
		if !ok {
			glog.Warningf("Skipping unknown trailer record %s", r.Kind)
			continue
		}
		if flags&want == 0 {
			return nil, fmt.Errorf("image has a %s record but none of %s is set", r.Kind, want)
		}
		if err := verifySignature(r, flags, digest[:], keys); err != nil {
			return nil, err
		}
		glog.V(1).Infof("Verified %s signature", r.Kind)
	}
	for k, f := range sigFlags {
		if _, ok := p.Record(k); !ok && flags&f != 0 {
			return nil, fmt.Errorf("flag %s is set but the image has no %s record", flags&f, k)
		}
	}
	return p, nil
}

func verifySignature(r Record, flags api.ImageFlags, digest []byte, keys []crypto.PublicKey) error {
	tried := 0
	for _, k := range keys {
		var err error
		switch k := k.(type) {
		case *rsa.PublicKey:
			if r.Kind != api.TLVRSA2048 {
				continue
			}
			err = icrypto.VerifyRSA(k, flags.Has(api.FlagPKCS1PSSRSA2048SHA256), digest, r.Value)
		case *ecdsa.PublicKey:
			name := k.Curve.Params().Name
			if !(r.Kind == api.TLVECDSA224 && name == "P-224") && !(r.Kind == api.TLVECDSA256 && name == "P-256") {
				continue
			}
			err = icrypto.VerifyECDSA(k, digest, r.Value)
		default:
			continue
		}
		tried++
		if err == nil {
			return nil
		}
		glog.V(1).Infof("%s signature did not verify with key %d: %v", r.Kind, tried, err)
	}
	if tried == 0 {
		return fmt.Errorf("no key of the right type to verify %s signature", r.Kind)
	}
	return fmt.Errorf("%s signature did not verify with any of %d keys", r.Kind, tried)
}
