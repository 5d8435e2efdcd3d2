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

// Package tlv builds the integrity trailer which follows an image payload.
//
// The size of the trailer is stored in the image header, and the header is
// itself covered by the trailer's hash, so the trailer is built in two passes.
// A Builder reports the size and flags of the trailer it will produce as soon
// as it is constructed; the caller uses those to finish the header, then
// streams the header and payload through AddBytes, and finally calls Finalize
// to get the encoded trailer.
package tlv

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"sort"

	"github.com/golang/glog"
	"github.com/google/imgtrailer/api"
)

// Signer produces the value of a signature record from the image digest.
type Signer interface {
	// Kind is the record kind the signatures are stored under.
	Kind() api.TLVKind
	// Flag is the image header flag advertising this kind of signature.
	Flag() api.ImageFlags
	// Sign returns a signature over the SHA256 digest of the image. It must be
	// no longer than Kind().ValueSize().
	Sign(digest []byte) ([]byte, error)
}

// Policy selects which records the trailer will contain.
type Policy struct {
	// Signer, if set, adds a signature record over the content hash.
	// A nil Signer gives a hash-only trailer.
	Signer Signer
}

// Builder accumulates the covered image bytes and emits the trailer.
// A Builder is single use: once Finalize has been called every other method
// panics.
type Builder struct {
	flags  api.ImageFlags
	kinds  []api.TLVKind
	size   uint16
	signer Signer
	hasher hash.Hash
	done   bool
}

// NewHashOnly returns a Builder whose trailer holds only the SHA256 of the image.
func NewHashOnly() *Builder {
	return New(Policy{})
}

// New returns a Builder for the given policy.
func New(p Policy) *Builder {
	b := &Builder{
		flags:  api.FlagSHA256,
		kinds:  []api.TLVKind{api.TLVSHA256},
		signer: p.Signer,
		hasher: sha256.New(),
	}
	if p.Signer != nil {
		if p.Signer.Kind() == api.TLVSHA256 {
			panic("tlv: signer cannot use the content hash record kind")
		}
		b.kinds = append(b.kinds, p.Signer.Kind())
		b.flags |= p.Signer.Flag()
	}
	// Entries are emitted in ascending kind order, which puts the hash first.
	sort.Slice(b.kinds, func(i, j int) bool { return b.kinds[i] < b.kinds[j] })
	for _, k := range b.kinds {
		if !k.Known() {
			panic(fmt.Sprintf("tlv: no size known for record kind %s", k))
		}
		b.size += k.EntrySize()
	}
	return b
}

func (b *Builder) checkOpen(op string) {
	if b.done {
		panic(fmt.Sprintf("tlv: %s called on finalized Builder", op))
	}
}

// Flags returns the image header flags describing the trailer.
func (b *Builder) Flags() api.ImageFlags {
	b.checkOpen("Flags")
	return b.flags
}

// Size returns the number of bytes to reserve for the trailer.
// It does not change as bytes are added, and the trailer returned by Finalize
// is exactly this long.
func (b *Builder) Size() uint16 {
	b.checkOpen("Size")
	return b.size
}

// Kinds returns the record kinds the trailer will contain, in emission order.
func (b *Builder) Kinds() []api.TLVKind {
	b.checkOpen("Kinds")
	return append([]api.TLVKind(nil), b.kinds...)
}

// AddBytes adds covered bytes to the hash. Chunking is irrelevant: the result
// depends only on the concatenation of everything added.
func (b *Builder) AddBytes(p []byte) {
	b.checkOpen("AddBytes")
	// hash.Hash.Write never returns an error.
	b.hasher.Write(p)
}

// Write implements io.Writer on top of AddBytes, and never fails.
func (b *Builder) Write(p []byte) (int, error) {
	b.AddBytes(p)
	return len(p), nil
}

// Finalize completes the hash and returns the encoded trailer. The Builder
// cannot be used afterwards.
//
// Errors can only come from the policy's Signer; a hash-only Builder never
// returns an error.
func (b *Builder) Finalize() ([]byte, error) {
	b.checkOpen("Finalize")
	b.done = true

	digest := b.hasher.Sum(nil)
	if len(digest) != int(api.TLVSHA256.ValueSize()) {
		panic(fmt.Sprintf("tlv: SHA256 digest is %d bytes, want %d", len(digest), api.TLVSHA256.ValueSize()))
	}
	glog.V(1).Infof("Image digest %x", digest)

	out := make([]byte, 0, b.size)
	for _, k := range b.kinds {
		var val []byte
		switch k {
		case api.TLVSHA256:
			val = digest
		case b.signer.Kind():
			sig, err := b.signer.Sign(digest)
			if err != nil {
				return nil, fmt.Errorf("failed to create %s signature: %w", k, err)
			}
			if len(sig) > int(k.ValueSize()) {
				panic(fmt.Sprintf("tlv: %s signature is %d bytes, reserved %d", k, len(sig), k.ValueSize()))
			}
			val = make([]byte, k.ValueSize())
			copy(val, sig)
		default:
			panic(fmt.Sprintf("tlv: no producer for record kind %s", k))
		}
		out = api.TLVHeader{Type: k, Len: uint16(len(val))}.AppendTo(out)
		out = append(out, val...)
		glog.V(2).Infof("Appended %s record (%d bytes)", k, len(val))
	}

	if len(out) != int(b.size) {
		panic(fmt.Sprintf("tlv: encoded trailer is %d bytes, reserved %d", len(out), b.size))
	}
	return out, nil
}
