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

// Package image assembles bootable images: header, payload and trailer.
package image

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/google/imgtrailer/api"
	"github.com/google/imgtrailer/internal/tlv"
)

// chunkSize is how much of the payload is read, hashed and written at a time.
const chunkSize = 1024

// Options control the contents of the image header and trailer.
type Options struct {
	Version api.ImageVersion
	// HeaderSize, if non-zero, pads the header out to this many bytes.
	// It must be at least api.ImageHeaderSize.
	HeaderSize uint16
	KeyID      uint8
	// PIC marks the payload as position independent.
	PIC bool
	// NonBootable marks the image as one the bootloader must not boot.
	NonBootable bool
	// Signer adds a signature record to the trailer. Nil gives a hash-only trailer.
	Signer tlv.Signer
}

// Result describes a created image.
type Result struct {
	Header api.ImageHeader
	// Hash is the SHA256 over header and payload stored in the trailer.
	Hash []byte
	// Trailer is the encoded trailer appended to the image.
	Trailer []byte
}

// Create writes an image to w containing the bodySize bytes read from body.
func Create(w io.Writer, body io.Reader, bodySize uint32, opts Options) (Result, error) {
	hdrSz := uint16(api.ImageHeaderSize)
	if opts.HeaderSize != 0 {
		if opts.HeaderSize < api.ImageHeaderSize {
			return Result{}, fmt.Errorf("image header must be at least %d bytes, got %d", api.ImageHeaderSize, opts.HeaderSize)
		}
		hdrSz = opts.HeaderSize
	}

	// First pass: the trailer size and flags have to be in the header before
	// the header can be hashed.
	tb := tlv.New(tlv.Policy{Signer: opts.Signer})
	hdr := api.ImageHeader{
		Magic: api.ImageMagic,
		TlvSz: tb.Size(),
		KeyID: opts.KeyID,
		HdrSz: hdrSz,
		ImgSz: bodySize,
		Flags: tb.Flags(),
		Vers:  opts.Version,
	}
	if opts.PIC {
		hdr.Flags |= api.FlagPIC
	}
	if opts.NonBootable {
		hdr.Flags |= api.FlagNonBootable
	}
	glog.V(1).Infof("Image header: %s", hdr)

	// Second pass: everything written to w before the trailer is also hashed.
	mw := io.MultiWriter(w, tb)
	hb, err := hdr.MarshalBinary()
	if err != nil {
		return Result{}, err
	}
	if _, err := mw.Write(hb); err != nil {
		return Result{}, fmt.Errorf("failed to write image header: %w", err)
	}
	if pad := int(hdrSz) - len(hb); pad > 0 {
		if _, err := mw.Write(make([]byte, pad)); err != nil {
			return Result{}, fmt.Errorf("failed to write header padding: %w", err)
		}
	}

	n, err := io.CopyBuffer(mw, io.LimitReader(body, int64(bodySize)), make([]byte, chunkSize))
	if err != nil {
		return Result{}, fmt.Errorf("failed to copy image body: %w", err)
	}
	if n != int64(bodySize) {
		return Result{}, fmt.Errorf("image body is %d bytes, header says %d", n, bodySize)
	}
	// Anything left in body means bodySize was wrong.
	var extra [1]byte
	if m, _ := body.Read(extra[:]); m > 0 {
		return Result{}, fmt.Errorf("image body is longer than %d bytes", bodySize)
	}

	trailer, err := tb.Finalize()
	if err != nil {
		return Result{}, fmt.Errorf("failed to build trailer: %w", err)
	}
	if _, err := w.Write(trailer); err != nil {
		return Result{}, fmt.Errorf("failed to write trailer: %w", err)
	}

	// The hash record is always first.
	hash := append([]byte(nil), trailer[api.TLVHeaderSize:api.TLVSHA256.EntrySize()]...)
	glog.Infof("Computed hash for image as %x", hash)
	return Result{Header: hdr, Hash: hash, Trailer: trailer}, nil
}

// CreateFile builds an image at dst from the raw binary at src.
func CreateFile(src, dst string, opts Options) (Result, error) {
	in, err := os.Open(src)
	if err != nil {
		return Result{}, fmt.Errorf("can't open app binary: %w", err)
	}
	defer in.Close()
	fi, err := in.Stat()
	if err != nil {
		return Result{}, fmt.Errorf("can't stat app binary %q: %w", src, err)
	}
	if fi.Size() > int64(^uint32(0)) {
		return Result{}, errors.New("app binary is too large for an image")
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return Result{}, fmt.Errorf("can't open target image %q: %w", dst, err)
	}
	res, err := Create(out, in, uint32(fi.Size()), opts)
	if cerr := out.Close(); err == nil && cerr != nil {
		return Result{}, fmt.Errorf("failed to close target image %q: %w", dst, cerr)
	}
	return res, err
}
