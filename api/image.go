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

// Package api contains the on-disk formats shared by the image tools and the
// bootloader: the image header, the trailer records, and build manifests.
package api

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

const (
	// ImageMagic identifies a bootable image header.
	ImageMagic = 0x96f3b83c

	// ImageHeaderSize is the encoded size of an ImageHeader. Images may pad
	// the header out further; HdrSz records the padded size.
	ImageHeaderSize = 32
)

// ImageVersion is the four part version stored in the image header.
type ImageVersion struct {
	Major    uint8
	Minor    uint8
	Revision uint16
	BuildNum uint32
}

// ParseImageVersion parses a version of the form "major[.minor[.revision[.build]]]".
func ParseImageVersion(s string) (ImageVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) > 4 {
		return ImageVersion{}, fmt.Errorf("invalid version %q: too many components", s)
	}
	bits := []int{8, 8, 16, 32}
	var vals [4]uint64
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, bits[i])
		if err != nil {
			return ImageVersion{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		vals[i] = v
	}
	return ImageVersion{
		Major:    uint8(vals[0]),
		Minor:    uint8(vals[1]),
		Revision: uint16(vals[2]),
		BuildNum: uint32(vals[3]),
	}, nil
}

func (v ImageVersion) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Revision, v.BuildNum)
}

// ImageHeader is found at the start of every image.
type ImageHeader struct {
	Magic uint32
	// TlvSz is the number of bytes reserved for the trailer following the payload.
	TlvSz uint16
	KeyID uint8
	Pad1  uint8
	// HdrSz is the offset of the payload from the start of the image.
	HdrSz uint16
	Pad2  uint16
	// ImgSz is the length of the payload.
	ImgSz uint32
	Flags ImageFlags
	Vers  ImageVersion
	Pad3  uint32
}

// MarshalBinary encodes the header in its little-endian wire format.
func (h ImageHeader) MarshalBinary() ([]byte, error) {
	b := &bytes.Buffer{}
	if err := binary.Write(b, binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("failed to serialise image header: %w", err)
	}
	return b.Bytes(), nil
}

// UnmarshalImageHeader decodes an ImageHeader from the start of b.
func UnmarshalImageHeader(b []byte) (ImageHeader, error) {
	var h ImageHeader
	if len(b) < ImageHeaderSize {
		return h, fmt.Errorf("image header needs %d bytes, got %d", ImageHeaderSize, len(b))
	}
	if err := binary.Read(bytes.NewReader(b[:ImageHeaderSize]), binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("failed to parse image header: %w", err)
	}
	return h, nil
}

// String returns a human-readable summary of the header.
func (h ImageHeader) String() string {
	return fmt.Sprintf("v%s hdr=%d img=%d tlv=%d flags=%s key=%d", h.Vers, h.HdrSz, h.ImgSz, h.TlvSz, h.Flags, h.KeyID)
}
