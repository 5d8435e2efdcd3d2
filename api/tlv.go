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

package api

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// TLVKind identifies the algorithm or purpose of a single trailer entry.
type TLVKind uint8

// Trailer record kinds understood by the bootloader.
const (
	TLVSHA256   TLVKind = 1
	TLVRSA2048  TLVKind = 2
	TLVECDSA224 TLVKind = 3
	TLVECDSA256 TLVKind = 4
)

// TLVHeaderSize is the encoded size of a TLVHeader.
const TLVHeaderSize = 4

// tlvValueSizes is the worst-case value length reserved for each kind.
// ECDSA signatures are DER encoded and so vary in length; the reservation
// covers the longest encoding and shorter ones are zero padded.
var tlvValueSizes = map[TLVKind]uint16{
	TLVSHA256:   32,
	TLVRSA2048:  256,
	TLVECDSA224: 68,
	TLVECDSA256: 72,
}

var tlvNames = map[TLVKind]string{
	TLVSHA256:   "SHA256",
	TLVRSA2048:  "RSA2048",
	TLVECDSA224: "ECDSA224",
	TLVECDSA256: "ECDSA256",
}

// ValueSize returns the number of value bytes reserved for an entry of this kind,
// or zero if the kind is unknown.
func (k TLVKind) ValueSize() uint16 {
	return tlvValueSizes[k]
}

// EntrySize returns the total encoded size of an entry of this kind, header included.
func (k TLVKind) EntrySize() uint16 {
	return TLVHeaderSize + k.ValueSize()
}

// Known returns true if k is one of the defined kinds.
func (k TLVKind) Known() bool {
	_, ok := tlvValueSizes[k]
	return ok
}

func (k TLVKind) String() string {
	if n, ok := tlvNames[k]; ok {
		return n
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(k))
}

// ImageFlags is the bitmask stored in the image header describing the image
// and the contents of its trailer.
type ImageFlags uint32

// Image header flag bits.
const (
	FlagPIC                   ImageFlags = 0x00000001
	FlagSHA256                ImageFlags = 0x00000002
	FlagPKCS15RSA2048SHA256   ImageFlags = 0x00000004
	FlagECDSA224SHA256        ImageFlags = 0x00000008
	FlagNonBootable           ImageFlags = 0x00000010
	FlagECDSA256SHA256        ImageFlags = 0x00000020
	FlagPKCS1PSSRSA2048SHA256 ImageFlags = 0x00000040
)

var flagNames = []struct {
	f    ImageFlags
	name string
}{
	{FlagPIC, "PIC"},
	{FlagSHA256, "SHA256"},
	{FlagPKCS15RSA2048SHA256, "PKCS15_RSA2048_SHA256"},
	{FlagECDSA224SHA256, "ECDSA224_SHA256"},
	{FlagNonBootable, "NON_BOOTABLE"},
	{FlagECDSA256SHA256, "ECDSA256_SHA256"},
	{FlagPKCS1PSSRSA2048SHA256, "PKCS1_PSS_RSA2048_SHA256"},
}

// Has returns true if every bit in o is also set in f.
func (f ImageFlags) Has(o ImageFlags) bool {
	return f&o == o
}

// String returns the set flag names joined by '|'.
func (f ImageFlags) String() string {
	var parts []string
	rest := f
	for _, n := range flagNames {
		if f&n.f != 0 {
			parts = append(parts, n.name)
			rest &^= n.f
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, "|")
}

// TLVHeader precedes every value in the image trailer.
type TLVHeader struct {
	Type TLVKind
	Pad  uint8
	Len  uint16
}

// MarshalBinary encodes the header in its little-endian wire format.
func (h TLVHeader) MarshalBinary() ([]byte, error) {
	return h.AppendTo(make([]byte, 0, TLVHeaderSize)), nil
}

// AppendTo appends the wire encoding of h to b.
func (h TLVHeader) AppendTo(b []byte) []byte {
	b = append(b, byte(h.Type), h.Pad)
	return binary.LittleEndian.AppendUint16(b, h.Len)
}

// UnmarshalTLVHeader decodes a TLVHeader from the start of b.
func UnmarshalTLVHeader(b []byte) (TLVHeader, error) {
	if len(b) < TLVHeaderSize {
		return TLVHeader{}, fmt.Errorf("TLV header needs %d bytes, got %d", TLVHeaderSize, len(b))
	}
	return TLVHeader{
		Type: TLVKind(b[0]),
		Pad:  b[1],
		Len:  binary.LittleEndian.Uint16(b[2:4]),
	}, nil
}
