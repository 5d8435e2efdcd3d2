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

// Package api_test holds blackbox tests for the api package.
package api_test

import (
	"bytes"
	"testing"

	"github.com/google/imgtrailer/api"
)

func TestKindSizes(t *testing.T) {
	for _, test := range []struct {
		kind      api.TLVKind
		wantValue uint16
		wantName  string
	}{
		{kind: api.TLVSHA256, wantValue: 32, wantName: "SHA256"},
		{kind: api.TLVRSA2048, wantValue: 256, wantName: "RSA2048"},
		{kind: api.TLVECDSA224, wantValue: 68, wantName: "ECDSA224"},
		{kind: api.TLVECDSA256, wantValue: 72, wantName: "ECDSA256"},
		{kind: api.TLVKind(99), wantValue: 0, wantName: "UNKNOWN(99)"},
	} {
		t.Run(test.wantName, func(t *testing.T) {
			if got := test.kind.ValueSize(); got != test.wantValue {
				t.Errorf("ValueSize() = %d, want %d", got, test.wantValue)
			}
			if got, want := test.kind.EntrySize(), test.wantValue+api.TLVHeaderSize; got != want {
				t.Errorf("EntrySize() = %d, want %d", got, want)
			}
			if got := test.kind.String(); got != test.wantName {
				t.Errorf("String() = %q, want %q", got, test.wantName)
			}
		})
	}
}

func TestFlagsString(t *testing.T) {
	for _, test := range []struct {
		desc  string
		flags api.ImageFlags
		want  string
	}{
		{desc: "none", flags: 0, want: "0"},
		{desc: "sha", flags: api.FlagSHA256, want: "SHA256"},
		{desc: "ec", flags: api.FlagSHA256 | api.FlagECDSA256SHA256, want: "SHA256|ECDSA256_SHA256"},
		{desc: "unknown bits", flags: api.FlagPIC | 0x100, want: "PIC|0x100"},
	} {
		t.Run(test.desc, func(t *testing.T) {
			if got := test.flags.String(); got != test.want {
				t.Errorf("String() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestTLVHeaderEncoding(t *testing.T) {
	h := api.TLVHeader{Type: api.TLVRSA2048, Len: 0x0100}
	b, err := h.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if want := []byte{0x02, 0x00, 0x00, 0x01}; !bytes.Equal(b, want) {
		t.Fatalf("got %x, want %x", b, want)
	}
	got, err := api.UnmarshalTLVHeader(b)
	if err != nil {
		t.Fatalf("UnmarshalTLVHeader: %v", err)
	}
	if got != h {
		t.Errorf("got %+v, want %+v", got, h)
	}
	if _, err := api.UnmarshalTLVHeader(b[:3]); err == nil {
		t.Error("UnmarshalTLVHeader of short buffer succeeded")
	}
}
