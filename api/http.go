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

import "fmt"

const (
	// HTTPGetImage is the path of the URL to get the record of a built image by its hash.
	HTTPGetImage = "imgtool/v0/image"
	// HTTPGetLatest is the path of the URL to get the most recently recorded build.
	HTTPGetLatest = "imgtool/v0/latest"
	// HTTPListImages is the path of the URL to list recent builds.
	HTTPListImages = "imgtool/v0/images"
)

// ImageRecord is the registry's view of one built image.
type ImageRecord struct {
	// Hash is the SHA256 stored in the image trailer.
	Hash []byte
	// Header is the image header as built.
	Header ImageHeader
	// Manifest is the signed note envelope of the build manifest, if one was made.
	Manifest []byte
	// CreatedNanos is the number of nanoseconds since the Unix epoch at which the
	// record was written.
	CreatedNanos int64
}

// String returns a compact printable representation of an ImageRecord.
func (r ImageRecord) String() string {
	return fmt.Sprintf("{0x%x %s @ %d}", r.Hash, r.Header, r.CreatedNanos)
}
