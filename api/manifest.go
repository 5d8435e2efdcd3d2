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

// ImageManifest describes a built image.
type ImageManifest struct {
	// Image is the file name of the built image.
	Image string `json:"image"`

	// Version is the image version in "major.minor.revision.build" form.
	Version string `json:"build_version"`

	// BuildTime is the time at which this image was built in RFC3339 format.
	BuildTime string `json:"build_time"`

	// ImageHash is the hex encoded SHA256 stored in the image trailer.
	ImageHash string `json:"image_hash"`

	// Flags is the header flags field.
	Flags ImageFlags `json:"flags"`

	// TrailerSize is the TlvSz header field.
	TrailerSize uint16 `json:"trailer_size"`

	// KeyID is the KeyID header field.
	KeyID uint8 `json:"key_id"`
}

// String returns a human-readable representation of the manifest.
func (m ImageManifest) String() string {
	return fmt.Sprintf("%s/v%s built at %s with image hash 0x%s (%s)", m.Image, m.Version, m.BuildTime, m.ImageHash, m.Flags)
}
