// Package frame turns rendered emulator frames into the base64 PNG data URIs
// embedded in reasoning-service requests.
package frame

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

const dataURIPrefix = "data:image/png;base64,"

// EncodeDataURI encodes img as a PNG data URI. An upscale factor above 1
// enlarges the frame with nearest-neighbor sampling first, which keeps the
// pixel-art legible to the model without inventing detail. Encoding is
// deterministic: the same frame and factor always yield identical output.
func EncodeDataURI(img image.Image, upscale int) (string, error) {
	if img == nil {
		return "", fmt.Errorf("frame: nil image")
	}
	if upscale > 1 {
		img = scale(img, upscale)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("frame: encode png: %w", err)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func scale(img image.Image, factor int) image.Image {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*factor, bounds.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
