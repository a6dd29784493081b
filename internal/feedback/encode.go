package feedback

import (
	"bytes"
	"image"
	"image/png"
)

// EncodePNG encodes img for upload.
func EncodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, &Error{Kind: KindImageEncoding, Err: image.ErrFormat}
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, &Error{Kind: KindImageEncoding, Err: err}
	}
	return buf.Bytes(), nil
}
