package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
)

// FrameHeaderSize is the byte length of the width/height prefix of a frame.
const FrameHeaderSize = 8

var ErrShortFrame = errors.New("stream: short frame")

// EncodeFrame serializes img as a binary frame: width and height as little
// endian uint32, then width*height RGBA8 pixels, top row first.
func EncodeFrame(img *image.RGBA) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	buf := make([]byte, FrameHeaderSize+w*h*4)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(w))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h))

	row := w * 4
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+row]
		copy(buf[FrameHeaderSize+y*row:], src)
	}
	return buf
}

// DecodeFrame parses a binary frame back into an image.
func DecodeFrame(data []byte) (*image.RGBA, error) {
	if len(data) < FrameHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(data))
	}
	w := uint64(binary.LittleEndian.Uint32(data[0:4]))
	h := uint64(binary.LittleEndian.Uint32(data[4:8]))
	n := uint64(len(data) - FrameHeaderSize)
	// Bound w before multiplying so crafted headers cannot overflow.
	if (w == 0 || h == 0) && n != 0 || h != 0 && w > n/4/h || w*h*4 != n {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrShortFrame, len(data), w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	copy(img.Pix, data[FrameHeaderSize:])
	return img, nil
}
