// Package decode runs the cooperative per-frame scan loop: it pulls video
// frames from an acquired stream, runs a visual-code decoder on each, and
// reports a decoded payload exactly once.
package decode

import (
	"errors"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNoCode signals that a frame contained no readable code. This is the
// loop's normal "nothing found yet" outcome, never surfaced to the operator.
var ErrNoCode = errors.New("no code in frame")

// Decoder extracts a visual-code payload from a single frame.
type Decoder interface {
	Decode(img image.Image) (string, error)
}

// QRDecoder decodes QR codes using the zxing port.
type QRDecoder struct {
	reader gozxing.Reader
}

// NewQRDecoder creates a QR decoder.
func NewQRDecoder() *QRDecoder {
	return &QRDecoder{reader: qrcode.NewQRCodeReader()}
}

// Decode implements Decoder. Any decoder-level failure, including a frame
// with no code in it, degrades to ErrNoCode.
func (d *QRDecoder) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", ErrNoCode
	}

	result, err := d.reader.Decode(bmp, nil)
	if err != nil {
		return "", ErrNoCode
	}

	return result.GetText(), nil
}
