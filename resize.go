package mediaforge

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

func init() {
	// Make image.Decode/image.DecodeConfig able to sniff WebP sources the
	// same way the stdlib formats are sniffed, and let webp.Encode serve
	// as the lossless re-encoder in step 6 of §4.2. Deliberately not
	// importing golang.org/x/image/webp alongside this: both packages
	// register the "webp" format name, and a double registration would
	// make image.Decode's format sniffing nondeterministic.
	image.RegisterFormat("webp", "RIFF????WEBP", webp.Decode, webp.DecodeConfig)
}

// ResizeOutcome is the three-valued result of normalizing an image, per the
// §9 re-architecture note: a semantic "no resize needed" signal is not an
// error and must not be smuggled through Go's error return.
type ResizeOutcome interface {
	isResizeOutcome()
}

// ResizedOutcome carries the re-encoded, downscaled (or reformatted) bytes.
type ResizedOutcome struct {
	Bytes []byte
}

func (ResizedOutcome) isResizeOutcome() {}

// UnchangedOutcome signals the caller should store the source bytes
// untouched: the source was already WebP and already within bounds.
type UnchangedOutcome struct{}

func (UnchangedOutcome) isResizeOutcome() {}

// FailedResizeOutcome carries a classified resize failure.
type FailedResizeOutcome struct {
	Err error
}

func (FailedResizeOutcome) isResizeOutcome() {}

// Resize implements the image normalizer (C4, §4.2): decode, compare
// against maxEdge, downscale if needed, and re-encode as lossless WebP.
func Resize(src []byte, maxEdge uint32) ResizeOutcome {
	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return FailedResizeOutcome{Err: errCorruptedAsset("decode: " + err.Error())}
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if uint32(w) < maxEdge && uint32(h) < maxEdge {
		if format == "webp" {
			return UnchangedOutcome{}
		}
		encoded, err := encodeWebPLossless(img)
		if err != nil {
			return FailedResizeOutcome{Err: errCorruptedAsset("encode: " + err.Error())}
		}
		return ResizedOutcome{Bytes: encoded}
	}

	targetW, targetH := targetDimensions(w, h, int(maxEdge))
	resized := imaging.Resize(img, targetW, targetH, imaging.Lanczos)

	encoded, err := encodeWebPLossless(resized)
	if err != nil {
		return FailedResizeOutcome{Err: errCorruptedAsset("encode: " + err.Error())}
	}
	return ResizedOutcome{Bytes: encoded}
}

// targetDimensions computes the longer-edge-bound dimensions per §4.2 step
// 4: longer edge set to maxEdge, shorter edge scaled proportionally and
// rounded to the nearest integer.
func targetDimensions(w, h, maxEdge int) (int, int) {
	if w >= h {
		shortEdge := int(math.Round(float64(maxEdge) * float64(h) / float64(w)))
		return maxEdge, shortEdge
	}
	shortEdge := int(math.Round(float64(maxEdge) * float64(w) / float64(h)))
	return shortEdge, maxEdge
}

func encodeWebPLossless(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: true}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
