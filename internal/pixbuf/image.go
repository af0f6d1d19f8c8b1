package pixbuf

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// ColorMode selects how decoded images are flattened.
type ColorMode string

const (
	ColorRGB  ColorMode = "rgb"
	ColorRGBA ColorMode = "rgba"
	ColorGray ColorMode = "gray"
	// ColorAuto keeps gray sources gray and translucent sources RGBA.
	ColorAuto ColorMode = "auto"
)

// ParseColorMode accepts the config spelling of a color mode.
func ParseColorMode(value string) (ColorMode, error) {
	switch mode := ColorMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return ColorRGB, nil
	case ColorRGB, ColorRGBA, ColorGray, ColorAuto:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown color mode %q", value)
	}
}

// FromImage flattens img into a buffer using the requested color mode.
func FromImage(img image.Image, mode ColorMode) (*Buffer, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", ErrShapeMismatch, width, height)
	}

	channels := channelsFor(img, mode)

	if g, ok := img.(*image.Gray); ok && channels == 1 {
		buf, err := New(height, width, 1)
		if err != nil {
			return nil, err
		}
		for y := 0; y < height; y++ {
			copy(buf.Row(y), g.Pix[y*g.Stride:y*g.Stride+width])
		}
		return buf, nil
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, width, height))
		draw.Copy(nrgba, image.Point{}, img, bounds, draw.Src, nil)
	}

	buf, err := New(height, width, channels)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
		dst := buf.Row(y)
		switch channels {
		case 4:
			copy(dst, src)
		case 3:
			for x := 0; x < width; x++ {
				copy(dst[x*3:x*3+3], src[x*4:x*4+3])
			}
		case 1:
			for x := 0; x < width; x++ {
				dst[x] = luma(src[x*4], src[x*4+1], src[x*4+2])
			}
		}
	}
	return buf, nil
}

func channelsFor(img image.Image, mode ColorMode) int {
	switch mode {
	case ColorRGBA:
		return 4
	case ColorGray:
		return 1
	case ColorAuto:
		switch img.(type) {
		case *image.Gray, *image.Gray16:
			return 1
		}
		if o, ok := img.(interface{ Opaque() bool }); ok && !o.Opaque() {
			return 4
		}
		return 3
	default:
		return 3
	}
}

// luma matches color.GrayModel for 8-bit inputs.
func luma(r, g, b byte) byte {
	r16, g16, b16 := uint32(r)*0x101, uint32(g)*0x101, uint32(b)*0x101
	y := (19595*r16 + 38470*g16 + 7471*b16 + 1<<15) >> 24
	return byte(y)
}

// Image wraps the buffer in an image.Image suitable for encoding. Gray buffers
// become *image.Gray; RGB and RGBA buffers become *image.NRGBA.
func (b *Buffer) Image() image.Image {
	rect := image.Rect(0, 0, b.Width, b.Height)
	switch b.Channels {
	case 1:
		return &image.Gray{Pix: b.Data, Stride: b.Width, Rect: rect}
	case 4:
		return &image.NRGBA{Pix: b.Data, Stride: b.Width * 4, Rect: rect}
	default:
		out := image.NewNRGBA(rect)
		for y := 0; y < b.Height; y++ {
			src := b.Row(y)
			dst := out.Pix[y*out.Stride : y*out.Stride+b.Width*4]
			for x := 0; x < b.Width; x++ {
				if b.Channels == 3 {
					copy(dst[x*4:x*4+3], src[x*3:x*3+3])
				} else {
					v := src[x*b.Channels]
					dst[x*4], dst[x*4+1], dst[x*4+2] = v, v, v
				}
				dst[x*4+3] = 0xff
			}
		}
		return out
	}
}
