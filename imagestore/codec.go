package imagestore

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/hasbyte1/go-stegocrypt/raster"
)

// Decode reads an image in any supported format and returns its samples.
func Decode(r io.Reader) (raster.Buffer, Format, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		if err == image.ErrFormat {
			return raster.Buffer{}, "", ErrUnknownFormat
		}
		return raster.Buffer{}, "", fmt.Errorf("imagestore: decode: %w", err)
	}
	buf, err := FromImage(img)
	if err != nil {
		return raster.Buffer{}, "", err
	}
	return buf, Format(name), nil
}

// Encode writes buf to w as format f.
func Encode(w io.Writer, buf raster.Buffer, f Format) error {
	if !f.Lossless() {
		if f == JPEG || f == GIF {
			return fmt.Errorf("%w: %s", ErrLossyFormat, f)
		}
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	img, err := ToImage(buf)
	if err != nil {
		return err
	}

	switch f {
	case PNG:
		err = png.Encode(w, img)
	case BMP:
		err = bmp.Encode(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	if err != nil {
		return fmt.Errorf("imagestore: encode %s: %w", f, err)
	}
	return nil
}

// FromImage copies the samples of img into a new buffer.
func FromImage(img image.Image) (raster.Buffer, error) {
	switch img.ColorModel() {
	case color.Gray16Model, color.RGBA64Model, color.NRGBA64Model, color.Alpha16Model:
		return raster.Buffer{}, ErrUnsupportedDepth
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if isGray(img) {
		buf := raster.New(raster.Shape{Width: w, Height: h, Channels: 1})
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				buf.Pix[i] = color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
				i++
			}
		}
		return buf, nil
	}

	channels := 4
	if isOpaque(img) {
		channels = 3
	}
	buf := raster.New(raster.Shape{Width: w, Height: h, Channels: channels})
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = c.R, c.G, c.B
			if channels == 4 {
				buf.Pix[i+3] = c.A
			}
			i += channels
		}
	}
	return buf, nil
}

// ToImage builds an image from buf.  One channel gives *image.Gray; three or
// four give *image.NRGBA.
func ToImage(buf raster.Buffer) (image.Image, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, buf.Shape.Width, buf.Shape.Height)

	switch buf.Shape.Channels {
	case 1:
		img := image.NewGray(rect)
		copy(img.Pix, buf.Pix)
		return img, nil
	case 3:
		img := image.NewNRGBA(rect)
		for i, j := 0, 0; i < len(buf.Pix); i, j = i+3, j+4 {
			img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], 0xff
		}
		return img, nil
	case 4:
		img := image.NewNRGBA(rect)
		copy(img.Pix, buf.Pix)
		return img, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedChannels, buf.Shape.Channels)
}

func isGray(img image.Image) bool {
	switch m := img.(type) {
	case *image.Gray:
		return true
	case *image.Paletted:
		// 8-bit BMPs decode as paletted images with a gray ramp.
		for _, c := range m.Palette {
			r, g, b, a := c.RGBA()
			if r != g || g != b || a != 0xffff {
				return false
			}
		}
		return true
	}
	return img.ColorModel() == color.GrayModel
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}
