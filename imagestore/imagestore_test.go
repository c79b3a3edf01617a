package imagestore_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hasbyte1/go-stegocrypt/encryption"
	"github.com/hasbyte1/go-stegocrypt/imagestore"
	"github.com/hasbyte1/go-stegocrypt/objstore"
	"github.com/hasbyte1/go-stegocrypt/raster"
	"github.com/hasbyte1/go-stegocrypt/stego"
)

var _ stego.ImageStore = (*imagestore.Store)(nil)

func randomBuffer(shape raster.Shape, seed int64) raster.Buffer {
	buf := raster.New(shape)
	rand.New(rand.NewSource(seed)).Read(buf.Pix)
	return buf
}

func TestFormatFromName(t *testing.T) {
	tests := []struct {
		name string
		want imagestore.Format
	}{
		{"a.png", imagestore.PNG},
		{"dir/A.PNG", imagestore.PNG},
		{"s3://bucket/x.bmp", imagestore.BMP},
		{"x.tif", imagestore.TIFF},
		{"x.tiff", imagestore.TIFF},
		{"x.jpg", imagestore.JPEG},
		{"x.gif", imagestore.GIF},
	}
	for _, tt := range tests {
		got, err := imagestore.FormatFromName(tt.name)
		require.NoError(t, err, tt.name)
		require.Equal(t, tt.want, got, tt.name)
	}

	_, err := imagestore.FormatFromName("noext")
	require.ErrorIs(t, err, imagestore.ErrUnknownFormat)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lossless round trips
// ──────────────────────────────────────────────────────────────────────────────

func TestEncodeDecode_Lossless(t *testing.T) {
	opaque := randomBuffer(raster.Shape{Width: 17, Height: 9, Channels: 3}, 1)
	gray := randomBuffer(raster.Shape{Width: 8, Height: 5, Channels: 1}, 2)

	translucent := randomBuffer(raster.Shape{Width: 6, Height: 4, Channels: 4}, 3)
	translucent.Pix[3] = 0x80

	cases := []struct {
		format imagestore.Format
		buf    raster.Buffer
	}{
		{imagestore.PNG, opaque},
		{imagestore.PNG, gray},
		{imagestore.PNG, translucent},
		{imagestore.BMP, opaque},
		{imagestore.BMP, gray},
		{imagestore.TIFF, opaque},
		{imagestore.TIFF, gray},
		{imagestore.TIFF, translucent},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		require.NoError(t, imagestore.Encode(&out, tc.buf, tc.format), "%s %v", tc.format, tc.buf.Shape)

		got, f, err := imagestore.Decode(&out)
		require.NoError(t, err, "%s %v", tc.format, tc.buf.Shape)
		require.Equal(t, tc.format, f)
		require.Equal(t, tc.buf.Shape, got.Shape, "%s", tc.format)
		require.Equal(t, tc.buf.Pix, got.Pix, "%s %v", tc.format, tc.buf.Shape)
	}
}

func TestEncode_RejectsLossyFormats(t *testing.T) {
	buf := randomBuffer(raster.Shape{Width: 2, Height: 2, Channels: 3}, 4)
	for _, f := range []imagestore.Format{imagestore.JPEG, imagestore.GIF} {
		require.ErrorIs(t, imagestore.Encode(&bytes.Buffer{}, buf, f), imagestore.ErrLossyFormat)
	}
}

func TestEncode_RejectsBadBuffers(t *testing.T) {
	err := imagestore.Encode(&bytes.Buffer{}, raster.Buffer{Pix: make([]uint8, 5), Shape: raster.Shape{Width: 2, Height: 2, Channels: 3}}, imagestore.PNG)
	require.ErrorIs(t, err, raster.ErrShapeMismatch)

	err = imagestore.Encode(&bytes.Buffer{}, raster.New(raster.Shape{Width: 2, Height: 2, Channels: 2}), imagestore.PNG)
	require.ErrorIs(t, err, imagestore.ErrUnsupportedChannels)
}

func TestFromImage_RejectsSixteenBit(t *testing.T) {
	_, err := imagestore.FromImage(image.NewRGBA64(image.Rect(0, 0, 2, 2)))
	require.ErrorIs(t, err, imagestore.ErrUnsupportedDepth)

	_, err = imagestore.FromImage(image.NewGray16(image.Rect(0, 0, 2, 2)))
	require.ErrorIs(t, err, imagestore.ErrUnsupportedDepth)
}

func TestFromImage_ChannelMapping(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 2, 1))
	rgba.Set(0, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	rgba.Set(1, 0, color.RGBA{R: 4, G: 5, B: 6, A: 255})

	buf, err := imagestore.FromImage(rgba)
	require.NoError(t, err)
	require.Equal(t, 3, buf.Shape.Channels)
	require.Equal(t, []uint8{1, 2, 3, 4, 5, 6}, buf.Pix)

	rgba.Set(1, 0, color.NRGBA{R: 4, G: 5, B: 6, A: 0})
	buf, err = imagestore.FromImage(rgba)
	require.NoError(t, err)
	require.Equal(t, 4, buf.Shape.Channels)
	require.Equal(t, uint8(0), buf.Pix[7])
}

func TestToImage_Geometry(t *testing.T) {
	for _, channels := range []int{1, 3, 4} {
		shape := raster.Shape{Width: 5, Height: 2, Channels: channels}
		buf := raster.New(shape)
		for i := range buf.Pix {
			buf.Pix[i] = uint8(i)
		}

		img, err := imagestore.ToImage(buf)
		require.NoError(t, err)
		require.Equal(t, image.Rect(0, 0, 5, 2), img.Bounds())

		back, err := imagestore.FromImage(img)
		require.NoError(t, err)
		require.Equal(t, shape, back.Shape)
		require.Equal(t, buf.Pix, back.Pix)
	}

	_, err := imagestore.ToImage(raster.New(raster.Shape{Width: 2, Height: 2, Channels: 2}))
	require.ErrorIs(t, err, imagestore.ErrUnsupportedChannels)
}

func TestDecode_JPEGCover(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}
	var out bytes.Buffer
	require.NoError(t, jpeg.Encode(&out, src, nil))

	buf, f, err := imagestore.Decode(&out)
	require.NoError(t, err)
	require.Equal(t, imagestore.JPEG, f)
	require.Equal(t, raster.Shape{Width: 16, Height: 16, Channels: 3}, buf.Shape)
}

func TestDecode_Garbage(t *testing.T) {
	_, _, err := imagestore.Decode(bytes.NewReader([]byte("not an image")))
	require.ErrorIs(t, err, imagestore.ErrUnknownFormat)
}

// ──────────────────────────────────────────────────────────────────────────────
// Store
// ──────────────────────────────────────────────────────────────────────────────

func TestStore_HideRevealThroughFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := imagestore.New(objstore.NewRouter(nil))

	cover := randomBuffer(raster.Shape{Width: 40, Height: 40, Channels: 3}, 5)
	coverPath := filepath.Join(dir, "cover.png")
	require.NoError(t, store.Save(ctx, cover, coverPath))

	key, err := encryption.GenerateKey()
	require.NoError(t, err)

	codec := stego.New(stego.WithImageStore(store))
	for _, ext := range []string{".png", ".bmp", ".tiff"} {
		stegoPath := filepath.Join(dir, "stego"+ext)
		require.NoError(t, codec.HideImage(ctx, "meet at dawn", coverPath, stegoPath, key))

		got, err := codec.RevealImage(ctx, stegoPath, key)
		require.NoError(t, err, ext)
		require.Equal(t, "meet at dawn", got)

		_, f, err := store.LoadFormat(ctx, stegoPath)
		require.NoError(t, err)
		require.Equal(t, ext[1:], string(f))
	}

	err = codec.HideImage(ctx, "x", coverPath, filepath.Join(dir, "stego.jpg"), key)
	require.ErrorIs(t, err, imagestore.ErrLossyFormat)
}

func TestStore_MissingFile(t *testing.T) {
	_, err := imagestore.New(objstore.NewRouter(nil)).Load(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	require.ErrorIs(t, err, objstore.ErrNotFound)
}
