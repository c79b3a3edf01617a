package raster_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hasbyte1/go-stegocrypt/raster"
)

func TestNew_AllocatesShape(t *testing.T) {
	b := raster.New(raster.Shape{Width: 4, Height: 3, Channels: 3})
	require.Equal(t, 36, b.Len())
	require.NoError(t, b.Validate())
}

func TestValidate_Mismatch(t *testing.T) {
	b := raster.Buffer{Pix: make([]uint8, 10), Shape: raster.Shape{Width: 2, Height: 2, Channels: 3}}
	require.ErrorIs(t, b.Validate(), raster.ErrShapeMismatch)

	b = raster.Buffer{Shape: raster.Shape{Width: -1, Height: 0, Channels: 1}}
	require.ErrorIs(t, b.Validate(), raster.ErrShapeMismatch)
}

func TestClone_DoesNotAlias(t *testing.T) {
	b := raster.Flat([]uint8{1, 2, 3})
	c := b.Clone()
	c.Pix[0] = 9
	require.Equal(t, uint8(1), b.Pix[0])
	require.Equal(t, b.Shape, c.Shape)
}

func TestFlat(t *testing.T) {
	b := raster.Flat(make([]uint8, 1000))
	require.NoError(t, b.Validate())
	require.Equal(t, raster.Shape{Width: 1000, Height: 1, Channels: 1}, b.Shape)
}
