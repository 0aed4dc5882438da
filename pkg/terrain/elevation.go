package terrain

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

const (
	// ETOPO1 grid (cell-registered: 10801 rows × 21601 cols, 1 arc-minute)
	etopo1Rows = 10801
	etopo1Cols = 21601
	etopo1Size = etopo1Rows * etopo1Cols * 2 // 16-bit signed integers
)

// ElevationGetter defines the retrieval of terrain elevation at one point.
type ElevationGetter interface {
	GetElevation(lat, lon float64) (int16, error)
}

// ElevationProvider reads elevation data from a row-major grid of little
// endian int16 values covering the globe, north to south and west to east.
type ElevationProvider struct {
	r      io.ReaderAt
	closer io.Closer
	rows   int
	cols   int
	perDeg float64
}

// NewElevationProvider opens the ETOPO1 binary file.
func NewElevationProvider(path string) (*ElevationProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	if info.Size() != int64(etopo1Size) {
		f.Close()
		return nil, fmt.Errorf("invalid ETOPO1 file size: expected %d, got %d", etopo1Size, info.Size())
	}

	p := newGridProvider(f, etopo1Rows, etopo1Cols)
	p.closer = f
	return p, nil
}

// newGridProvider wraps an arbitrary global grid. rows must be an odd number
// so the grid includes both poles; the resolution follows from the row count.
func newGridProvider(r io.ReaderAt, rows, cols int) *ElevationProvider {
	return &ElevationProvider{
		r:      r,
		rows:   rows,
		cols:   cols,
		perDeg: float64(rows-1) / 180.0,
	}
}

// Close closes the file handle.
func (e *ElevationProvider) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// GetElevation returns the elevation in meters at the given lat/lon, using
// the nearest grid cell.
func (e *ElevationProvider) GetElevation(lat, lon float64) (int16, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat > 90 || lat < -90 || lon > 180 || lon < -180 {
		return 0, fmt.Errorf("coordinates out of bounds: %f, %f", lat, lon)
	}

	row := int(math.Round((90.0 - lat) * e.perDeg))
	col := int(math.Round((lon + 180.0) * e.perDeg))

	row = min(max(row, 0), e.rows-1)
	if col >= e.cols {
		col %= e.cols
	}

	offset := int64(row*e.cols+col) * 2

	b := make([]byte, 2)
	if _, err := e.r.ReadAt(b, offset); err != nil {
		return 0, err
	}

	return int16(binary.LittleEndian.Uint16(b)), nil
}
