package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/afero"
)

var ErrNoMetadata = errors.New("no EXIF metadata")

var exifHeader = []byte("Exif\x00\x00")

const (
	markerPrefix = 0xFF
	markerSOI    = 0xD8
	markerAPP1   = 0xE1
	maxSegment   = 0xFFFF
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// exifWriters lists the output formats whose encoded stream can take an EXIF
// block back.
var exifWriters = map[string]func(encoded, raw []byte) ([]byte, error){
	"jpg":  insertExif,
	"jpeg": insertExif,
	"png":  insertPNGExif,
}

// readExif returns the TIFF-structured EXIF block of a JPEG or TIFF file.
func readExif(fs afero.Fs, path string) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoMetadata, err)
	}
	if len(x.Raw) == 0 {
		return nil, ErrNoMetadata
	}
	return x.Raw, nil
}

// insertExif places an APP1 segment holding raw right after the SOI marker
// of an encoded JPEG stream. Go's encoder never writes one itself.
func insertExif(jpegData, raw []byte) ([]byte, error) {
	if len(jpegData) < 2 || jpegData[0] != markerPrefix || jpegData[1] != markerSOI {
		return nil, errors.New("not a JPEG stream")
	}

	length := len(exifHeader) + len(raw) + 2
	if length > maxSegment {
		return nil, fmt.Errorf("EXIF block of %d bytes exceeds a JPEG segment", len(raw))
	}

	var out bytes.Buffer
	out.Grow(len(jpegData) + length + 2)
	out.Write(jpegData[:2])
	out.Write([]byte{markerPrefix, markerAPP1, byte(length >> 8), byte(length)})
	out.Write(exifHeader)
	out.Write(raw)
	out.Write(jpegData[2:])
	return out.Bytes(), nil
}

// insertPNGExif adds an eXIf chunk right after IHDR, which must be the first
// chunk of the stream.
func insertPNGExif(pngData, raw []byte) ([]byte, error) {
	const ihdrEnd = 8 + 4 + 4 + 13 + 4
	if len(pngData) < ihdrEnd || !bytes.Equal(pngData[:8], pngSignature) || string(pngData[12:16]) != "IHDR" {
		return nil, errors.New("not a PNG stream")
	}

	var chunk bytes.Buffer
	chunk.Grow(len(raw) + 12)
	binary.Write(&chunk, binary.BigEndian, uint32(len(raw)))
	chunk.WriteString("eXIf")
	chunk.Write(raw)
	binary.Write(&chunk, binary.BigEndian, crc32.ChecksumIEEE(chunk.Bytes()[4:]))

	var out bytes.Buffer
	out.Grow(len(pngData) + chunk.Len())
	out.Write(pngData[:ihdrEnd])
	out.Write(chunk.Bytes())
	out.Write(pngData[ihdrEnd:])
	return out.Bytes(), nil
}
