package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/webp"

	svg "github.com/ajstarks/svgo"
	"github.com/gen2brain/avif"
	"github.com/gen2brain/webp"
	"github.com/go-pdf/fpdf"
	"github.com/spf13/afero"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"smartcompress/logger"
)

var ErrUnsupportedFormat = errors.New("unsupported output format")

type ConvertOptions struct {
	Quality          int
	PreserveMetadata bool
}

// Converter writes src re-encoded to dst. The extension of dst selects the
// output format.
type Converter interface {
	Convert(ctx context.Context, src, dst string, opts ConvertOptions) error
}

type encodeFunc func(w io.Writer, img image.Image, quality int) error

var encoders = map[string]encodeFunc{
	"jpg":  encodeJPEG,
	"jpeg": encodeJPEG,
	"png":  encodePNG,
	"gif":  encodeGIF,
	"tif":  encodeTIFF,
	"tiff": encodeTIFF,
	"bmp":  encodeBMP,
	"webp": encodeWebP,
	"avif": encodeAVIF,
	"svg":  encodeSVG,
	"pdf":  encodePDF,
	"raw":  encodeRaw,
}

func SupportedFormats() []string {
	formats := make([]string, 0, len(encoders))
	for f := range encoders {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

func IsSupportedFormat(format string) bool {
	_, ok := encoders[strings.ToLower(format)]
	return ok
}

type ImageConverter struct {
	Fs      afero.Fs
	Console *logger.Console
}

func NewImageConverter(fs afero.Fs, console *logger.Console) *ImageConverter {
	return &ImageConverter{Fs: fs, Console: console}
}

func (c *ImageConverter) Convert(ctx context.Context, src, dst string, opts ConvertOptions) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(dst), "."))
	encode, ok := encoders[format]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	img, err := c.decode(src)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := encode(&buf, img, opts.Quality); err != nil {
		return fmt.Errorf("error encoding to %s: %w", format, err)
	}

	data := buf.Bytes()
	if opts.PreserveMetadata {
		data = c.carryMetadata(src, format, data)
	}

	tempFile, err := afero.TempFile(c.Fs, filepath.Dir(dst), "*."+format)
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if err != nil {
			_ = c.Fs.Remove(tempPath)
		}
	}()

	if _, err = tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing %s: %w", tempPath, err)
	}
	if err = tempFile.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", tempPath, err)
	}

	if err = c.Fs.Rename(tempPath, dst); err != nil {
		return fmt.Errorf("error renaming file: %w", err)
	}

	return nil
}

func (c *ImageConverter) decode(path string) (image.Image, error) {
	f, err := c.Fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}
	return img, nil
}

func (c *ImageConverter) carryMetadata(src, format string, encoded []byte) []byte {
	write, ok := exifWriters[format]
	if !ok {
		c.Console.Warn("Metadata of %s not kept: %s output cannot carry EXIF", filepath.Base(src), format)
		return encoded
	}

	exifData, err := readExif(c.Fs, src)
	if err != nil {
		c.Console.Debug("metadata of %s not kept: %v", filepath.Base(src), err)
		return encoded
	}

	out, err := write(encoded, exifData)
	if err != nil {
		c.Console.Warn("Could not keep metadata of %s: %v", filepath.Base(src), err)
		return encoded
	}
	return out
}

func encodeJPEG(w io.Writer, img image.Image, quality int) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
}

func encodePNG(w io.Writer, img image.Image, quality int) error {
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if quality < defaultQuality {
		enc.CompressionLevel = png.BestCompression
	}
	return enc.Encode(w, img)
}

func encodeGIF(w io.Writer, img image.Image, _ int) error {
	return gif.Encode(w, img, &gif.Options{NumColors: 256})
}

func encodeTIFF(w io.Writer, img image.Image, quality int) error {
	opts := &tiff.Options{Compression: tiff.Uncompressed}
	if quality < defaultQuality {
		opts.Compression = tiff.Deflate
	}
	return tiff.Encode(w, img, opts)
}

func encodeBMP(w io.Writer, img image.Image, _ int) error {
	return bmp.Encode(w, img)
}

func encodeWebP(w io.Writer, img image.Image, quality int) error {
	return webp.Encode(w, img, webp.Options{
		Quality:  quality,
		Lossless: quality >= defaultQuality,
		Method:   4,
	})
}

func encodeAVIF(w io.Writer, img image.Image, quality int) error {
	return avif.Encode(w, img, avif.Options{
		Quality:           quality,
		QualityAlpha:      quality,
		Speed:             6,
		ChromaSubsampling: image.YCbCrSubsampleRatio420,
	})
}

// encodeSVG embeds a PNG rendition of the image in an SVG document.
func encodeSVG(w io.Writer, img image.Image, quality int) error {
	var buf bytes.Buffer
	if err := encodePNG(&buf, img, quality); err != nil {
		return err
	}

	b := img.Bounds()
	canvas := svg.New(w)
	canvas.Start(b.Dx(), b.Dy())
	canvas.Image(0, 0, b.Dx(), b.Dy(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString(buf.Bytes()))
	canvas.End()
	return nil
}

// encodePDF writes a single page sized to the image, one point per pixel.
func encodePDF(w io.Writer, img image.Image, quality int) error {
	var buf bytes.Buffer
	if err := encodeJPEG(&buf, img, quality); err != nil {
		return err
	}

	b := img.Bounds()
	width, height := float64(b.Dx()), float64(b.Dy())

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader("page", opts, &buf)
	pdf.ImageOptions("page", 0, 0, width, height, false, opts, 0, "")

	return pdf.Output(w)
}

// encodeRaw writes the pixels as 8-bit non-premultiplied RGBA rows.
func encodeRaw(w io.Writer, img image.Image, _ int) error {
	b := img.Bounds()
	rgba, ok := img.(*image.NRGBA)
	if !ok || rgba.Stride != 4*b.Dx() {
		rgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix[:4*b.Dx()*b.Dy()])
	return err
}
