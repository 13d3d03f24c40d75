package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/gift"
	"github.com/tmpim/netpbm"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// target is either a Netpbm format or one of the foreign formats below.
type target struct {
	format  netpbm.Format
	foreign string
}

var foreignFormats = map[string]string{
	"png":  ".png",
	"bmp":  ".bmp",
	"tiff": ".tiff",
}

func parseTarget(s string) (target, error) {
	if _, ok := foreignFormats[strings.ToLower(s)]; ok {
		return target{foreign: strings.ToLower(s)}, nil
	}

	f, err := netpbm.ParseFormat(strings.ToUpper(s))
	if err != nil {
		return target{}, err
	}
	return target{format: f}, nil
}

func (t target) extension() string {
	if t.foreign != "" {
		return foreignFormats[t.foreign]
	}
	return t.format.Extension()
}

// options configure a conversion.
type options struct {
	target   target
	maxValue int
	order    binary.ByteOrder
	outDir   string
}

func parseOrder(s string) (binary.ByteOrder, error) {
	switch s {
	case "little":
		return binary.LittleEndian, nil
	case "big":
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("byte order must be little or big, not %q", s)
}

// parseSize parses a size of the form "640x480".
func parseSize(s string) (int, int, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("size %q is not of the form WxH", s)
	}

	w, err := strconv.Atoi(parts[0])
	if err != nil || w < 0 {
		return 0, 0, fmt.Errorf("bad width in %q", s)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil || h < 0 {
		return 0, 0, fmt.Errorf("bad height in %q", s)
	}

	return w, h, nil
}

// source is a decoded input. maxValue is 0 unless the input was a Netpbm
// file with a max value.
type source struct {
	pix      *netpbm.Pixmap
	maxValue int
}

// readSource decodes a Netpbm file, or any image format registered with the
// image package.
func readSource(path string) (source, error) {
	f, err := os.Open(path)
	if err != nil {
		return source{}, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	magic, _ := br.Peek(2)
	if _, err := netpbm.ParseFormat(string(magic)); err == nil {
		img, err := netpbm.Decode(br)
		if err != nil {
			return source{}, err
		}

		src := source{pix: img.Pixmap()}
		if img.Format().HasMaxValue() {
			src.maxValue = img.MaxValue()
		}
		return src, nil
	}

	img, _, err := image.Decode(br)
	if err != nil {
		return source{}, err
	}

	return source{pix: netpbm.FromImage(toNRGBA(img))}, nil
}

// toNRGBA copies img into a non-premultiplied image with its origin at (0,0).
func toNRGBA(img image.Image) *image.NRGBA {
	g := gift.New()
	g.SetParallelization(true)

	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

func writeTarget(path string, src source, opts options) error {
	if opts.target.foreign == "" {
		img := netpbm.NewImage(0, 0, opts.target.format)
		img.SetPixmap(src.pix)
		switch {
		case opts.maxValue != 0:
			img.SetMaxValue(opts.maxValue)
		case src.maxValue != 0:
			img.SetMaxValue(src.maxValue)
		}
		img.SetByteOrder(opts.order)
		return img.Save(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch opts.target.foreign {
	case "png":
		err = png.Encode(f, src.pix)
	case "bmp":
		err = bmp.Encode(f, src.pix)
	case "tiff":
		err = tiff.Encode(f, src.pix, nil)
	default:
		err = errors.New("unknown output format " + opts.target.foreign)
	}

	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// outputPath places the converted file in outDir, or next to the input when
// outDir is empty.
func outputPath(input string, opts options) string {
	dir := opts.outDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, base+opts.target.extension())
}

func convertFile(input string, opts options) (string, error) {
	src, err := readSource(input)
	if err != nil {
		return "", fmt.Errorf("%s: %w", input, err)
	}

	out := outputPath(input, opts)
	if out == input {
		return "", fmt.Errorf("%s: refusing to overwrite the input", input)
	}

	if err := writeTarget(out, src, opts); err != nil {
		return "", fmt.Errorf("%s: %w", out, err)
	}
	return out, nil
}

// convertAll converts the inputs with at most jobs conversions in flight.
// Each conversion owns its images. The first failure cancels the conversions
// that have not started yet.
func convertAll(ctx context.Context, inputs []string, opts options, jobs int,
	done func(input, output string)) error {
	if jobs < 1 {
		jobs = 1
	}

	sem := semaphore.NewWeighted(int64(jobs))
	g, ctx := errgroup.WithContext(ctx)

	for _, input := range inputs {
		input := input
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}

		g.Go(func() error {
			defer sem.Release(1)

			out, err := convertFile(input, opts)
			if err != nil {
				return err
			}
			done(input, out)
			return nil
		})
	}

	return g.Wait()
}

// writeBlank creates a new filled image at path.
func writeBlank(path string, width, height int, fill netpbm.Color, opts options) error {
	return writeTarget(path, source{pix: netpbm.NewPixmap(width, height, fill)}, opts)
}
