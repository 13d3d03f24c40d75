package main

import (
	"context"
	"flag"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/tmpim/netpbm"
)

var (
	formatFlag = flag.String("f", "P6", "set the output format (P1-P6, PF, png, bmp or tiff)")
	outDir     = flag.String("o", "", "set the output directory (default: next to each input)")
	maxValue   = flag.Int("max", 0, "set the max sample value (default: keep the input's, or 255)")
	order      = flag.String("order", "little", "set the PF byte order (little or big)")
	jobs       = flag.Int("j", runtime.NumCPU(), "set the number of parallel conversions")
	blank      = flag.String("blank", "", "create a blank WxH image named by the first argument instead of converting")
	fill       = flag.String("fill", "#000000", "set the fill color of -blank images")
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	if flag.NArg() == 0 {
		log.Println("Usage: pnmconv [options] input...")
		log.Println("")
		log.Println("pnmconv converts images between the Netpbm formats (PBM, PGM, PPM and PFM),")
		log.Println("PNG, BMP and TIFF. JPEG and GIF are accepted as input.")
		log.Println("")
		log.Println("Options:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	t, err := parseTarget(*formatFlag)
	if err != nil {
		log.Println("Invalid output format:", err)
		os.Exit(1)
	}

	byteOrder, err := parseOrder(*order)
	if err != nil {
		log.Println("Invalid byte order:", err)
		os.Exit(1)
	}

	if *maxValue < 0 {
		log.Println("Max value cannot be negative.")
		os.Exit(1)
	}

	opts := options{
		target:   t,
		maxValue: *maxValue,
		order:    byteOrder,
		outDir:   *outDir,
	}

	if *blank != "" {
		width, height, err := parseSize(*blank)
		if err != nil {
			log.Println("Invalid size:", err)
			os.Exit(1)
		}

		color, err := netpbm.ParseColor(*fill)
		if err != nil {
			log.Println("Invalid fill color:", err)
			os.Exit(1)
		}

		if err := writeBlank(flag.Arg(0), width, height, color, opts); err != nil {
			log.Println("Failed to write image:", err)
			os.Exit(1)
		}
		return
	}

	start := time.Now()

	err = convertAll(context.Background(), flag.Args(), opts, *jobs, func(input, output string) {
		log.Printf("%s -> %s", input, output)
	})
	if err != nil {
		log.Println("Failed to convert:", err)
		os.Exit(1)
	}

	log.Println("Done! That took " + time.Since(start).String() + ".")
}
