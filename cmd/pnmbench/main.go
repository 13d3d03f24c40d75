package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/tmpim/netpbm"
)

var (
	size    = flag.Int("size", 512, "set the width and height of the test image")
	workers = flag.Int("w", 8, "set the number of workers")
	rounds  = flag.Int("n", 20, "set the encode/decode rounds per worker and format")
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	if *size < 1 || *workers < 1 || *rounds < 1 {
		log.Println("size, workers and rounds must be positive")
		os.Exit(1)
	}

	for _, f := range netpbm.Formats() {
		elapsed, n, err := bench(f)
		if err != nil {
			log.Println("Benchmark failed:", err)
			os.Exit(1)
		}
		fmt.Printf("%s: %d bytes, %v per round trip\n", f, n, elapsed/time.Duration(*workers*(*rounds)))
	}
}

// bench runs the round trips for one format. Every worker encodes and
// decodes its own copy of the image.
func bench(f netpbm.Format) (time.Duration, int, error) {
	wg := new(sync.WaitGroup)
	errs := make(chan error, *workers)
	var encoded int

	start := time.Now()
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(first bool) {
			defer wg.Done()

			img := gradient(f)
			dec := netpbm.NewImage(0, 0, f)
			buf := new(bytes.Buffer)
			for i := 0; i < *rounds; i++ {
				buf.Reset()
				if err := img.Encode(buf); err != nil {
					errs <- err
					return
				}
				if err := dec.Decode(bytes.NewReader(buf.Bytes())); err != nil {
					errs <- err
					return
				}
			}
			if first {
				encoded = buf.Len()
			}
		}(w == 0)
	}
	wg.Wait()
	elapsed := time.Since(start)

	select {
	case err := <-errs:
		return 0, 0, fmt.Errorf("%s: %w", f, err)
	default:
	}
	return elapsed, encoded, nil
}

func gradient(f netpbm.Format) *netpbm.Image {
	img := netpbm.NewImage(*size, *size, f)
	for y := 0; y < *size; y++ {
		for x := 0; x < *size; x++ {
			img.Set(x, y, netpbm.RGB(x*255 / *size, y*255 / *size, (x+y)*255/(2*(*size))))
		}
	}
	return img
}
