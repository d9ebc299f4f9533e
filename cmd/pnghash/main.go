// Command pnghash prints the block mean value hash of PNG and APNG files.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"

	"github.com/fumiama/imgsz"

	"github.com/gen2brain/pngn"
	"github.com/gen2brain/pngn/blockhash"
)

var (
	bits    = flag.Int("bits", 16, "hash size, `n`*n bits")
	method  = flag.Int("method", blockhash.MethodPrecise, "hashing method, 1 (even) or 2 (precise)")
	strict  = flag.Bool("strict", false, "treat reconstruction warnings as errors")
	frames  = flag.Bool("frames", false, "print one hash per APNG frame")
	workers = flag.Int("workers", runtime.NumCPU(), "number of files decoded in parallel")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: pnghash [-bits 16] [-method 2] [-strict] [-frames] [-workers N] file...\n\nOptions:\n")
	flag.PrintDefaults()
}

// pngSignature starts every PNG and APNG file.
const pngSignature = "\x89PNG\r\n\x1a\n"

// result is the output for one file.
type result struct {
	lines []string
	err   error
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("pnghash: ")

	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	files := flag.Args()
	results := make([]result, len(files))
	opts := &pngn.Options{Strict: *strict}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < max(*workers, 1); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				lines, err := hashFile(files[i], opts)
				results[i] = result{lines: lines, err: err}
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	failed := false
	for i, r := range results {
		if r.err != nil {
			log.Printf("%s: %v", files[i], r.err)
			failed = true

			continue
		}

		for _, line := range r.lines {
			fmt.Println(line)
		}
	}

	if failed {
		os.Exit(1)
	}
}

// hashFile decodes one file and returns its output lines.
func hashFile(name string, opts *pngn.Options) ([]string, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	if !bytes.HasPrefix(data, []byte(pngSignature)) {
		_, format, err := imgsz.DecodeSize(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("unknown image format: %w", err)
		}

		return nil, fmt.Errorf("%s image, want png", format)
	}

	d, err := pngn.NewDecoder(data, opts)
	if err != nil {
		return nil, err
	}

	// The size check verifies chunk CRCs, which decoding does not.
	size, _, err := imgsz.DecodeSize(bytes.NewReader(data))
	switch {
	case err != nil:
		log.Printf("%s: size check: %v", name, err)
	case d.Header.Width != size.Width || d.Header.Height != size.Height:
		log.Printf("%s: header is %dx%d, sniffed %dx%d", name, d.Header.Width, d.Header.Height, size.Width, size.Height)
	}

	var rasters []*pngn.Raster
	if *frames && d.Animation != nil {
		rasters, err = d.DecodeFrames()
	} else {
		var r *pngn.Raster
		r, err = d.DecodePixels()
		if err == nil && r.Empty() && d.Animation != nil && len(d.Animation.Frames) > 0 {
			r, err = d.DecodeFrame(0)
		}
		rasters = []*pngn.Raster{r}
	}
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(rasters))
	for i, r := range rasters {
		for _, w := range r.Warnings {
			log.Printf("%s: warning: %v", name, w)
		}

		h, err := blockhash.Compute(r.NRGBA(), *bits, *method)
		if err != nil {
			return nil, err
		}

		if len(rasters) > 1 {
			lines = append(lines, fmt.Sprintf("%s  %s#%d", h, name, i))
		} else {
			lines = append(lines, fmt.Sprintf("%s  %s", h, name))
		}
	}

	return lines, nil
}
