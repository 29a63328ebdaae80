package main

/*
stretch-tool converts sparse positional vectors between the stretchio binary
format, bedGraph text, and a plain position/value TSV dump.
*/

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/stretch"
	"github.com/grailbio/stretch/encoding/bedgraph"
	"github.com/grailbio/stretch/encoding/stretchio"
)

var (
	in      = flag.String("in", "", "Input path (required)")
	out     = flag.String("out", "", "Output path (required)")
	from    = flag.String("from", "stretchio", "Input format; 'stretchio' and 'bedgraph' supported")
	to      = flag.String("to", "stretchio", "Output format; 'stretchio', 'bedgraph', and 'dense-tsv' supported")
	chrom   = flag.String("chrom", "chr1", "Chromosome label for bedGraph input/output")
	numRuns = flag.Bool("print-runs", false, "Log the run count and bounds of the loaded vector")
)

func stretchToolUsage() {
	fmt.Printf("Usage: %s -in PATH -out PATH [OPTIONS]\n", os.Args[0])
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
}

func writeDenseTSV(path string, v *stretch.Vector) (err error) {
	ctx := vcontext.Background()
	dst, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, dst, &err)
	w := dst.Writer(ctx)
	for i := 0; i < v.NumRuns(); i++ {
		iv, buf := v.Run(i)
		for j := 0; j < buf.Len(); j++ {
			if _, err = fmt.Fprintf(w, "%d\t%v\n", iv.Start+stretch.PosType(j), buf.At(j)); err != nil {
				return err
			}
		}
	}
	return nil
}

func main() {
	flag.Usage = stretchToolUsage
	shutdown := grail.Init()
	defer shutdown()

	if *in == "" || *out == "" {
		log.Fatalf("Both -in and -out are required; see -help")
	}

	var v *stretch.Vector
	var err error
	switch *from {
	case "stretchio":
		v, err = stretchio.ReadFile(*in)
	case "bedgraph":
		v, err = bedgraph.ReadFile(*in, *chrom)
	default:
		log.Fatalf("Unsupported -from format %q", *from)
	}
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *in, err)
	}
	if *numRuns {
		if bounds, ok := v.Bounds(); ok {
			log.Printf("%s: %d run(s) spanning %v", *in, v.NumRuns(), bounds)
		} else {
			log.Printf("%s: empty vector", *in)
		}
	}

	switch *to {
	case "stretchio":
		err = stretchio.WriteFile(*out, v)
	case "bedgraph":
		err = bedgraph.WriteFile(*out, v, *chrom)
	case "dense-tsv":
		err = writeDenseTSV(*out, v)
	default:
		log.Fatalf("Unsupported -to format %q", *to)
	}
	if err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	log.Debug.Printf("exiting")
}
