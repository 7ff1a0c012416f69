// Command ginflate decompresses zlib and raw DEFLATE streams.
//
// Usage:
//
//	ginflate [flags] <file>...       decompress files (use "-" for stdin)
//
// By default each input file produces a sibling output file with its
// compression suffix stripped. Multiple files are decompressed
// concurrently, one decoder session per file.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vlx-tech/zlib"
	"github.com/vlx-tech/zlib/inflate"
)

var opts struct {
	raw      bool
	stdout   bool
	output   string
	checksum bool
	jobs     int
	verbose  bool
}

func main() {
	cmd := &cobra.Command{
		Use:           "ginflate [flags] <file>...",
		Short:         "Decompress zlib or raw DEFLATE streams",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	fl := cmd.Flags()
	fl.BoolVar(&opts.raw, "raw", false, "treat input as raw DEFLATE without the zlib envelope")
	fl.BoolVarP(&opts.stdout, "stdout", "c", false, "write decompressed data to standard output")
	fl.StringVarP(&opts.output, "output", "o", "", "output path (single input only, \"-\" for stdout)")
	fl.BoolVar(&opts.checksum, "checksum", false, "log the XXH64 digest of each decompressed stream")
	fl.IntVarP(&opts.jobs, "jobs", "j", 4, "files decompressed concurrently")
	fl.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	if err := cmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if opts.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if opts.output != "" && len(args) > 1 {
		return fmt.Errorf("--output is valid with a single input, got %d", len(args))
	}
	if opts.jobs < 1 {
		opts.jobs = 1
	}

	var g errgroup.Group
	g.SetLimit(opts.jobs)
	for _, path := range args {
		path := path
		g.Go(func() error {
			if err := decompress(path); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func decompress(path string) error {
	in, err := openInput(path)
	if err != nil {
		return err
	}
	defer in.Close()

	var src io.ReadCloser
	if opts.raw {
		src = inflate.NewReader(in)
	} else {
		src, err = zlib.NewReader(in)
		if err != nil {
			return err
		}
	}
	defer src.Close()

	out, closeOut, err := openOutput(path)
	if err != nil {
		return err
	}

	digest := xxhash.New()
	w := out
	if opts.checksum {
		w = io.MultiWriter(out, digest)
	}

	n, err := io.Copy(w, src)
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	log := logrus.WithFields(logrus.Fields{"file": path, "bytes": n})
	if opts.checksum {
		log.WithField("xxh64", fmt.Sprintf("%016x", digest.Sum64())).Info("decompressed")
		return nil
	}
	log.Debug("decompressed")
	return nil
}

// openInput returns a reader for path, or stdin for "-".
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// openOutput picks the destination for an input path and returns the
// writer plus a close function (a no-op for stdout).
func openOutput(path string) (io.Writer, func() error, error) {
	dest := opts.output
	if dest == "" {
		if opts.stdout || path == "-" {
			dest = "-"
		} else {
			dest = destPath(path)
		}
	}
	if dest == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(dest)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// destPath strips a recognized compression suffix, or appends ".out"
// when there is none to strip.
func destPath(path string) string {
	for _, suffix := range []string{".zz", ".zlib", ".z"} {
		if strings.HasSuffix(path, suffix) && len(path) > len(suffix) {
			return strings.TrimSuffix(path, suffix)
		}
	}
	return path + ".out"
}
