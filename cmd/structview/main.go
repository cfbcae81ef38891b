// Command structview decodes a binary struct with a layout taken from a
// YAML or HCL definition document and prints its fields.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rawbytedev/cstruct"
	"github.com/rawbytedev/cstruct/catalog"
	"github.com/rawbytedev/cstruct/frame"
	"go.uber.org/zap"
)

type options struct {
	def     string
	name    string
	in      string
	framed  bool
	big     bool
	offset  int
	verbose bool
}

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func parse(args []string, errW io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("structview", flag.ContinueOnError)
	fs.SetOutput(errW)
	fs.StringVar(&o.def, "def", "", "definition document (.yaml, .yml or .hcl)")
	fs.StringVar(&o.name, "struct", "", "struct to decode")
	fs.StringVar(&o.in, "in", "", "input file, - for stdin")
	fs.BoolVar(&o.framed, "frame", false, "input is a frame envelope")
	fs.BoolVar(&o.big, "big", false, "big-endian fields")
	fs.IntVar(&o.offset, "offset", 0, "base offset into the input")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return o, errUsage
	}
	if o.def == "" || o.name == "" || o.in == "" {
		fs.Usage()
		return o, errUsage
	}
	if o.offset < 0 {
		return o, fmt.Errorf("negative offset %d", o.offset)
	}
	return o, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(outW, errW io.Writer, args []string) error {
	o, err := parse(args, errW)
	if err != nil {
		return err
	}
	log, err := newLogger(o.verbose)
	if err != nil {
		return err
	}
	defer log.Sync()
	cstruct.SetLogger(log)

	if err := view(outW, o); err != nil {
		log.Error("decode failed", zap.String("struct", o.name), zap.Error(err))
		return err
	}
	return nil
}

func view(w io.Writer, o options) error {
	cat, err := catalog.LoadFile(o.def)
	if err != nil {
		return err
	}
	data, err := readInput(o.in)
	if err != nil {
		return err
	}

	var s *cstruct.Struct
	if o.framed {
		if s, err = cat.New(o.name); err != nil {
			return err
		}
		codec, err := frame.NewCodec()
		if err != nil {
			return err
		}
		defer codec.Close()
		if err := codec.DecodeInto(s, data); err != nil {
			return err
		}
	} else {
		opts := []cstruct.Option{cstruct.WithView(data), cstruct.WithOffset(o.offset)}
		if o.big {
			opts = append(opts, cstruct.WithBigEndian())
		}
		if s, err = cat.New(o.name, opts...); err != nil {
			return err
		}
	}

	props, err := s.Prop()
	if err != nil {
		return err
	}
	for _, e := range props {
		fmt.Fprintf(w, "%s = %s\n", e.Name, e.Value)
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
