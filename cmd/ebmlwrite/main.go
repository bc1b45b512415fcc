// Command ebmlwrite writes a tag tree described in YAML or JSON as EBML.
//
//	ebmlwrite --out header.ebml header.yml
//	ebmlwrite --compress zstd --out tags.ebml.zst tags.json
package main

import (
	"bufio"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tooxo/ebml-iterable/ebml"
	"github.com/tooxo/ebml-iterable/internal/config"
	"github.com/tooxo/ebml-iterable/internal/logging"
	"github.com/tooxo/ebml-iterable/internal/tagdoc"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Default()
	cmd := &cobra.Command{
		Use:          "ebmlwrite [flags] <input|->",
		Short:        "Write a YAML or JSON tag tree as EBML",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Input = args[0]
			if err := cfg.Validate(); err != nil {
				return err
			}
			log, err := logging.New(cfg.LogLevel, cfg.LogJSON)
			if err != nil {
				return err
			}
			defer log.Sync()
			return run(&cfg, log, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&cfg.Output, "out", "o", cfg.Output, "output file (default stdout)")
	flags.StringVarP(&cfg.Format, "format", "f", cfg.Format, "input format: yaml|json (default from extension)")
	flags.StringVar(&cfg.Compress, "compress", cfg.Compress, "output compression: none|zstd")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	flags.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "log as JSON")
	return cmd
}

func run(cfg *config.Config, log *zap.Logger, stdin io.Reader, stdout io.Writer) error {
	in := stdin
	if cfg.Input != "-" {
		f, err := os.Open(cfg.Input)
		if err != nil {
			return errors.Wrap(err, "open input")
		}
		defer f.Close()
		in = f
	}
	doc, err := tagdoc.Parse(in, cfg.Format)
	if err != nil {
		return err
	}

	out := stdout
	if !cfg.Stdout() {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return errors.Wrap(err, "create output")
		}
		defer f.Close()
		out = f
	}
	sink, closeSink, err := newSink(out, cfg.Compress)
	if err != nil {
		return err
	}

	tw := ebml.NewTagWriter(sink, ebml.WithLogger(log))
	n, err := doc.Write(tw)
	if err != nil {
		return err
	}
	if err = tw.Close(); err != nil {
		return err
	}
	if err = closeSink(); err != nil {
		return errors.Wrap(err, "close output")
	}
	log.Info("wrote tags", zap.Int("count", n), zap.String("out", cfg.Output), zap.String("compress", cfg.Compress))
	return nil
}

// newSink wraps w in a writer the TagWriter can flush after every top-level tag.
func newSink(w io.Writer, compress string) (io.Writer, func() error, error) {
	switch compress {
	case config.CompressZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, errors.Wrap(err, "error opening zstd writer")
		}
		return enc, enc.Close, nil
	case config.CompressNone, "":
		bw := bufio.NewWriter(w)
		return bw, bw.Flush, nil
	}
	return nil, nil, errors.Errorf("unknown compression %q", compress)
}
