package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/je4/zmediainfo/pkg/mediainfo"
	"github.com/je4/zmediainfo/pkg/mediaserver"
	"github.com/je4/zmediainfo/pkg/probe"
	"github.com/spf13/cobra"
)

var opts = options{}

var rootCmd = &cobra.Command{
	Use:           "mediainfo [options] <file> [file...]",
	Short:         "Print descriptive metadata of media files.",
	Long:          "Print duration, bitrate, mime type, codecs and tags of media files or urls using ffprobe.",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, _ := mediaserver.CreateLogger("mediainfo", "", opts.loglevel)
		ffp, err := probe.NewFFProbe(opts.ffprobe, opts.timeout, log)
		if err != nil {
			return err
		}
		registry := mediainfo.DefaultRegistry()
		if opts.loadDecoders {
			if _, err := ffp.LoadDecoders(cmd.Context(), registry); err != nil {
				log.Warningf("cannot load decoder list: %v", err)
			}
		}
		assembler := mediainfo.NewAssembler(nil, registry, nil, log)
		return run(cmd.Context(), ffp, assembler, args, opts, cmd.OutOrStdout())
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&opts.ffprobe, "ffprobe", "ffprobe", "path of the ffprobe executable")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "maximum runtime of ffprobe per file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print all fields, even if not available")
	flags.BoolVar(&opts.json, "json", false, "print json instead of text")
	flags.BoolVar(&opts.loadDecoders, "load-decoders", false, "ask ffprobe for its decoder list")
	flags.StringVar(&opts.loglevel, "loglevel", "WARNING", "CRITICAL, ERROR, WARNING, NOTICE, INFO or DEBUG")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "json")
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
