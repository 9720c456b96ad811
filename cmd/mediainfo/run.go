package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/goph/emperror"
	"github.com/je4/zmediainfo/pkg/mediainfo"
	"go.uber.org/multierr"
)

type options struct {
	ffprobe      string
	timeout      time.Duration
	verbose      bool
	json         bool
	loadDecoders bool
	loglevel     string
}

type summarizer interface {
	Summary(ctx context.Context, location string) (*mediainfo.ContainerSummary, error)
}

type fileReport struct {
	File     string           `json:"file"`
	Metadata *mediainfo.Table `json:"metadata"`
}

// location turns local paths into "file:" urls, ffprobe would treat "a:b.mp4" as protocol a
func location(name string) string {
	if strings.Contains(name, "://") || strings.HasPrefix(name, "file:") {
		return name
	}
	if abs, err := filepath.Abs(name); err == nil {
		name = abs
	}
	return "file:" + name
}

// run reports every file, failures do not stop the remaining files
func run(ctx context.Context, s summarizer, assembler *mediainfo.Assembler, files []string, opts options, out io.Writer) error {
	var errs error
	var reports []fileReport
	for _, name := range files {
		cs, err := s.Summary(ctx, location(name))
		if err != nil {
			errs = multierr.Append(errs, emperror.Wrapf(err, "%s", name))
			continue
		}
		table := assembler.Assemble(cs)
		if opts.json {
			reports = append(reports, fileReport{File: name, Metadata: table})
			continue
		}
		if len(files) > 1 {
			fmt.Fprintf(out, "%s\r\n", name)
		}
		fmt.Fprint(out, mediainfo.NewReport(table, opts.verbose).Text())
		if len(files) > 1 {
			fmt.Fprint(out, "\r\n")
		}
	}
	if opts.json && len(reports) > 0 {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			errs = multierr.Append(errs, emperror.Wrap(err, "cannot encode json"))
		}
	}
	return errs
}
