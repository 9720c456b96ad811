package probe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/goph/emperror"
	"github.com/je4/zmediainfo/pkg/mediainfo"
	"github.com/op/go-logging"
)

// Runner executes an external command and returns its output
type Runner interface {
	Run(ctx context.Context, command string, args []string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, command string, args []string) ([]byte, []byte, error) {
	var out, errb bytes.Buffer
	out.Grow(64 * 1024)
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

type FFProbe struct {
	command string
	timeout time.Duration
	runner  Runner
	log     *logging.Logger
}

func NewFFProbe(command string, timeout time.Duration, log *logging.Logger) (*FFProbe, error) {
	if command == "" {
		command = "ffprobe"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logging.MustGetLogger("probe")
	}
	ffp := &FFProbe{
		command: command,
		timeout: timeout,
		runner:  execRunner{},
		log:     log,
	}
	return ffp, nil
}

// SetRunner replaces the command execution, e.g. for tests
func (fp *FFProbe) SetRunner(r Runner) {
	fp.runner = r
}

// Probe runs ffprobe on location (file path or url)
func (fp *FFProbe) Probe(ctx context.Context, location string) (*Result, error) {
	cmdparam := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"-show_error",
		location,
	}

	ctx, cancel := context.WithTimeout(ctx, fp.timeout)
	defer cancel()

	start := time.Now()
	out, errb, err := fp.runner.Run(ctx, fp.command, cmdparam)
	fp.log.Debugf("%s %s: %v", fp.command, location, time.Since(start))

	var result Result
	// ffprobe writes the error object to stdout even with non zero exit code
	if jsonErr := json.Unmarshal(out, &result); jsonErr != nil {
		if err != nil {
			return nil, emperror.Wrapf(err, "error executing (%s %s): %s", fp.command, cmdparam, string(errb))
		}
		return nil, emperror.Wrapf(jsonErr, "cannot unmarshal ffprobe output: %s", string(out))
	}
	if result.Error != nil {
		return nil, fmt.Errorf("ffprobe error %d on %s: %s", result.Error.Code, location, result.Error.String)
	}
	if err != nil {
		return nil, emperror.Wrapf(err, "error executing (%s %s): %s", fp.command, cmdparam, string(errb))
	}
	if result.Format == nil {
		return nil, fmt.Errorf("no format information for %s", location)
	}
	return &result, nil
}

// Summary probes location and converts the result
func (fp *FFProbe) Summary(ctx context.Context, location string) (*mediainfo.ContainerSummary, error) {
	result, err := fp.Probe(ctx, location)
	if err != nil {
		return nil, err
	}
	return result.Summary(), nil
}

// LoadDecoders registers every decoder of the local ffmpeg build which is not known yet
func (fp *FFProbe) LoadDecoders(ctx context.Context, registry *mediainfo.StaticRegistry) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, fp.timeout)
	defer cancel()
	out, errb, err := fp.runner.Run(ctx, fp.command, []string{"-hide_banner", "-decoders"})
	if err != nil {
		return 0, emperror.Wrapf(err, "cannot list decoders: %s", string(errb))
	}
	names := ParseDecoderList(out)
	var count int
	for _, name := range names {
		if _, ok := registry.FindDecoder(mediainfo.CodecID(name)); ok {
			continue
		}
		registry.Register(mediainfo.CodecID(name), mediainfo.NewStaticDecoder(name, nil))
		count++
	}
	fp.log.Debugf("%d decoders found, %d new", len(names), count)
	return count, nil
}

// ParseDecoderList reads the output of "ffprobe -decoders"
//
//	V....D h264                 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10
func ParseDecoderList(out []byte) []string {
	var names []string
	started := false
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !started {
			if strings.HasPrefix(line, "------") {
				started = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 6 {
			continue
		}
		names = append(names, fields[1])
	}
	return names
}
