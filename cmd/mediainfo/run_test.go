package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/je4/zmediainfo/pkg/mediainfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type mapSummarizer map[string]*mediainfo.ContainerSummary

func (ms mapSummarizer) Summary(ctx context.Context, location string) (*mediainfo.ContainerSummary, error) {
	cs, ok := ms[location]
	if !ok {
		return nil, errors.New("No such file or directory")
	}
	return cs, nil
}

func wavSummary() *mediainfo.ContainerSummary {
	cs := mediainfo.NewContainerSummary("wav")
	cs.Duration = 2 * mediainfo.TimeBase
	cs.Streams = []*mediainfo.StreamDescriptor{
		{Kind: mediainfo.KindAudio, CodecID: "pcm_s16le", SampleRate: 44100, Channels: 2, BitsPerSample: 16},
	}
	return cs
}

func TestLocation(t *testing.T) {
	assert.Equal(t, "https://example.org/a.mp4", location("https://example.org/a.mp4"))
	assert.Equal(t, "file:/tmp/a:b.mp4", location("file:/tmp/a:b.mp4"))
	abs, err := filepath.Abs("a.mp4")
	require.NoError(t, err)
	assert.Equal(t, "file:"+abs, location("a.mp4"))
}

func TestRunText(t *testing.T) {
	s := mapSummarizer{location("/media/tone.wav"): wavSummary()}
	var out bytes.Buffer
	err := run(context.Background(), s, mediainfo.NewAssembler(nil, nil, nil, nil), []string{"/media/tone.wav"}, options{}, &out)
	require.NoError(t, err)
	text := out.String()
	assert.True(t, strings.HasPrefix(text, "duration     : 00:00:02.00 \r\n"), text)
	assert.Contains(t, text, "mimetype     : audio/x-wav \r\n")
	assert.Contains(t, text, "audio_bitrate: 1411 kb/s \r\n")
	assert.NotContains(t, text, "/media/tone.wav")
}

func TestRunMultipleFilesWithErrors(t *testing.T) {
	s := mapSummarizer{location("/media/tone.wav"): wavSummary()}
	var out bytes.Buffer
	err := run(context.Background(), s, mediainfo.NewAssembler(nil, nil, nil, nil),
		[]string{"/media/missing1.mp4", "/media/tone.wav", "/media/missing2.mp4"}, options{verbose: true}, &out)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), "/media/missing1.mp4")

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "/media/tone.wav\r\n"), text)
	assert.Contains(t, text, "video_codec  : N/A \r\n")
}

func TestRunJSON(t *testing.T) {
	s := mapSummarizer{location("/media/tone.wav"): wavSummary()}
	var out bytes.Buffer
	err := run(context.Background(), s, mediainfo.NewAssembler(nil, nil, nil, nil), []string{"/media/tone.wav"}, options{json: true}, &out)
	require.NoError(t, err)
	var result []struct {
		File     string            `json:"file"`
		Metadata map[string]string `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	require.Len(t, result, 1)
	assert.Equal(t, "/media/tone.wav", result[0].File)
	assert.Equal(t, "44100 Hz", result[0].Metadata["sample_rate"])
	assert.Equal(t, "True", result[0].Metadata["has_audio"])
}
