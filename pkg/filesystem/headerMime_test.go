package filesystem

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderMime(t *testing.T) {
	hm := NewHeaderMime(4)
	n, err := hm.Write([]byte("RI"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, hm.Full())
	n, err = hm.Write([]byte("FFxxxxxxxx"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.True(t, hm.Full())
	assert.Equal(t, "RIFF", hm.buffer.String())
}

func TestDetectContentType(t *testing.T) {
	wav := append([]byte("RIFF\x24\x08\x00\x00WAVEfmt "), bytes.Repeat([]byte{0}, 2048)...)
	mt, err := DetectContentType(bytes.NewReader(wav))
	require.NoError(t, err)
	assert.Equal(t, "audio/wave", mt)

	mt, err = DetectContentType(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", mt)
}

func TestLocalFileInfoContentType(t *testing.T) {
	fs, dir := newTestFs(t)
	wav := append([]byte("RIFF\x24\x08\x00\x00WAVEfmt "), bytes.Repeat([]byte{0}, 64)...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "videos", "tone.bin"), wav, 0644))

	fi, err := fs.FileStat(context.Background(), "videos", "tone.bin")
	require.NoError(t, err)
	lfi, ok := fi.(*LocalFileInfo)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "videos", "tone.bin"), lfi.Path())
	assert.Equal(t, "audio/wave", lfi.ContentType())

	fi, err = fs.FileStat(context.Background(), "videos", "clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", fi.(*LocalFileInfo).ContentType())
}
