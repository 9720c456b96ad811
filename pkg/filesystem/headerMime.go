package filesystem

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/goph/emperror"
)

// sniffLen is the number of bytes http.DetectContentType considers
const sniffLen = 512

// HeaderMime keeps the first bytes written to it and discards the rest
type HeaderMime struct {
	buffer bytes.Buffer
	size   int
	pos    int
}

func NewHeaderMime(size int) *HeaderMime {
	if size <= 0 {
		size = sniffLen
	}
	return &HeaderMime{size: size}
}

func (hm *HeaderMime) Write(p []byte) (int, error) {
	if hm.size <= hm.pos {
		return len(p), nil
	}
	l := hm.size - hm.pos
	if len(p) < l {
		l = len(p)
	}
	n, err := hm.buffer.Write(p[0:l])
	if err != nil {
		return 0, emperror.Wrapf(err, "cannot write %v bytes", l)
	}
	hm.pos += n
	return len(p), nil
}

func (hm *HeaderMime) Full() bool {
	return hm.pos >= hm.size
}

func (hm *HeaderMime) GetMime() string {
	return http.DetectContentType(hm.buffer.Bytes())
}

// DetectContentType sniffs the mime type from the header of r
func DetectContentType(r io.Reader) (string, error) {
	hm := NewHeaderMime(sniffLen)
	if _, err := io.CopyN(hm, r, sniffLen); err != nil && err != io.EOF {
		return "", emperror.Wrap(err, "cannot read header")
	}
	return hm.GetMime(), nil
}

// LocalFileInfo is the os.FileInfo of a LocalFs file, its content type is sniffed on first use
type LocalFileInfo struct {
	os.FileInfo
	path        string
	once        sync.Once
	contentType string
}

func (lfi *LocalFileInfo) Path() string {
	return lfi.path
}

func (lfi *LocalFileInfo) ContentType() string {
	lfi.once.Do(func() {
		f, err := os.Open(lfi.path)
		if err != nil {
			return
		}
		defer f.Close()
		lfi.contentType, _ = DetectContentType(f)
	})
	return lfi.contentType
}
