package filesystem

import (
	"context"
	"os"
	"time"
)

// FileSystem gives ffprobe access to media objects in buckets (s3) or folders (local)
type FileSystem interface {
	String() string
	Protocol() string
	IsLocal() bool
	FileStat(ctx context.Context, folder, name string) (os.FileInfo, error)
	FileExists(ctx context.Context, folder, name string) (bool, error)
	// Location returns something ffprobe can open: a "file:" path or a GET url valid for the given time
	Location(ctx context.Context, folder, name string, valid time.Duration) (string, error)
}

type NotFoundError struct {
	err error
}

func (nf *NotFoundError) Error() string {
	return nf.err.Error()
}

func (nf *NotFoundError) Unwrap() error {
	return nf.err
}

func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	for ; err != nil; err = unwrap(err) {
		if _, ok := err.(*NotFoundError); ok {
			return true
		}
	}
	return false
}

func unwrap(err error) error {
	switch e := err.(type) {
	case interface{ Unwrap() error }:
		return e.Unwrap()
	case interface{ Cause() error }:
		return e.Cause()
	}
	return nil
}
