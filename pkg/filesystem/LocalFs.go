package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goph/emperror"
)

// LocalFs maps folders to subdirectories of a base directory
type LocalFs struct {
	name string
	base string
}

func NewLocalFs(name, base string) (*LocalFs, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, emperror.Wrapf(err, "cannot get absolute path of %s", base)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, emperror.Wrapf(err, "cannot stat %s", abs)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}
	return &LocalFs{name: name, base: abs}, nil
}

func (fs *LocalFs) IsLocal() bool { return true }

func (fs *LocalFs) Protocol() string {
	return fmt.Sprintf("file://%s", fs.name)
}

func (fs *LocalFs) String() string {
	return fs.base
}

// path resolves folder/name below the base directory
func (fs *LocalFs) path(folder, name string) (string, error) {
	p := filepath.Join(fs.base, filepath.FromSlash(folder), filepath.FromSlash(name))
	if p != fs.base && !strings.HasPrefix(p, fs.base+string(filepath.Separator)) {
		return "", fmt.Errorf("%s/%s is outside of %s", folder, name, fs.name)
	}
	return p, nil
}

func (fs *LocalFs) FileStat(ctx context.Context, folder, name string) (os.FileInfo, error) {
	p, err := fs.path(folder, name)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{err: err}
		}
		return nil, emperror.Wrapf(err, "cannot get file info for %v/%v", folder, name)
	}
	if fi.IsDir() {
		return nil, &NotFoundError{err: fmt.Errorf("%v/%v is a directory", folder, name)}
	}
	return &LocalFileInfo{FileInfo: fi, path: p}, nil
}

func (fs *LocalFs) FileExists(ctx context.Context, folder, name string) (bool, error) {
	_, err := fs.FileStat(ctx, folder, name)
	if err != nil {
		if IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (fs *LocalFs) Location(ctx context.Context, folder, name string, valid time.Duration) (string, error) {
	fi, err := fs.FileStat(ctx, folder, name)
	if err != nil {
		return "", err
	}
	return "file:" + fi.(*LocalFileInfo).Path(), nil
}
