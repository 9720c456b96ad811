package filesystem

import (
	"os"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
)

type S3FileInfo struct {
	folder string
	name   string
	info   minio.ObjectInfo
}

func NewS3FileInfo(folder, name string, info minio.ObjectInfo) *S3FileInfo {
	return &S3FileInfo{folder: folder, name: name, info: info}
}

func (fi *S3FileInfo) Name() string       { return path.Base(fi.name) }
func (fi *S3FileInfo) Size() int64        { return fi.info.Size }
func (fi *S3FileInfo) Mode() os.FileMode  { return 0444 }
func (fi *S3FileInfo) ModTime() time.Time { return fi.info.LastModified }
func (fi *S3FileInfo) IsDir() bool        { return false }
func (fi *S3FileInfo) Sys() interface{}   { return fi.info }

// ContentType is the mime type stored with the object
func (fi *S3FileInfo) ContentType() string { return fi.info.ContentType }

func (fi *S3FileInfo) ETag() string { return fi.info.ETag }
