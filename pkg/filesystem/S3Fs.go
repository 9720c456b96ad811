package filesystem

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/goph/emperror"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Fs struct {
	name     string
	s3       *minio.Client
	endpoint string
}

func NewS3Fs(name,
	endpoint string,
	accessKeyId string,
	secretAccessKey string,
	useSSL bool) (*S3Fs, error) {
	// connect to S3 / Minio
	s3, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyId, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, emperror.Wrap(err, "cannot connect to s3 instance")
	}
	return &S3Fs{name: name, s3: s3, endpoint: endpoint}, nil
}

func (fs *S3Fs) IsLocal() bool { return false }

func (fs *S3Fs) Protocol() string {
	return fmt.Sprintf("s3://%s", fs.name)
}

func (fs *S3Fs) String() string {
	return fs.s3.EndpointURL().String()
}

func isS3NotFound(err error) bool {
	s3Err := minio.ToErrorResponse(err)
	return s3Err.StatusCode == http.StatusNotFound ||
		s3Err.Code == "NoSuchKey" ||
		s3Err.Code == "NoSuchBucket"
}

func (fs *S3Fs) FileStat(ctx context.Context, folder, name string) (os.FileInfo, error) {
	sinfo, err := fs.s3.StatObject(ctx, folder, name, minio.StatObjectOptions{})
	if err != nil {
		if isS3NotFound(err) {
			return nil, &NotFoundError{err: err}
		}
		return nil, emperror.Wrapf(err, "cannot get file info for %v/%v", folder, name)
	}
	return NewS3FileInfo(folder, name, sinfo), nil
}

func (fs *S3Fs) FileExists(ctx context.Context, folder, name string) (bool, error) {
	_, err := fs.FileStat(ctx, folder, name)
	if err != nil {
		// no file no error
		if IsNotFoundError(err) {
			return false, nil
		}
		return false, emperror.Wrapf(err, "cannot get file info for %v/%v", folder, name)
	}
	return true, nil
}

func (fs *S3Fs) BucketExists(ctx context.Context, folder string) (bool, error) {
	found, err := fs.s3.BucketExists(ctx, folder)
	if err != nil {
		return false, emperror.Wrapf(err, "cannot get check for folder %v", folder)
	}
	return found, nil
}

func (fs *S3Fs) GETUrl(ctx context.Context, folder, name string, valid time.Duration) (*url.URL, error) {
	reqParams := make(url.Values)
	u, err := fs.s3.PresignedGetObject(ctx, folder, name, valid, reqParams)
	if err != nil {
		return nil, emperror.Wrapf(err, "cannot presign %v/%v", folder, name)
	}
	return u, nil
}

// Location checks existence and presigns a GET url, ffprobe reads the object over http(s)
func (fs *S3Fs) Location(ctx context.Context, folder, name string, valid time.Duration) (string, error) {
	if _, err := fs.FileStat(ctx, folder, name); err != nil {
		return "", err
	}
	u, err := fs.GETUrl(ctx, folder, name, valid)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
