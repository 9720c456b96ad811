package database

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("database: could not find entry")

type Database interface {
	GetReport(ctx context.Context, filesystem, folder, name string) (*Report, error)
	StoreReport(ctx context.Context, report *Report) error
	DeleteReport(ctx context.Context, filesystem, folder, name string) error
}
