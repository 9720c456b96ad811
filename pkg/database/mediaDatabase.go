package database

import (
	"context"
	"time"

	"github.com/bluele/gcache"
	"github.com/goph/emperror"
	"github.com/op/go-logging"
)

// MediaDatabase keeps recently used reports in an ARC cache in front of the database.
// db may be nil, reports are then only cached in memory.
type MediaDatabase struct {
	db    Database
	cache gcache.Cache
	log   *logging.Logger
}

func NewMediaDatabase(db Database, cacheSize int, expiration time.Duration, log *logging.Logger) (*MediaDatabase, error) {
	if cacheSize <= 0 {
		cacheSize = 50
	}
	if expiration <= 0 {
		expiration = 3 * time.Hour
	}
	mdb := &MediaDatabase{
		db:    db,
		cache: gcache.New(cacheSize).ARC().Expiration(expiration).Build(),
		log:   log,
	}
	return mdb, nil
}

func (mdb *MediaDatabase) GetReport(ctx context.Context, filesystem, folder, name string) (*Report, error) {
	key := ReportKey(filesystem, folder, name)
	cval, err := mdb.cache.Get(key)
	if err == nil {
		if r, ok := cval.(*Report); ok {
			return r, nil
		}
	}
	if mdb.db == nil {
		return nil, ErrNotFound
	}
	r, err := mdb.db.GetReport(ctx, filesystem, folder, name)
	if err != nil {
		return nil, err
	}
	if err := mdb.cache.Set(key, r); err != nil {
		return nil, emperror.Wrapf(err, "cannot store report %s in cache", key)
	}
	return r, nil
}

func (mdb *MediaDatabase) StoreReport(ctx context.Context, r *Report) error {
	if mdb.db != nil {
		if err := mdb.db.StoreReport(ctx, r); err != nil {
			return err
		}
	}
	if err := mdb.cache.Set(r.GetKey(), r); err != nil {
		return emperror.Wrapf(err, "cannot store report %s in cache", r.GetKey())
	}
	return nil
}

func (mdb *MediaDatabase) DeleteReport(ctx context.Context, filesystem, folder, name string) error {
	mdb.cache.Remove(ReportKey(filesystem, folder, name))
	if mdb.db == nil {
		return nil
	}
	return mdb.db.DeleteReport(ctx, filesystem, folder, name)
}

// CacheLen is the number of cached reports
func (mdb *MediaDatabase) CacheLen() int {
	return mdb.cache.Len(false)
}
