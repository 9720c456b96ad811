package mediaserver

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/goph/emperror"
	"github.com/je4/zmediainfo/pkg/database"
	"github.com/je4/zmediainfo/pkg/filesystem"
	"github.com/je4/zmediainfo/pkg/mediainfo"
	"github.com/op/go-logging"
)

var ErrUnknownFilesystem = errors.New("unknown filesystem")

/*
holistic function to give some mimetypes a relevance
*/
func MimeRelevance(mimetype string) (relevance int) {
	if mimetype == "" || mimetype == mediainfo.NotAvailable {
		return 0
	}
	if mimetype == "application/octet-stream" {
		return 1
	}
	if mimetype == "text/plain" {
		return 2
	}
	if strings.HasPrefix(mimetype, "application/") {
		return 3
	}
	if strings.HasPrefix(mimetype, "text/") {
		return 4
	}
	return 100
}

// Prober produces the container summary of a location
type Prober interface {
	Summary(ctx context.Context, location string) (*mediainfo.ContainerSummary, error)
}

// ProbeError marks failures of the external prober
type ProbeError struct {
	Location string
	err      error
}

func (pe *ProbeError) Error() string {
	return fmt.Sprintf("cannot probe %s: %v", pe.Location, pe.err)
}

func (pe *ProbeError) Unwrap() error { return pe.err }

type contentTyper interface {
	ContentType() string
}

type localPather interface {
	Path() string
}

type Indexer struct {
	prober    Prober
	assembler *mediainfo.Assembler
	mdb       *database.MediaDatabase
	fss       map[string]filesystem.FileSystem
	urlValid  time.Duration
	metrics   *Metrics
	identify  MimeIdentifier
	log       *logging.Logger
}

func NewIndexer(prober Prober, assembler *mediainfo.Assembler, mdb *database.MediaDatabase, fss map[string]filesystem.FileSystem, urlValid time.Duration, metrics *Metrics, log *logging.Logger) (*Indexer, error) {
	if prober == nil {
		return nil, errors.New("no prober")
	}
	if mdb == nil {
		return nil, errors.New("no media database")
	}
	if urlValid <= 0 {
		urlValid = 10 * time.Minute
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	if log == nil {
		log = logging.MustGetLogger("mediaserver")
	}
	idx := &Indexer{
		prober:    prober,
		assembler: assembler,
		mdb:       mdb,
		fss:       fss,
		urlValid:  urlValid,
		metrics:   metrics,
		log:       log,
	}
	return idx, nil
}

// SetIdentifier adds a content identifier for files of local filesystems
func (idx *Indexer) SetIdentifier(identify MimeIdentifier) {
	idx.identify = identify
}

func (idx *Indexer) Schema() *mediainfo.Schema {
	return idx.assembler.Schema()
}

func (idx *Indexer) Metrics() *Metrics {
	return idx.metrics
}

// GetReport returns the stored report if the object did not change since, otherwise probes the object.
// The bool result is true for stored reports.
func (idx *Indexer) GetReport(ctx context.Context, fsName, folder, name string) (*database.Report, bool, error) {
	fs, ok := idx.fss[strings.ToLower(fsName)]
	if !ok {
		idx.metrics.Request(fsName, ResultNotFound)
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownFilesystem, fsName)
	}
	fi, err := fs.FileStat(ctx, folder, name)
	if err != nil {
		if filesystem.IsNotFoundError(err) {
			idx.metrics.Request(fsName, ResultNotFound)
		} else {
			idx.metrics.Request(fsName, ResultError)
		}
		return nil, false, err
	}

	r, err := idx.mdb.GetReport(ctx, fsName, folder, name)
	switch {
	case err == nil:
		if r.IsCurrent(fi.Size(), fi.ModTime()) {
			idx.metrics.Request(fsName, ResultCached)
			return r, true, nil
		}
		idx.log.Debugf("report %s outdated", r.GetKey())
	case errors.Is(err, database.ErrNotFound):
	default:
		// a broken database should not stop us from probing
		idx.log.Errorf("cannot load report %s: %v", database.ReportKey(fsName, folder, name), err)
	}

	location, err := fs.Location(ctx, folder, name, idx.urlValid)
	if err != nil {
		idx.metrics.Request(fsName, ResultError)
		return nil, false, emperror.Wrapf(err, "cannot get location of %s/%s", folder, name)
	}
	start := time.Now()
	cs, err := idx.prober.Summary(ctx, location)
	idx.metrics.Probe(time.Since(start))
	if err != nil {
		idx.metrics.Request(fsName, ResultError)
		return nil, false, &ProbeError{Location: path.Join(fsName, folder, name), err: err}
	}
	table := idx.assembler.Assemble(cs)
	r = database.NewReport(fsName, folder, name, fi.Size(), fi.ModTime(), cs, table)
	if m := idx.objectMimetype(ctx, fi, name); MimeRelevance(m) > MimeRelevance(r.Mimetype) {
		r.Mimetype = m
	}
	if err := idx.mdb.StoreReport(ctx, r); err != nil {
		idx.log.Errorf("cannot store report %s: %v", r.GetKey(), err)
	}
	idx.metrics.Request(fsName, ResultOK)
	return r, false, nil
}

// objectMimetype is the most relevant of the mime types known by the storage,
// guessed from the extension or identified by content
func (idx *Indexer) objectMimetype(ctx context.Context, fi interface{}, name string) string {
	var candidates []string
	if ct, ok := fi.(contentTyper); ok && ct.ContentType() != "" {
		if mt, _, err := mime.ParseMediaType(ct.ContentType()); err == nil {
			candidates = append(candidates, mt)
		}
	}
	if mt := mime.TypeByExtension(path.Ext(name)); mt != "" {
		if mt, _, err := mime.ParseMediaType(mt); err == nil {
			candidates = append(candidates, mt)
		}
	}
	if lp, ok := fi.(localPather); ok && idx.identify != nil {
		mt, err := idx.identify.Mimetype(ctx, lp.Path())
		if err != nil {
			idx.log.Warningf("cannot identify %s: %v", lp.Path(), err)
		} else {
			candidates = append(candidates, mt)
		}
	}
	var best string
	for _, mt := range candidates {
		if MimeRelevance(mt) > MimeRelevance(best) {
			best = mt
		}
	}
	return best
}
