package database

import (
	"encoding/json"
	"time"

	"github.com/goph/emperror"
	"github.com/je4/zmediainfo/pkg/mediainfo"
	"github.com/segmentio/ksuid"
)

// Report is a stored metadata table of one media object
type Report struct {
	Id         string            `json:"id"`
	Filesystem string            `json:"filesystem"`
	Folder     string            `json:"folder"`
	Name       string            `json:"name"`
	Size       int64             `json:"size"`
	ModTime    time.Time         `json:"modtime"`
	Mimetype   string            `json:"mimetype,omitempty"`
	Duration   int64             `json:"duration,omitempty"`
	Values     map[string]string `json:"values"`
	Created    time.Time         `json:"created"`
}

func NewReport(filesystem, folder, name string, size int64, modTime time.Time, cs *mediainfo.ContainerSummary, table *mediainfo.Table) *Report {
	r := &Report{
		Id:         ksuid.New().String(),
		Filesystem: filesystem,
		Folder:     folder,
		Name:       name,
		Size:       size,
		ModTime:    modTime.UTC().Truncate(time.Microsecond),
		Values:     table.Map(),
		Created:    time.Now().UTC(),
	}
	if mt := table.Get(mediainfo.KeyMimetype); mt != mediainfo.NotAvailable {
		r.Mimetype = mt
	}
	if cs != nil && cs.Duration != mediainfo.NoValue {
		r.Duration = cs.Duration
	}
	return r
}

// GetKey identifies the media object, not the report
func (r *Report) GetKey() string {
	return ReportKey(r.Filesystem, r.Folder, r.Name)
}

func ReportKey(filesystem, folder, name string) string {
	return filesystem + "/" + folder + "/" + name
}

// IsCurrent checks whether the report was made from the object with this size and modification time
func (r *Report) IsCurrent(size int64, modTime time.Time) bool {
	return r.Size == size && r.ModTime.Equal(modTime.UTC().Truncate(time.Microsecond))
}

// Table rebuilds the metadata table with schema
func (r *Report) Table(schema *mediainfo.Schema) *mediainfo.Table {
	t := mediainfo.NewTable(schema)
	for _, e := range schema.Entries() {
		if v, ok := r.Values[e.Label]; ok {
			t.Set(e.Key, v)
		}
	}
	return t
}

func (r *Report) valuesJSON() ([]byte, error) {
	data, err := json.Marshal(r.Values)
	if err != nil {
		return nil, emperror.Wrapf(err, "cannot marshal values of report %s", r.Id)
	}
	return data, nil
}
