package mediaserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gosimple/slug"
	"github.com/je4/zmediainfo/pkg/database"
	"github.com/je4/zmediainfo/pkg/filesystem"
	"github.com/je4/zmediainfo/pkg/mediainfo"
	"github.com/op/go-logging"
)

const (
	FormatText    = "text"
	FormatVerbose = "verbose"
	FormatJSON    = "json"
)

type ReportHandler struct {
	log    *logging.Logger
	idx    *Indexer
	prefix string
}

func NewReportHandler(prefix string, idx *Indexer, log *logging.Logger) (*ReportHandler, error) {
	rh := &ReportHandler{
		log:    log,
		prefix: strings.Trim(prefix, "/"),
		idx:    idx,
	}
	return rh, nil
}

var errorTemplate = template.Must(template.New("error").Parse(`<html>
<head><title>{{.Error}}</title></head>
<body><h1>{{.Error}}</h1><h2>{{.Message}}</h2></body>
</html>
`))

func (rh *ReportHandler) DoPanicf(writer http.ResponseWriter, status int, message string, jsonresult bool, a ...interface{}) {
	msg := fmt.Sprintf(message, a...)
	errorstatus := struct {
		Error   string
		Message string
	}{
		Error:   fmt.Sprintf("%v - %s", status, http.StatusText(status)),
		Message: msg,
	}
	rh.log.Errorf("error: %s // %s", errorstatus.Message, errorstatus.Error)
	if jsonresult {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		enc := json.NewEncoder(writer)
		enc.Encode(errorstatus)
		return
	}
	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(status)
	errorTemplate.Execute(writer, errorstatus)
}

// reportFilename builds a download name like "videos-big-buck-bunny-mp4.txt"
func reportFilename(folder, name, ext string) string {
	return fmt.Sprintf("%s.%s", slug.Make(path.Join(folder, name)), ext)
}

func (rh *ReportHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	format := strings.ToLower(req.URL.Query().Get("format"))
	if format == "" {
		format = FormatText
	}
	jsonresult := format == FormatJSON
	switch format {
	case FormatText, FormatVerbose, FormatJSON:
	default:
		rh.DoPanicf(resp, http.StatusBadRequest, "invalid format %s", false, format)
		return
	}

	fsName := vars["filesystem"]
	bucket := vars["bucket"]
	name := vars["path"]
	if fsName == "" || bucket == "" || name == "" {
		rh.DoPanicf(resp, http.StatusBadRequest, "invalid request %s", jsonresult, req.URL.String())
		return
	}

	r, cached, err := rh.idx.GetReport(req.Context(), fsName, bucket, name)
	if err != nil {
		var pe *ProbeError
		switch {
		case errors.Is(err, ErrUnknownFilesystem):
			rh.DoPanicf(resp, http.StatusNotFound, "unknown filesystem %s", jsonresult, fsName)
		case filesystem.IsNotFoundError(err):
			rh.DoPanicf(resp, http.StatusNotFound, "%s/%s/%s not found", jsonresult, fsName, bucket, name)
		case errors.As(err, &pe):
			rh.DoPanicf(resp, http.StatusBadGateway, "%v", jsonresult, err)
		default:
			rh.DoPanicf(resp, http.StatusInternalServerError, "cannot get report for %s/%s/%s: %v", jsonresult, fsName, bucket, name, err)
		}
		return
	}
	if cached {
		resp.Header().Set("X-Report-Cached", "true")
	}
	resp.Header().Set("X-Report-Id", r.Id)
	rh.writeReport(resp, req, r, format, bucket, name)
}

func (rh *ReportHandler) writeReport(resp http.ResponseWriter, req *http.Request, r *database.Report, format, bucket, name string) {
	schema := rh.idx.Schema()
	if format == FormatVerbose {
		schema = schema.Verbose()
	}
	table := r.Table(schema)

	var body []byte
	switch format {
	case FormatJSON:
		data, err := json.Marshal(struct {
			Id       string           `json:"id"`
			Mimetype string           `json:"mimetype,omitempty"`
			Size     int64            `json:"size"`
			Metadata *mediainfo.Table `json:"metadata"`
		}{
			Id:       r.Id,
			Mimetype: r.Mimetype,
			Size:     r.Size,
			Metadata: table,
		})
		if err != nil {
			rh.DoPanicf(resp, http.StatusInternalServerError, "cannot marshal report %s: %v", true, r.Id, err)
			return
		}
		resp.Header().Set("Content-Type", "application/json")
		body = data
	default:
		resp.Header().Set("Content-Type", "text/plain; charset=utf-8")
		resp.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, reportFilename(bucket, name, "txt")))
		body = []byte(mediainfo.Serialize(table, schema))
	}
	resp.WriteHeader(http.StatusOK)
	if req.Method == http.MethodHead {
		return
	}
	if _, err := resp.Write(body); err != nil {
		rh.log.Errorf("cannot write report %s: %v", r.Id, err)
	}
}

func (rh *ReportHandler) SetRoutes(router *mux.Router) error {
	routeRegexp := regexp.MustCompile(fmt.Sprintf("^/%s/(?P<filesystem>[^/]+)/(?P<bucket>[^/]+)/(?P<path>.+)$", regexp.QuoteMeta(rh.prefix)))
	router.MatcherFunc(func(request *http.Request, match *mux.RouteMatch) bool {
		matches := routeRegexp.FindStringSubmatch(request.URL.Path)
		if matches == nil {
			return false
		}
		match.Vars = map[string]string{}
		for i, name := range routeRegexp.SubexpNames() {
			if name == "" {
				continue
			}
			match.Vars[name] = matches[i]
		}
		return true
	}).Methods("GET", "HEAD").Handler(rh)
	return nil
}
