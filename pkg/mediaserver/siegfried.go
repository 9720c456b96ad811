package mediaserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/goph/emperror"
)

type SFIdentifier struct {
	Name    string `json:"name,omitempty"`
	Details string `json:"details,omitempty"`
}

type SFMatches struct {
	Ns      string `json:"ns,omitempty"`
	Id      string `json:"id,omitempty"`
	Format  string `json:"format,omitempty"`
	Version string `json:"version,omitempty"`
	Mime    string `json:"mime,omitempty"`
	Basis   string `json:"basis,omitempty"`
	Warning string `json:"warning,omitempty"`
}

type SFFiles struct {
	Filename string      `json:"filename,omitempty"`
	Filesize int64       `json:"filesize,omitempty"`
	Modified string      `json:"modified,omitempty"`
	Errors   string      `json:"errors,omitempty"`
	Matches  []SFMatches `json:"matches,omitempty"`
}

type SF struct {
	Siegfried   string         `json:"siegfried,omitempty"`
	Scandate    string         `json:"scandate,omitempty"`
	Signature   string         `json:"signature,omitempty"`
	Created     string         `json:"created,omitempty"`
	Identifiers []SFIdentifier `json:"identifiers,omitempty"`
	Files       []SFFiles      `json:"files,omitempty"`
}

// MimeIdentifier identifies local files by content
type MimeIdentifier interface {
	Mimetype(ctx context.Context, filename string) (string, error)
}

// Siegfried queries a siegfried server, url contains the placeholder [[PATH]]
// e.g. http://localhost:5138/identify/[[PATH]]?format=json
type Siegfried struct {
	url    string
	client *http.Client
}

func NewSiegfried(urlstring string, timeout time.Duration) (*Siegfried, error) {
	if !strings.Contains(urlstring, "[[PATH]]") {
		return nil, fmt.Errorf("no [[PATH]] placeholder in siegfried url %s", urlstring)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	sf := &Siegfried{
		url:    urlstring,
		client: &http.Client{Timeout: timeout},
	}
	return sf, nil
}

func (sf *Siegfried) Identify(ctx context.Context, filename string) (*SF, error) {
	urlstring := strings.Replace(sf.url, "[[PATH]]", strings.Replace(url.QueryEscape(filepath.ToSlash(filename)), "+", "%20", -1), -1)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlstring, nil)
	if err != nil {
		return nil, emperror.Wrapf(err, "cannot create request - %v", urlstring)
	}
	resp, err := sf.client.Do(req)
	if err != nil {
		return nil, emperror.Wrapf(err, "cannot query siegfried - %v", urlstring)
	}
	defer resp.Body.Close()
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, emperror.Wrapf(err, "error reading body - %v", urlstring)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status not ok - %v -> %v: %s", urlstring, resp.Status, string(bodyBytes))
	}

	result := SF{}
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return nil, emperror.Wrapf(err, "error decoding json - %v", string(bodyBytes))
	}
	if len(result.Files) == 0 {
		return nil, fmt.Errorf("no file in sf result - %v", string(bodyBytes))
	}
	return &result, nil
}

// Mimetype is the most relevant mime type of all matches
func (sf *Siegfried) Mimetype(ctx context.Context, filename string) (string, error) {
	result, err := sf.Identify(ctx, filename)
	if err != nil {
		return "", err
	}
	file := result.Files[0]
	if file.Errors != "" {
		return "", fmt.Errorf("siegfried error for %s: %s", filename, file.Errors)
	}
	var best string
	for _, m := range file.Matches {
		if MimeRelevance(m.Mime) > MimeRelevance(best) {
			best = m.Mime
		}
	}
	return best, nil
}
