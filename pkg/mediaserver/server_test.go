package mediaserver

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/je4/zmediainfo/pkg/database"
	"github.com/je4/zmediainfo/pkg/filesystem"
	"github.com/je4/zmediainfo/pkg/mediainfo"
	"github.com/op/go-logging"
	"github.com/quic-go/quic-go/http3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProber struct {
	sync.Mutex
	calls     int
	locations []string
	format    string
	err       error
}

func (fp *fakeProber) Summary(ctx context.Context, location string) (*mediainfo.ContainerSummary, error) {
	fp.Lock()
	defer fp.Unlock()
	fp.calls++
	fp.locations = append(fp.locations, location)
	if fp.err != nil {
		return nil, fp.err
	}
	format := fp.format
	if format == "" {
		format = "mov,mp4,m4a,3gp,3g2,mj2"
	}
	cs := mediainfo.NewContainerSummary(format)
	cs.Duration = 5 * mediainfo.TimeBase
	cs.StartTime = 0
	cs.BitRate = 800000
	cs.Streams = []*mediainfo.StreamDescriptor{
		{Kind: mediainfo.KindVideo, CodecID: "h264", Profile: 77, Width: 1280, Height: 720, AvgFrameRate: mediainfo.Rational{Num: 25, Den: 1}},
	}
	return cs, nil
}

type testEnv struct {
	prober *fakeProber
	idx    *Indexer
	dir    string
	srv    *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	log := logging.MustGetLogger("mediaserver-test")
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "videos"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "videos", "clip.mp4"), []byte("movie"), 0644))

	lfs, err := filesystem.NewLocalFs("local", dir)
	require.NoError(t, err)
	mdb, err := database.NewMediaDatabase(nil, 10, time.Minute, log)
	require.NoError(t, err)
	prober := &fakeProber{}
	idx, err := NewIndexer(prober, mediainfo.NewAssembler(nil, nil, nil, log), mdb,
		map[string]filesystem.FileSystem{"local": lfs}, time.Minute, nil, log)
	require.NoError(t, err)

	server, err := NewServer("localhost:0", "", "/mediainfo/", idx, log, io.Discard)
	require.NoError(t, err)
	handler, err := server.Handler()
	require.NoError(t, err)
	env := &testEnv{prober: prober, idx: idx, dir: dir, srv: httptest.NewServer(handler)}
	t.Cleanup(env.srv.Close)
	return env
}

func (env *testEnv) get(t *testing.T, p string) (*http.Response, string) {
	resp, err := http.Get(env.srv.URL + p)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestReportText(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.get(t, "/mediainfo/local/videos/clip.mp4")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, `inline; filename="videos-clip-mp4.txt"`, resp.Header.Get("Content-Disposition"))
	assert.Empty(t, resp.Header.Get("X-Report-Cached"))
	assert.Len(t, resp.Header.Get("X-Report-Id"), 27)

	assert.True(t, strings.HasPrefix(body, "duration     : 00:00:05.00 \r\n"), body)
	assert.Contains(t, body, "mimetype     : video/mp4 \r\n")
	assert.Contains(t, body, "video_profile: Main \r\n")
	assert.Contains(t, body, "frame_rate   : 25 fps \r\n")
	assert.NotContains(t, body, "sample_rate")

	require.Len(t, env.prober.locations, 1)
	assert.Equal(t, "file:"+filepath.Join(env.dir, "videos", "clip.mp4"), env.prober.locations[0])
}

func TestReportIsStored(t *testing.T) {
	env := newTestEnv(t)
	first, _ := env.get(t, "/mediainfo/local/videos/clip.mp4")
	require.Equal(t, http.StatusOK, first.StatusCode)
	second, _ := env.get(t, "/mediainfo/local/videos/clip.mp4?format=verbose")
	require.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, "true", second.Header.Get("X-Report-Cached"))
	assert.Equal(t, first.Header.Get("X-Report-Id"), second.Header.Get("X-Report-Id"))
	assert.Equal(t, 1, env.prober.calls)

	// a changed object is probed again
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "videos", "clip.mp4"), []byte("longer movie"), 0644))
	third, _ := env.get(t, "/mediainfo/local/videos/clip.mp4")
	require.Equal(t, http.StatusOK, third.StatusCode)
	assert.Empty(t, third.Header.Get("X-Report-Cached"))
	assert.Equal(t, 2, env.prober.calls)
}

func TestReportFormats(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.get(t, "/mediainfo/local/videos/clip.mp4?format=verbose")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "sample_rate  : N/A \r\n")
	assert.Equal(t, mediainfo.DefaultSchema().Len(), strings.Count(body, "\r\n"))

	resp, body = env.get(t, "/mediainfo/local/videos/clip.mp4?format=json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var result struct {
		Id       string            `json:"id"`
		Mimetype string            `json:"mimetype"`
		Size     int64             `json:"size"`
		Metadata map[string]string `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &result))
	assert.Equal(t, "video/mp4", result.Mimetype)
	assert.Equal(t, int64(5), result.Size)
	assert.Equal(t, "h264", result.Metadata["video_codec"])
	assert.Equal(t, "1280", result.Metadata["width"])

	resp, _ = env.get(t, "/mediainfo/local/videos/clip.mp4?format=xml")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReportErrors(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.get(t, "/mediainfo/s3/videos/clip.mp4")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.get(t, "/mediainfo/local/videos/missing.mp4?format=json")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	resp, _ = env.get(t, "/other/local/videos/clip.mp4")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	env.prober.err = errors.New("Invalid data found when processing input")
	resp, body := env.get(t, "/mediainfo/local/videos/clip.mp4")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "Invalid data found")
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, "/mediainfo/local/videos/clip.mp4")
	env.get(t, "/mediainfo/local/videos/clip.mp4")
	env.get(t, "/mediainfo/local/videos/missing.mp4")

	resp, body := env.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `mediainfo_requests_total{filesystem="local",result="ok"} 1`)
	assert.Contains(t, body, `mediainfo_requests_total{filesystem="local",result="cached"} 1`)
	assert.Contains(t, body, `mediainfo_requests_total{filesystem="local",result="notfound"} 1`)
	assert.Contains(t, body, "mediainfo_probe_duration_seconds_count 1")
}

func TestMimeRelevance(t *testing.T) {
	assert.Equal(t, 0, MimeRelevance(""))
	assert.Equal(t, 0, MimeRelevance(mediainfo.NotAvailable))
	assert.Equal(t, 1, MimeRelevance("application/octet-stream"))
	assert.Equal(t, 3, MimeRelevance("application/mp4"))
	assert.Equal(t, 100, MimeRelevance("video/mp4"))
	assert.Greater(t, MimeRelevance("audio/mpeg"), MimeRelevance("text/plain"))
}

func TestDefaultCertificate(t *testing.T) {
	cert, err := DefaultCertificate()
	require.NoError(t, err)
	require.Len(t, cert.Certificate, 1)
	assert.NotNil(t, cert.PrivateKey)
}

func TestShutdownWithoutStart(t *testing.T) {
	server, err := NewServer("localhost:0", "localhost:0", "mediainfo", nil, logging.MustGetLogger("mediaserver-test"), io.Discard)
	require.NoError(t, err)
	assert.NoError(t, server.Shutdown(context.Background()))
	assert.ErrorIs(t, server.ListenAndServe("", ""), http.ErrServerClosed)

	_, err = NewServer("no-port", "", "mediainfo", nil, nil, io.Discard)
	assert.Error(t, err)
	_, err = NewServer("localhost:0", "no-port", "mediainfo", nil, nil, io.Discard)
	assert.Error(t, err)
}

const sfResult = `{"siegfried":"1.9.1","scandate":"2023-03-01T10:00:00+01:00","signature":"default.sig",
"identifiers":[{"name":"pronom","details":"DROID_SignatureFile_V109.xml"}],
"files":[{"filename":"%s","filesize":5,"modified":"2023-03-01T10:00:00+01:00","errors":"",
"matches":[{"ns":"pronom","id":"fmt/569","format":"Matroska","version":"","mime":"video/x-matroska","basis":"byte match at 0, 4","warning":""},
{"ns":"pronom","id":"UNKNOWN","format":"","version":"","mime":"","basis":"","warning":"no match"}]}]}`

func newSiegfriedServer(t *testing.T, paths *[]string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.TrimPrefix(r.URL.Path, "/identify/")
		*paths = append(*paths, p)
		if strings.HasSuffix(p, "broken.mkv") {
			http.Error(w, "cannot open file", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, strings.Replace(sfResult, "%s", p, 1))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSiegfried(t *testing.T) {
	var paths []string
	srv := newSiegfriedServer(t, &paths)

	_, err := NewSiegfried(srv.URL+"/identify", time.Second)
	assert.Error(t, err)

	sf, err := NewSiegfried(srv.URL+"/identify/[[PATH]]?format=json", time.Second)
	require.NoError(t, err)
	result, err := sf.Identify(context.Background(), "/data/my movie.mkv")
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "fmt/569", result.Files[0].Matches[0].Id)
	assert.Equal(t, "pronom", result.Identifiers[0].Name)
	require.Len(t, paths, 1)
	assert.Equal(t, "/data/my movie.mkv", paths[0])

	mt, err := sf.Mimetype(context.Background(), "/data/clip.mkv")
	require.NoError(t, err)
	assert.Equal(t, "video/x-matroska", mt)

	_, err = sf.Mimetype(context.Background(), "/data/broken.mkv")
	assert.Error(t, err)
}

func TestReportIdentifiedMimetype(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "videos", "clip.xyzq"), []byte("movie"), 0644))
	env.prober.format = "unknown_demuxer"

	// without identifier only the sniffed header is left
	resp, body := env.get(t, "/mediainfo/local/videos/clip.xyzq?format=json")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, `"mimetype":"text/plain"`)

	var paths []string
	sf, err := NewSiegfried(newSiegfriedServer(t, &paths).URL+"/identify/[[PATH]]", time.Second)
	require.NoError(t, err)
	env.idx.SetIdentifier(sf)
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "videos", "clip.xyzq"), []byte("other movie"), 0644))

	resp, body = env.get(t, "/mediainfo/local/videos/clip.xyzq?format=json")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, `"mimetype":"video/x-matroska"`)
	require.Len(t, paths, 1)
	unescaped, err := url.PathUnescape(paths[0])
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(filepath.Join(env.dir, "videos", "clip.xyzq")), unescaped)
}

func freeAddrs(t *testing.T) (string, string) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	tcpAddr := l.Addr().String()
	require.NoError(t, l.Close())
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	udpAddr := pc.LocalAddr().String()
	require.NoError(t, pc.Close())
	return tcpAddr, udpAddr
}

func TestHTTP3(t *testing.T) {
	env := newTestEnv(t)
	addr, addr3 := freeAddrs(t)
	server, err := NewServer(addr, addr3, "mediainfo", env.idx, logging.MustGetLogger("mediaserver-test"), io.Discard)
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- server.ListenAndServe("auto", "auto") }()

	clientTLS := &tls.Config{InsecureSkipVerify: true}
	https := &http.Client{Transport: &http.Transport{TLSClientConfig: clientTLS}, Timeout: 5 * time.Second}
	_, port3, err := net.SplitHostPort(addr3)
	require.NoError(t, err)
	// https may be up before the quic listener is announced
	require.Eventually(t, func() bool {
		resp, err := https.Get("https://" + addr + "/mediainfo/local/videos/clip.mp4")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK && strings.Contains(resp.Header.Get("Alt-Svc"), `h3=":`+port3+`"`)
	}, 5*time.Second, 50*time.Millisecond)

	h3 := &http3.Transport{TLSClientConfig: clientTLS}
	resp, err := (&http.Client{Transport: h3, Timeout: 5 * time.Second}).Get("https://" + addr3 + "/mediainfo/local/videos/clip.mp4?format=json")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "HTTP/3.0", resp.Proto)
	assert.Contains(t, string(body), `"video_codec":"h264"`)
	assert.Equal(t, "true", resp.Header.Get("X-Report-Cached"))
	require.NoError(t, h3.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, server.Shutdown(ctx))
	select {
	case err := <-done:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
