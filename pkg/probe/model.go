package probe

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Tags keeps ffprobe tags in document order
type Tags []Tag

type Tag struct {
	Key   string
	Value string
}

func (ts *Tags) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		if tok == nil {
			*ts = nil
			return nil
		}
		return fmt.Errorf("tags: expected object, got %v", tok)
	}
	var result Tags
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("tags: invalid key %v", tok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return err
		}
		switch v := value.(type) {
		case string:
			result = append(result, Tag{Key: key, Value: v})
		case nil:
		default:
			result = append(result, Tag{Key: key, Value: fmt.Sprint(v)})
		}
	}
	*ts = result
	return nil
}

func (ts Tags) Get(key string) (string, bool) {
	for _, t := range ts {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

type Stream struct {
	Index             int    `json:"index"`
	CodecName         string `json:"codec_name"`
	CodecLongName     string `json:"codec_long_name"`
	Profile           string `json:"profile"`
	CodecType         string `json:"codec_type"`
	CodecTimeBase     string `json:"codec_time_base"`
	CodecTagString    string `json:"codec_tag_string"`
	CodecTag          string `json:"codec_tag"`
	Width             int64  `json:"width"`
	Height            int64  `json:"height"`
	SampleAspectRatio string `json:"sample_aspect_ratio"`
	PixFmt            string `json:"pix_fmt"`
	SampleFmt         string `json:"sample_fmt"`
	SampleRate        string `json:"sample_rate"`
	Channels          int64  `json:"channels"`
	ChannelLayout     string `json:"channel_layout"`
	BitsPerSample     int64  `json:"bits_per_sample"`
	RFrameRate        string `json:"r_frame_rate"`
	AvgFrameRate      string `json:"avg_frame_rate"`
	TimeBase          string `json:"time_base"`
	StartTime         string `json:"start_time"`
	Duration          string `json:"duration"`
	BitRate           string `json:"bit_rate"`
	Tags              Tags   `json:"tags"`
}

type Format struct {
	Filename       string `json:"filename"`
	NbStreams      int    `json:"nb_streams"`
	FormatName     string `json:"format_name"`
	FormatLongName string `json:"format_long_name"`
	StartTime      string `json:"start_time"`
	Duration       string `json:"duration"`
	Size           string `json:"size"`
	BitRate        string `json:"bit_rate"`
	ProbeScore     int    `json:"probe_score"`
	Tags           Tags   `json:"tags"`
}

type ProbeError struct {
	Code   int    `json:"code"`
	String string `json:"string"`
}

type Result struct {
	Streams []Stream    `json:"streams"`
	Format  *Format     `json:"format"`
	Error   *ProbeError `json:"error"`
}
