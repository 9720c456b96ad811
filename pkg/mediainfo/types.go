package mediainfo

import (
	"fmt"
	"math"
)

// TimeBase is the number of container time units per second (microseconds)
const TimeBase int64 = 1000000

// NoValue marks an unknown duration or start time
const NoValue int64 = math.MinInt64

// ProfileUnknown is the profile id of streams without profile information
const ProfileUnknown = -99

type MediaKind int

const (
	KindUnknown MediaKind = iota
	KindVideo
	KindAudio
	KindData
	KindSubtitle
	KindAttachment
)

var kindNames = map[MediaKind]string{
	KindUnknown:    "unknown",
	KindVideo:      "video",
	KindAudio:      "audio",
	KindData:       "data",
	KindSubtitle:   "subtitle",
	KindAttachment: "attachment",
}

func (k MediaKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseMediaKind maps collaborator kind names (ffprobe codec_type) to MediaKind
func ParseMediaKind(name string) MediaKind {
	for kind, n := range kindNames {
		if n == name {
			return kind
		}
	}
	return KindUnknown
}

type CodecID string

// CodecIDMPEG2TS is the transport stream pseudo codec which has no decoder
const CodecIDMPEG2TS CodecID = "mpeg2ts"

type Tag struct {
	Key   string
	Value string
}

// StreamDescriptor is a read-only view of one demuxed stream.
type StreamDescriptor struct {
	Index    int
	Kind     MediaKind
	Language string

	SampleRate    int64
	TimeBase      Rational
	CodecTimeBase Rational
	AvgFrameRate  Rational

	Width                  int64
	Height                 int64
	SampleAspectRatio      Rational
	CodecSampleAspectRatio Rational

	CodecID   CodecID
	Decoder   Decoder
	CodecName string
	CodecTag  uint32
	Profile   int
	// ProfileName is the profile as named by the demuxer, used if the decoder cannot name Profile
	ProfileName string

	BitRate       int64
	SampleFormat  string
	Channels      int64
	BitsPerSample int64
}

// ContainerSummary is the fully probed container handed over by the demuxer.
// Duration and StartTime are expressed in TimeBase units or NoValue.
type ContainerSummary struct {
	Duration   int64
	StartTime  int64
	BitRate    int64
	FormatName string
	Tags       []Tag
	Streams    []*StreamDescriptor
}

// NewContainerSummary returns an empty summary with unknown timing
func NewContainerSummary(formatName string) *ContainerSummary {
	return &ContainerSummary{
		Duration:   NoValue,
		StartTime:  NoValue,
		FormatName: formatName,
	}
}

// StreamBitRate returns the nominal bit rate of a stream.
// Uncompressed audio is computed from its sample layout.
func StreamBitRate(sd *StreamDescriptor) int64 {
	switch sd.Kind {
	case KindVideo, KindData, KindSubtitle, KindAttachment:
		return sd.BitRate
	case KindAudio:
		if sd.BitsPerSample > 0 {
			return sd.SampleRate * sd.Channels * sd.BitsPerSample
		}
		return sd.BitRate
	default:
		return 0
	}
}
