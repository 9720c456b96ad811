package probe

import (
	"strconv"
	"strings"

	"github.com/je4/zmediainfo/pkg/mediainfo"
)

// ParseSeconds converts a decimal seconds string to TimeBase units without float rounding
func ParseSeconds(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return mediainfo.NoValue, false
	}
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	secs, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return mediainfo.NoValue, false
	}
	const digits = 6
	if len(fracPart) > digits {
		fracPart = fracPart[:digits]
	}
	fracPart += strings.Repeat("0", digits-len(fracPart))
	frac, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return mediainfo.NoValue, false
	}
	units := secs*mediainfo.TimeBase + frac
	if negative {
		units = -units
	}
	return units, true
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseCodecTag reads "0x31637661"
func parseCodecTag(s string) uint32 {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}

func convertStream(st *Stream) *mediainfo.StreamDescriptor {
	// ffprobe has one sample aspect ratio for stream and codec
	sar := mediainfo.ParseRational(st.SampleAspectRatio)
	sd := &mediainfo.StreamDescriptor{
		Index:                  st.Index,
		Kind:                   mediainfo.ParseMediaKind(st.CodecType),
		SampleRate:             parseInt(st.SampleRate),
		TimeBase:               mediainfo.ParseRational(st.TimeBase),
		CodecTimeBase:          mediainfo.ParseRational(st.CodecTimeBase),
		AvgFrameRate:           mediainfo.ParseRational(st.AvgFrameRate),
		Width:                  st.Width,
		Height:                 st.Height,
		SampleAspectRatio:      sar,
		CodecSampleAspectRatio: sar,
		CodecID:                mediainfo.CodecID(st.CodecName),
		CodecName:              st.CodecName,
		CodecTag:               parseCodecTag(st.CodecTag),
		Profile:                mediainfo.ProfileUnknown,
		BitRate:                parseInt(st.BitRate),
		SampleFormat:           st.SampleFmt,
		Channels:               st.Channels,
		BitsPerSample:          st.BitsPerSample,
	}
	if lang, ok := st.Tags.Get("language"); ok {
		sd.Language = lang
	}
	// ffprobe names profiles but does not report their ids
	if st.Profile != "unknown" {
		sd.ProfileName = st.Profile
	}
	return sd
}

// Summary converts a ffprobe result into the container summary
func (r *Result) Summary() *mediainfo.ContainerSummary {
	var cs *mediainfo.ContainerSummary
	if r.Format != nil {
		cs = mediainfo.NewContainerSummary(r.Format.FormatName)
		cs.Duration, _ = ParseSeconds(r.Format.Duration)
		cs.StartTime, _ = ParseSeconds(r.Format.StartTime)
		cs.BitRate = parseInt(r.Format.BitRate)
		for _, t := range r.Format.Tags {
			cs.Tags = append(cs.Tags, mediainfo.Tag{Key: t.Key, Value: t.Value})
		}
	} else {
		cs = mediainfo.NewContainerSummary("")
	}
	for i := range r.Streams {
		cs.Streams = append(cs.Streams, convertStream(&r.Streams[i]))
	}
	return cs
}
