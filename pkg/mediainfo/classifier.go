package mediainfo

import (
	"strconv"

	"github.com/op/go-logging"
)

// StreamClassifier walks the streams of one container and fills the stream related fields
type StreamClassifier struct {
	resolver *CodecNameResolver
	log      *logging.Logger
	Video    int
	Audio    int
	Other    int
}

func NewStreamClassifier(resolver *CodecNameResolver, log *logging.Logger) *StreamClassifier {
	return &StreamClassifier{resolver: resolver, log: log}
}

func (sc *StreamClassifier) Classify(t *Table, streams []*StreamDescriptor) {
	for _, sd := range streams {
		if sd == nil {
			continue
		}
		switch sd.Kind {
		case KindVideo:
			sc.Video++
			if sc.Video == 1 {
				sc.primaryVideo(t, sd)
			}
		case KindAudio:
			sc.Audio++
			if sc.Audio == 1 {
				sc.primaryAudio(t, sd)
			}
		default:
			sc.Other++
		}
		sc.streamFields(t, sd)
	}
}

func (sc *StreamClassifier) primaryVideo(t *Table, sd *StreamDescriptor) {
	cn := sc.resolver.Resolve(sd)
	sc.log.Debugf("stream #%d: primary video codec %s", sd.Index, cn.Name)
	t.Set(KeyVideoCodec, cn.Name)
	if cn.HasProfile {
		t.Set(KeyVideoProfile, cn.Profile)
	}
	if sd.Width != 0 {
		t.Set(KeyWidth, strconv.FormatInt(sd.Width, 10))
		t.Set(KeyHeight, strconv.FormatInt(sd.Height, 10))
		if par, dar, ok := FormatAspectRatio(sd.CodecSampleAspectRatio, sd.Width, sd.Height); ok {
			t.SetIfUnset(KeyDAR, dar)
			t.SetIfUnset(KeyPAR, par)
		}
	}
	if br := StreamBitRate(sd); br > 0 {
		t.Set(KeyVideoBitrate, FormatBitrate(br))
	}
}

func (sc *StreamClassifier) primaryAudio(t *Table, sd *StreamDescriptor) {
	cn := sc.resolver.Resolve(sd)
	sc.log.Debugf("stream #%d: primary audio codec %s", sd.Index, cn.Name)
	t.Set(KeyAudioCodec, cn.Name)
	if cn.HasProfile {
		t.Set(KeyAudioProfile, cn.Profile)
	}
	if sd.SampleRate != 0 {
		t.Set(KeySampleRate, FormatSampleRate(sd.SampleRate))
	}
	if sd.SampleFormat != "" {
		t.Set(KeySampleFormat, sd.SampleFormat)
	}
	if sd.Channels > 0 {
		t.Set(KeyChannels, strconv.FormatInt(sd.Channels, 10))
	}
	if br := StreamBitRate(sd); br > 0 {
		t.Set(KeyAudioBitrate, FormatBitrate(br))
	}
}

// streamFields are written for every stream, the last stream wins
func (sc *StreamClassifier) streamFields(t *Table, sd *StreamDescriptor) {
	if sd.Language != "" {
		t.Set(KeyLanguage, FormatLanguage(sd.Language))
	}

	if sd.SampleAspectRatio.Num != 0 && !sd.SampleAspectRatio.Equal(sd.CodecSampleAspectRatio) {
		if par, dar, ok := FormatAspectRatio(sd.SampleAspectRatio, sd.Width, sd.Height); ok {
			t.Set(KeyPAR, par)
			t.Set(KeyDAR, dar)
		}
	}

	if sd.Kind != KindVideo {
		return
	}
	if sd.AvgFrameRate.Valid() {
		t.Set(KeyFrameRate, FormatFrameRateLike(sd.AvgFrameRate.Float(), UnitFPS))
	}
	if sd.TimeBase.Valid() {
		t.Set(KeyTBN, FormatFrameRateLike(1/sd.TimeBase.Float(), UnitTBN))
	}
	if sd.CodecTimeBase.Valid() {
		t.Set(KeyTBC, FormatFrameRateLike(1/sd.CodecTimeBase.Float(), UnitTBC))
	}
}

// MimeType derives the mime type from the stream counts. Video wins over audio.
func (sc *StreamClassifier) MimeType(rules MimeRules, formatName string) (string, bool) {
	var prefix string
	switch {
	case sc.Video > 0:
		prefix = "video/"
	case sc.Audio > 0:
		prefix = "audio/"
	default:
		return "", false
	}
	subtype, ok := rules.Lookup(formatName)
	if !ok {
		return "", false
	}
	return prefix + subtype, true
}
