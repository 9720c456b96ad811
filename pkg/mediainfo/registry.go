package mediainfo

import "sync"

type StaticDecoder struct {
	name     string
	profiles map[int]string
}

func NewStaticDecoder(name string, profiles map[int]string) *StaticDecoder {
	return &StaticDecoder{name: name, profiles: profiles}
}

func (sd *StaticDecoder) Name() string { return sd.name }

func (sd *StaticDecoder) ProfileName(profile int) (string, bool) {
	name, ok := sd.profiles[profile]
	return name, ok
}

// StaticRegistry is a DecoderRegistry backed by a map
type StaticRegistry struct {
	sync.RWMutex
	decoders map[CodecID]Decoder
}

func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{decoders: make(map[CodecID]Decoder)}
}

func (sr *StaticRegistry) Register(id CodecID, d Decoder) {
	sr.Lock()
	defer sr.Unlock()
	sr.decoders[id] = d
}

func (sr *StaticRegistry) FindDecoder(id CodecID) (Decoder, bool) {
	sr.RLock()
	defer sr.RUnlock()
	d, ok := sr.decoders[id]
	return d, ok
}

// DefaultRegistry knows the common decoders and their profile ids
func DefaultRegistry() *StaticRegistry {
	sr := NewStaticRegistry()
	sr.Register("h264", NewStaticDecoder("h264", map[int]string{
		66:  "Baseline",
		578: "Constrained Baseline",
		77:  "Main",
		88:  "Extended",
		100: "High",
		110: "High 10",
		122: "High 4:2:2",
		244: "High 4:4:4 Predictive",
	}))
	sr.Register("hevc", NewStaticDecoder("hevc", map[int]string{
		1: "Main",
		2: "Main 10",
		3: "Main Still Picture",
		4: "Rext",
	}))
	sr.Register("mpeg2video", NewStaticDecoder("mpeg2video", map[int]string{
		0: "422",
		1: "High",
		2: "Spatially Scalable",
		3: "SNR Scalable",
		4: "Main",
		5: "Simple",
	}))
	sr.Register("mpeg4", NewStaticDecoder("mpeg4", map[int]string{
		0:  "Simple Profile",
		1:  "Simple Scalable Profile",
		2:  "Core Profile",
		3:  "Main Profile",
		15: "Advanced Simple Profile",
	}))
	sr.Register("vp9", NewStaticDecoder("vp9", map[int]string{
		0: "Profile 0",
		1: "Profile 1",
		2: "Profile 2",
		3: "Profile 3",
	}))
	sr.Register("av1", NewStaticDecoder("libdav1d", map[int]string{
		0: "Main",
		1: "High",
		2: "Professional",
	}))
	sr.Register("aac", NewStaticDecoder("aac", map[int]string{
		0:  "Main",
		1:  "LC",
		2:  "SSR",
		3:  "LTP",
		4:  "HE-AAC",
		28: "HE-AACv2",
		22: "LD",
		38: "ELD",
	}))
	sr.Register("dts", NewStaticDecoder("dca", map[int]string{
		20: "DTS",
		30: "DTS-ES",
		40: "DTS 96/24",
		50: "DTS-HD HRA",
		60: "DTS-HD MA",
	}))
	for _, name := range []string{"vp8", "mjpeg", "theora", "mp3", "mp2", "ac3", "eac3", "flac", "opus", "vorbis", "pcm_s16le", "pcm_s24le", "alac"} {
		sr.Register(CodecID(name), NewStaticDecoder(name, nil))
	}
	return sr
}
