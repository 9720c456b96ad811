package mediainfo

// Decoder is what the demuxer knows about a registered decoder
type Decoder interface {
	Name() string
	// ProfileName returns the display name of profile or false if it is unknown
	ProfileName(profile int) (string, bool)
}

type DecoderRegistry interface {
	FindDecoder(id CodecID) (Decoder, bool)
}

type CodecName struct {
	Name       string
	Profile    string
	HasProfile bool
}

type codecNameStrategy func(sd *StreamDescriptor) (CodecName, bool)

// CodecNameResolver picks the display name of a stream codec.
// Strategies are tried in order, the first match wins.
type CodecNameResolver struct {
	registry   DecoderRegistry
	strategies []codecNameStrategy
}

func NewCodecNameResolver(registry DecoderRegistry) *CodecNameResolver {
	cnr := &CodecNameResolver{registry: registry}
	cnr.strategies = []codecNameStrategy{
		cnr.fromAttachedDecoder,
		cnr.fromRegistry,
		cnr.fromPseudoCodec,
		cnr.fromEmbeddedName,
		cnr.fromCodecTag,
	}
	return cnr
}

func (cnr *CodecNameResolver) Resolve(sd *StreamDescriptor) CodecName {
	for _, strategy := range cnr.strategies {
		if cn, ok := strategy(sd); ok {
			return cn
		}
	}
	// unreachable, fromCodecTag always succeeds
	return CodecName{Name: FormatCodecTag(sd.CodecTag)}
}

func fromDecoder(d Decoder, sd *StreamDescriptor) CodecName {
	cn := CodecName{Name: d.Name()}
	if sd.Profile != ProfileUnknown {
		cn.Profile, cn.HasProfile = d.ProfileName(sd.Profile)
	}
	if !cn.HasProfile && sd.ProfileName != "" {
		cn.Profile, cn.HasProfile = sd.ProfileName, true
	}
	return cn
}

func (cnr *CodecNameResolver) fromAttachedDecoder(sd *StreamDescriptor) (CodecName, bool) {
	if sd.Decoder == nil {
		return CodecName{}, false
	}
	return fromDecoder(sd.Decoder, sd), true
}

func (cnr *CodecNameResolver) fromRegistry(sd *StreamDescriptor) (CodecName, bool) {
	if cnr.registry == nil || sd.CodecID == "" {
		return CodecName{}, false
	}
	d, ok := cnr.registry.FindDecoder(sd.CodecID)
	if !ok {
		return CodecName{}, false
	}
	return fromDecoder(d, sd), true
}

func (cnr *CodecNameResolver) fromPseudoCodec(sd *StreamDescriptor) (CodecName, bool) {
	if sd.CodecID != CodecIDMPEG2TS {
		return CodecName{}, false
	}
	return CodecName{Name: string(CodecIDMPEG2TS)}, true
}

func (cnr *CodecNameResolver) fromEmbeddedName(sd *StreamDescriptor) (CodecName, bool) {
	if sd.CodecName == "" {
		return CodecName{}, false
	}
	return CodecName{Name: sd.CodecName}, true
}

func (cnr *CodecNameResolver) fromCodecTag(sd *StreamDescriptor) (CodecName, bool) {
	return CodecName{Name: FormatCodecTag(sd.CodecTag)}, true
}
