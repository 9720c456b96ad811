package mediainfo

// NotAvailable is the default value of every table entry
const NotAvailable = "N/A"

// Key is the canonical identifier of a metadata field
type Key int

const (
	KeyDuration Key = iota
	KeyStartTime
	KeyBitrate
	KeyMimetype
	KeyHasAudio
	KeyHasVideo
	KeyLanguage
	KeyPAR
	KeyDAR
	KeyFrameRate
	KeyTBN
	KeyTBC
	KeyVideoCodec
	KeyVideoProfile
	KeyWidth
	KeyHeight
	KeyVideoBitrate
	KeyAudioCodec
	KeyAudioProfile
	KeySampleRate
	KeySampleFormat
	KeyChannels
	KeyAudioBitrate
	KeyTitle
	KeyArtist
	KeyAlbum
	KeyAlbumArtist
	KeyComposer
	KeyGenre
	KeyDate
	KeyTrack
	KeyComment
	KeyCopyright
	KeyEncoder
)

// Entry describes one line of the report.
// Summary entries are printed even if they still hold the default value.
type Entry struct {
	Key     Key
	Label   string
	Default string
	Summary bool
	// Tag marks entries filled from container tags with the label as tag name
	Tag bool
}

type Schema struct {
	entries []Entry
	index   map[Key]int
}

func NewSchema(entries []Entry) *Schema {
	s := &Schema{
		entries: make([]Entry, len(entries)),
		index:   make(map[Key]int, len(entries)),
	}
	copy(s.entries, entries)
	for i, e := range s.entries {
		s.index[e.Key] = i
	}
	return s
}

var defaultEntries = []Entry{
	{Key: KeyDuration, Label: "duration", Default: NotAvailable, Summary: true},
	{Key: KeyStartTime, Label: "start_time", Default: NotAvailable, Summary: true},
	{Key: KeyBitrate, Label: "bitrate", Default: NotAvailable, Summary: true},
	{Key: KeyMimetype, Label: "mimetype", Default: NotAvailable, Summary: true},
	{Key: KeyHasAudio, Label: "has_audio", Default: NotAvailable, Summary: true},
	{Key: KeyHasVideo, Label: "has_video", Default: NotAvailable, Summary: true},
	{Key: KeyLanguage, Label: "language", Default: NotAvailable},
	{Key: KeyPAR, Label: "par", Default: NotAvailable},
	{Key: KeyDAR, Label: "dar", Default: NotAvailable},
	{Key: KeyFrameRate, Label: "frame_rate", Default: NotAvailable},
	{Key: KeyTBN, Label: "tbn", Default: NotAvailable},
	{Key: KeyTBC, Label: "tbc", Default: NotAvailable},
	{Key: KeyVideoCodec, Label: "video_codec", Default: NotAvailable},
	{Key: KeyVideoProfile, Label: "video_profile", Default: NotAvailable},
	{Key: KeyWidth, Label: "width", Default: NotAvailable},
	{Key: KeyHeight, Label: "height", Default: NotAvailable},
	{Key: KeyVideoBitrate, Label: "video_bitrate", Default: NotAvailable},
	{Key: KeyAudioCodec, Label: "audio_codec", Default: NotAvailable},
	{Key: KeyAudioProfile, Label: "audio_profile", Default: NotAvailable},
	{Key: KeySampleRate, Label: "sample_rate", Default: NotAvailable},
	{Key: KeySampleFormat, Label: "sample_format", Default: NotAvailable},
	{Key: KeyChannels, Label: "channels", Default: NotAvailable},
	{Key: KeyAudioBitrate, Label: "audio_bitrate", Default: NotAvailable},
	{Key: KeyTitle, Label: "title", Default: NotAvailable, Tag: true},
	{Key: KeyArtist, Label: "artist", Default: NotAvailable, Tag: true},
	{Key: KeyAlbum, Label: "album", Default: NotAvailable, Tag: true},
	{Key: KeyAlbumArtist, Label: "album_artist", Default: NotAvailable, Tag: true},
	{Key: KeyComposer, Label: "composer", Default: NotAvailable, Tag: true},
	{Key: KeyGenre, Label: "genre", Default: NotAvailable, Tag: true},
	{Key: KeyDate, Label: "date", Default: NotAvailable, Tag: true},
	{Key: KeyTrack, Label: "track", Default: NotAvailable, Tag: true},
	{Key: KeyComment, Label: "comment", Default: NotAvailable, Tag: true},
	{Key: KeyCopyright, Label: "copyright", Default: NotAvailable, Tag: true},
	{Key: KeyEncoder, Label: "encoder", Default: NotAvailable, Tag: true},
}

// DefaultSchema returns the canonical report layout
func DefaultSchema() *Schema {
	return NewSchema(defaultEntries)
}

// Verbose returns a copy of the schema which prints every entry
func (s *Schema) Verbose() *Schema {
	v := NewSchema(s.entries)
	for i := range v.entries {
		v.entries[i].Summary = true
	}
	return v
}

func (s *Schema) Entries() []Entry {
	result := make([]Entry, len(s.entries))
	copy(result, s.entries)
	return result
}

func (s *Schema) Entry(key Key) (Entry, bool) {
	i, ok := s.index[key]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

func (s *Schema) Len() int { return len(s.entries) }

func (k Key) String() string {
	for _, e := range defaultEntries {
		if e.Key == k {
			return e.Label
		}
	}
	return "unknown"
}
