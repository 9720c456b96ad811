package mediainfo

// MimeRule maps a demuxer short name to a mime subtype
type MimeRule struct {
	Format  string
	Subtype string
}

type MimeRules []MimeRule

var DefaultMimeRules = MimeRules{
	{Format: "mov,mp4,m4a,3gp,3g2,mj2", Subtype: "mp4"},
	{Format: "mp4", Subtype: "mp4"},
	{Format: "mov", Subtype: "quicktime"},
	{Format: "3gp", Subtype: "3gpp"},
	{Format: "matroska,webm", Subtype: "x-matroska"},
	{Format: "matroska", Subtype: "x-matroska"},
	{Format: "webm", Subtype: "webm"},
	{Format: "avi", Subtype: "x-msvideo"},
	{Format: "asf", Subtype: "x-ms-asf"},
	{Format: "flv", Subtype: "x-flv"},
	{Format: "mpegts", Subtype: "mp2t"},
	{Format: "mpeg", Subtype: "mpeg"},
	{Format: "mp3", Subtype: "mpeg"},
	{Format: "ogg", Subtype: "ogg"},
	{Format: "wav", Subtype: "x-wav"},
	{Format: "flac", Subtype: "flac"},
	{Format: "aac", Subtype: "aac"},
	{Format: "ac3", Subtype: "ac3"},
	{Format: "amr", Subtype: "amr"},
	{Format: "aiff", Subtype: "x-aiff"},
}

// Lookup finds the subtype of the first rule matching format exactly
func (mr MimeRules) Lookup(format string) (string, bool) {
	for _, rule := range mr {
		if rule.Format == format {
			return rule.Subtype, true
		}
	}
	return "", false
}
