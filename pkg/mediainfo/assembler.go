/*
Copyright 2020 info-age GmbH, Basel.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS-IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package mediainfo derives a fixed table of descriptive metadata from a
// demuxed container summary and renders it as text.
package mediainfo

import (
	"strings"

	"github.com/op/go-logging"
)

// Assembler is safe for concurrent use, every call works on its own table.
type Assembler struct {
	schema    *Schema
	resolver  *CodecNameResolver
	mimeRules MimeRules
	log       *logging.Logger
}

// NewAssembler creates an assembler. nil parameters are replaced by the defaults.
func NewAssembler(schema *Schema, registry DecoderRegistry, mimeRules MimeRules, log *logging.Logger) *Assembler {
	if schema == nil {
		schema = DefaultSchema()
	}
	if registry == nil {
		registry = DefaultRegistry()
	}
	if mimeRules == nil {
		mimeRules = DefaultMimeRules
	}
	if log == nil {
		log = logging.MustGetLogger("mediainfo")
	}
	return &Assembler{
		schema:    schema,
		resolver:  NewCodecNameResolver(registry),
		mimeRules: mimeRules,
		log:       log,
	}
}

func (a *Assembler) Schema() *Schema { return a.schema }

func (a *Assembler) Assemble(cs *ContainerSummary) *Table {
	t := NewTable(a.schema)
	a.AssembleInto(t, cs)
	return t
}

// AssembleInto resets t and fills it from cs
func (a *Assembler) AssembleInto(t *Table, cs *ContainerSummary) {
	t.Reset()

	a.containerTags(t, cs.Tags)

	t.Set(KeyDuration, FormatDuration(cs.Duration, TimeBase))
	if cs.StartTime != NoValue {
		t.Set(KeyStartTime, FormatStartTime(cs.StartTime, TimeBase))
	}
	t.Set(KeyBitrate, FormatBitrate(cs.BitRate))

	sc := NewStreamClassifier(a.resolver, a.log)
	sc.Classify(t, cs.Streams)
	a.log.Debugf("%s: %d video, %d audio, %d other streams", cs.FormatName, sc.Video, sc.Audio, sc.Other)

	if sc.Audio > 0 {
		t.Set(KeyHasAudio, "True")
	}
	if sc.Video > 0 {
		t.Set(KeyHasVideo, "True")
	}
	if mimetype, ok := sc.MimeType(a.mimeRules, cs.FormatName); ok {
		t.Set(KeyMimetype, mimetype)
	} else {
		a.log.Debugf("no mimetype for format %s", cs.FormatName)
	}
}

// containerTags copies container metadata. A list holding only the language is ignored.
func (a *Assembler) containerTags(t *Table, tags []Tag) {
	if len(tags) == 0 || (len(tags) == 1 && strings.EqualFold(tags[0].Key, "language")) {
		return
	}
	for _, e := range a.schema.entries {
		if !e.Tag {
			continue
		}
		if tag, ok := findTag(tags, e.Label); ok {
			t.Set(e.Key, tag.Value)
		}
	}
}

// findTag returns the first tag whose key starts with name, ignoring case
func findTag(tags []Tag, name string) (Tag, bool) {
	name = strings.ToLower(name)
	for _, tag := range tags {
		if strings.HasPrefix(strings.ToLower(tag.Key), name) {
			return tag, true
		}
	}
	return Tag{}, false
}
