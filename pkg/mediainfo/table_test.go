package mediainfo

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableDefaults(t *testing.T) {
	schema := DefaultSchema()
	table := NewTable(schema)
	assert.Equal(t, schema.Len(), table.Len())
	for _, e := range schema.Entries() {
		assert.Equal(t, NotAvailable, table.Get(e.Key), e.Label)
		assert.False(t, table.IsSet(e.Key))
	}
}

func TestTableSetOutsideSchema(t *testing.T) {
	schema := NewSchema([]Entry{{Key: KeyDuration, Label: "duration", Default: NotAvailable, Summary: true}})
	table := NewTable(schema)
	assert.False(t, table.Set(KeyWidth, "1920"))
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, "", table.Get(KeyWidth))
	assert.True(t, table.Set(KeyDuration, "00:00:01.00"))
}

func TestTableSetIfUnsetAndReset(t *testing.T) {
	table := NewTable(DefaultSchema())
	assert.True(t, table.SetIfUnset(KeyDAR, "16:9"))
	assert.False(t, table.SetIfUnset(KeyDAR, "4:3"))
	assert.Equal(t, "16:9", table.Get(KeyDAR))

	table.Reset()
	assert.Equal(t, NotAvailable, table.Get(KeyDAR))
	assert.Equal(t, DefaultSchema().Len(), table.Len())
}

func TestTableMarshalJSONKeepsSchemaOrder(t *testing.T) {
	table := NewTable(DefaultSchema())
	table.Set(KeyWidth, "1920")
	data, err := json.Marshal(table)
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasPrefix(s, `{"duration":"N/A","start_time":"N/A","bitrate":"N/A"`), s)
	assert.Less(t, strings.Index(s, `"has_video"`), strings.Index(s, `"width":"1920"`))

	var m map[string]string
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, table.Map(), m)
}

func TestSchemaVerbose(t *testing.T) {
	schema := DefaultSchema()
	verbose := schema.Verbose()
	for _, e := range verbose.Entries() {
		assert.True(t, e.Summary)
	}
	e, ok := schema.Entry(KeySampleRate)
	require.True(t, ok)
	assert.False(t, e.Summary)
}

func TestSchemaLabelsFitPadding(t *testing.T) {
	for _, e := range DefaultSchema().Entries() {
		assert.LessOrEqual(t, len(e.Label), LabelWidth, e.Label)
	}
	assert.Equal(t, "sample_rate", KeySampleRate.String())
}
