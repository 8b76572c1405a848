package sharepoint

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt64Unmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    Int64
		wantErr bool
	}{
		{`42`, 42, false},
		{`"9007199254740993"`, 9007199254740993, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`1.0`, 1, false},
		{`"abc"`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var v Int64
			err := json.Unmarshal([]byte(tt.in), &v)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2019, 5, 6, 8, 30, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2019-05-06T08:30:00Z", want},
		{"2019-05-06T08:30:00", want},
		{"2019-05-06T10:30:00+02:00", want},
		{"/Date(1557131400000)/", want},
		{"/Date(1557131400000+0000)/", want},
		{"", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTime(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	_, err := ParseTime("yesterday")
	assert.Error(t, err)
}

func TestTimeJSONRoundTrip(t *testing.T) {
	var v struct {
		Created Time `json:"Created"`
		Empty   Time `json:"Empty"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"Created":"2019-05-06T08:30:00Z","Empty":null}`), &v))
	assert.True(t, v.Empty.IsZero())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Created":"2019-05-06T08:30:00Z","Empty":null}`, string(out))
}

func TestIsXML(t *testing.T) {
	assert.True(t, IsXML("application/atom+xml;type=feed", nil))
	assert.True(t, IsXML("application/xml", nil))
	assert.False(t, IsXML("application/json;odata=verbose", []byte("<x/>")))
	assert.True(t, IsXML("", []byte("  <entry/>")))
	assert.False(t, IsXML("", []byte(`{"d":{}}`)))
}

func TestDecodeCollection(t *testing.T) {
	lists, err := DecodeCollection[List]([]byte(`{"d":{"results":[{"Id":"a","Title":"Docs","BaseTemplate":101,"BaseType":1},{"Id":"b","Title":"Tasks","BaseTemplate":107}]}}`), "application/json")
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.True(t, lists[0].IsDocumentLibrary())
	assert.Equal(t, ListTemplateTasks, lists[1].BaseTemplate)

	one, err := DecodeCollection[List]([]byte(`{"d":{"Id":"a"}}`), "application/json")
	require.NoError(t, err)
	assert.Len(t, one, 1)

	empty, err := DecodeCollection[List]([]byte(`{"value":[]}`), "application/json")
	require.NoError(t, err)
	assert.Empty(t, empty)

	first, err := Decode[List]([]byte(`{"value":[{"Id":"z"}]}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, "z", first.ID)

	_, err = Decode[List]([]byte(`{"value":[]}`), "application/json")
	assert.Error(t, err)
}
