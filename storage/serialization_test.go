package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/reposcout/core"
)

func TestMarshalUnmarshalRecordDoc(t *testing.T) {
	doc := &core.RecordDoc{
		Record: &core.Record{
			Platform:    core.PlatformGitLab,
			FullName:    "group/project",
			Description: "A project",
			Topics:      []string{"a", "b"},
			Stars:       3,
			PushedAt:    time.Now().UTC().Truncate(time.Microsecond),
		},
		Readme: "readme",
	}

	data := MarshalRecordDoc(doc)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalRecordDoc(data)
	require.NoError(t, err)
	assert.Equal(t, doc.Readme, decoded.Readme)
	assert.Equal(t, *doc.Record, *decoded.Record)
}

func TestUnmarshalRecordDoc_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty data", []byte{}, ErrSerializationFailed},
		{"trailing bytes", append(MarshalRecordDoc(&core.RecordDoc{Record: &core.Record{FullName: "x"}}), 0, 0), ErrTruncatedData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalRecordDoc(tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
