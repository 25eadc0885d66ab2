package serialization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name   string                 `json:"name" msgpack:"name"`
	Count  int                    `json:"count" msgpack:"count"`
	Values map[string]interface{} `json:"values" msgpack:"values"`
}

func samplePayload() payload {
	return payload{
		Name:  "thread-snapshot",
		Count: 3,
		Values: map[string]interface{}{
			"node": "approve_deploy",
		},
	}
}

func TestSerializerRoundTrip(t *testing.T) {
	cases := []struct {
		name       string
		serializer *Serializer
	}{
		{"default msgpack+zstd", DefaultSerializer()},
		{"msgpack no compression", NewSerializer(Config{Codec: NewMsgPackCodec(), Compression: CompressionNone})},
		{"json gzip", NewSerializer(Config{Codec: NewJSONCodec(), Compression: CompressionGzip})},
		{"json zstd", NewSerializer(Config{Codec: NewJSONCodec(), Compression: CompressionZstd})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := samplePayload()
			data, err := tc.serializer.Serialize(in)
			require.NoError(t, err)
			require.NotEmpty(t, data)

			var out payload
			require.NoError(t, tc.serializer.Deserialize(data, &out))
			assert.Equal(t, in.Name, out.Name)
			assert.Equal(t, in.Count, out.Count)
			assert.Equal(t, "approve_deploy", out.Values["node"])
		})
	}
}

func TestSerializerRejectsGarbage(t *testing.T) {
	s := DefaultSerializer()
	var out payload
	err := s.Deserialize([]byte("not a zstd frame"), &out)
	assert.Error(t, err)
}

func TestCodecNames(t *testing.T) {
	assert.Equal(t, "json", NewJSONCodec().Name())
	assert.Equal(t, "msgpack", NewMsgPackCodec().Name())
}
