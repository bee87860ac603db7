package messaging

import (
	"encoding/json"
	"testing"

	"github.com/fiapx/fiapx-video-events/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	payload := entity.VideoUploadedPayload{VideoID: "v1", UserID: "u1", Filename: "f.mp4", StorageKey: "k1"}

	env, err := NewEnvelope(entity.EventVideoUploaded, payload)
	require.NoError(t, err)
	body, err := env.Marshal()
	require.NoError(t, err)

	decoded, err := DecodeEnvelope(body)
	require.NoError(t, err)
	assert.Equal(t, entity.EventVideoUploaded, decoded.Type)
	assert.Equal(t, "v1", decoded.VideoID())

	var got entity.VideoUploadedPayload
	require.NoError(t, json.Unmarshal(decoded.Payload, &got))
	assert.Equal(t, payload, got)
}

func TestEnvelopeWireShape(t *testing.T) {
	env, err := NewEnvelope(entity.EventVideoProcessed, entity.NewVideoCompleted("v1", "u1", "frames/u1/v1.zip"))
	require.NoError(t, err)
	body, err := env.Marshal()
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "video.processed",
		"payload": {"videoId":"v1","userId":"u1","status":"COMPLETED","downloadKey":"frames/u1/v1.zip"}
	}`, string(body))
}

func TestNewEnvelopeRejects(t *testing.T) {
	_, err := NewEnvelope("", map[string]string{"videoId": "v1"})
	assert.ErrorIs(t, err, ErrUnknownEventType)

	_, err = NewEnvelope(entity.EventVideoUploaded, []string{"not", "an", "object"})
	assert.ErrorIs(t, err, ErrSchemaValidation)

	_, err = NewEnvelope(entity.EventVideoUploaded, make(chan int))
	assert.Error(t, err)
}

func TestDecodeEnvelopeRejects(t *testing.T) {
	cases := map[string]string{
		"invalid json":    `{invalid json`,
		"missing type":    `{"payload":{"videoId":"v1"}}`,
		"empty type":      `{"type":"","payload":{}}`,
		"missing payload": `{"type":"video.uploaded"}`,
		"array payload":   `{"type":"video.uploaded","payload":[1,2]}`,
		"string payload":  `{"type":"video.uploaded","payload":"v1"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeEnvelope([]byte(body))
			assert.ErrorIs(t, err, ErrSchemaValidation)
		})
	}
}

func TestEnvelopeVideoIDMissing(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":"x","payload":{"other":1}}`))
	require.NoError(t, err)
	assert.Empty(t, env.VideoID())
}
