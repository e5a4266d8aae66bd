// internal/services/conversation_service_test.go
package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagePayloadAcceptsObject(t *testing.T) {
	var msg MessagePayload
	require.NoError(t, json.Unmarshal([]byte(`{"type":"inbound","content":"interested, call me"}`), &msg))
	assert.Equal(t, "inbound", msg.Type)
	assert.Equal(t, "interested, call me", msg.Content)
}

func TestMessagePayloadAcceptsBareString(t *testing.T) {
	var msg MessagePayload
	require.NoError(t, json.Unmarshal([]byte(`"just the text"`), &msg))
	assert.Empty(t, msg.Type)
	assert.Equal(t, "just the text", msg.Content)
}

func TestMessagePayloadInsideRequest(t *testing.T) {
	var req ConversationUpdateRequest
	body := `{"prospect_id":"7b6c4a1e-8f3d-4e2a-9c5b-1a2b3c4d5e6f","message":"quick reply"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.NotNil(t, req.Message)
	assert.Equal(t, "quick reply", req.Message.Content)
	require.NotNil(t, req.ProspectID)
}

func TestSeedScoreStaysInBand(t *testing.T) {
	for i := 0; i < 1000; i++ {
		score := seedScore()
		assert.GreaterOrEqual(t, score, 30)
		assert.LessOrEqual(t, score, 70)
	}
}
