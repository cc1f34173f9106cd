package middleware_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vnestate/chatbot-platform/internal/middleware"
)

func TestValidateMessageContent(t *testing.T) {
	assert.NoError(t, middleware.ValidateMessageContent("chào bạn"))
	assert.Error(t, middleware.ValidateMessageContent(""))
	assert.Error(t, middleware.ValidateMessageContent(strings.Repeat("a", 100001)))
	assert.Error(t, middleware.ValidateMessageContent(string([]byte{0xff, 0xfe})))
}

func TestValidateSessionID(t *testing.T) {
	assert.NoError(t, middleware.ValidateSessionID("0190e2a7-6d50-7a4e-b131-1f1d1c5b0a2f"))
	assert.Error(t, middleware.ValidateSessionID("not-a-uuid"))
	assert.Error(t, middleware.ValidateSessionID(""))
}

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, middleware.ValidateTitle("Tư vấn mua nhà"))
	assert.Error(t, middleware.ValidateTitle(""))
	assert.Error(t, middleware.ValidateTitle(strings.Repeat("t", 257)))
}
