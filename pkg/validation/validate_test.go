package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorCollectsAllErrors(t *testing.T) {
	var v Validator
	v.Require("text", "")
	v.UUID("conversationId", "not-a-uuid")
	v.OneOf("type", "bogus", "delivered", "read")

	err := v.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text is required")
	assert.Contains(t, err.Error(), "conversationId must be a valid UUID")
	assert.Contains(t, err.Error(), "type must be one of")
}

func TestValidatorPasses(t *testing.T) {
	var v Validator
	v.Require("text", "hello")
	v.UUID("conversationId", "b8f4f0b0-2b7a-4a56-9a2b-30f42c8d0a11")
	v.OneOf("type", "read", "delivered", "read")
	v.NonNegative("expireAfterMillis", 0)

	assert.NoError(t, v.Err())
}

func TestOneOfSkipsEmpty(t *testing.T) {
	var v Validator
	v.OneOf("backend", "", "production", "staging")
	assert.NoError(t, v.Err())
}
