package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSensitiveHeaders(t *testing.T) {
	in := map[string]string{
		"Authorization": "Bearer abc",
		"Cookie":        "access_token=xyz",
		"X-API-Key":     "secret",
		"Content-Type":  "application/json",
	}

	out := filterSensitiveHeaders(in)

	assert.Equal(t, "[REDACTED]", out["Authorization"])
	assert.Equal(t, "[REDACTED]", out["Cookie"])
	assert.Equal(t, "[REDACTED]", out["X-API-Key"])
	assert.Equal(t, "application/json", out["Content-Type"])
	assert.Equal(t, "Bearer abc", in["Authorization"])
}
