package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := Input("make is required")
	assert.Equal(t, "[INPUT_ERROR] make is required", err.Error())

	wrapped := Config("failed to load rate card", fmt.Errorf("boom"))
	assert.Equal(t, "[CONFIG_ERROR] failed to load rate card: boom", wrapped.Error())
}

func TestIsTypeWalksChain(t *testing.T) {
	base := NotFound("product", "acme-gold")
	outer := fmt.Errorf("rating failed: %w", base)

	assert.True(t, IsType(outer, TypeNotFound))
	assert.False(t, IsType(outer, TypeInput))
	assert.False(t, IsType(nil, TypeInput))
}

func TestStdlibIsMatchesByType(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Inputf("term %d is invalid", 0))

	assert.True(t, stderrors.Is(err, New(TypeInput, "")))
	assert.False(t, stderrors.Is(err, New(TypeConfig, "")))
}

func TestNotFoundCarriesContext(t *testing.T) {
	err := NotFound("product", "acme-gold")
	assert.Equal(t, "product", err.Context["resource"])
	assert.Equal(t, "acme-gold", err.Context["id"])
}
