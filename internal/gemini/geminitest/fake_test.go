package geminitest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/halalcheck/internal/gemini/geminitest"
)

func TestFakeFirstMatchWins(t *testing.T) {
	f := (&geminitest.Fake{Default: "none"}).
		On("KitKat", "chocolate").
		On("Kit", "generic")

	for range 20 {
		got, err := f.Generate(context.Background(), "ingredients of KitKat in UK")
		require.NoError(t, err)
		assert.Equal(t, "chocolate", got)
	}

	got, err := f.Generate(context.Background(), "ingredients of Kitchen Roll")
	require.NoError(t, err)
	assert.Equal(t, "generic", got)

	got, err = f.Generate(context.Background(), "ingredients of Sugar")
	require.NoError(t, err)
	assert.Equal(t, "none", got)

	assert.Len(t, f.Prompts(), 22)
}

func TestFakeErr(t *testing.T) {
	boom := errors.New("boom")
	f := (&geminitest.Fake{Err: boom}).On("x", "y")

	_, err := f.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, f.Prompts(), 1)
}
