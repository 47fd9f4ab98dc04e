package cli

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Veraticus/brokemate/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgressBar(t *testing.T) {
	out := &syncBuffer{}
	bar := NewProgressBar(out, 3, "Importing expenses...")
	for range 3 {
		require.NoError(t, bar.Add(1))
	}
	assert.True(t, bar.IsFinished())
	assert.Contains(t, out.String(), "3/3")
}

func TestWithSpinner(t *testing.T) {
	want := errors.New("boom")

	err := WithSpinner(context.Background(), io.Discard, "Loading", func(context.Context) error {
		time.Sleep(3 * spinnerInterval)
		return want
	})
	assert.ErrorIs(t, err, want)

	err = WithSpinner(context.Background(), &syncBuffer{}, "Loading", func(context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestFlagIcon(t *testing.T) {
	assert.Equal(t, PositiveIcon, FlagIcon(model.FlagPositive))
	assert.Equal(t, NegativeIcon, FlagIcon(model.FlagNegative))
	assert.Equal(t, "  ", FlagIcon(model.FlagUnset))
}

func TestFormatHelpers(t *testing.T) {
	assert.Contains(t, FormatSuccess("saved"), "saved")
	assert.Contains(t, FormatError("failed"), ErrorIcon)
	assert.Contains(t, FormatTitle("Expenses"), WalletIcon)
	assert.Contains(t, RenderBox("Summary", "Total ₹175.00"), "Total ₹175.00")
}
