package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransient(t *testing.T) {
	base := errors.New("connection reset")
	err := Transient(base)

	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "transient")
}

func TestTransient_Nil(t *testing.T) {
	assert.NoError(t, Transient(nil))
	assert.False(t, IsTransient(nil))
}

func TestTransient_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("stage metadata: %w", Transient(errors.New("timeout")))
	assert.True(t, IsTransient(err))
}

func TestPermanent(t *testing.T) {
	base := errors.New("repository not found")
	err := Permanent(base)

	require.Error(t, err)
	assert.False(t, IsTransient(err))
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "permanent")
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}

func TestInvariant(t *testing.T) {
	err := Invariant(StageRisk, ErrMissingCitation)

	require.Error(t, err)
	assert.True(t, IsInvariant(err))
	assert.ErrorIs(t, err, ErrMissingCitation)
	assert.Contains(t, err.Error(), "risk")

	var inv *InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, StageRisk, inv.Stage)
}

func TestInvariant_Nil(t *testing.T) {
	assert.NoError(t, Invariant(StageRisk, nil))
	assert.False(t, IsInvariant(nil))
}

func TestInvariant_NotConfusedWithTransient(t *testing.T) {
	err := Invariant(StageMetadata, errors.New("boom"))
	assert.False(t, IsTransient(err))

	err = Transient(errors.New("boom"))
	assert.False(t, IsInvariant(err))
}
