package action

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunSuccess(t *testing.T) {
	res := Run(context.Background(), nil, "create allergy", "allergy created", func(context.Context) (any, error) {
		return 7, nil
	})
	assert.True(t, res.ActionSucceeded)
	assert.Equal(t, "allergy created", res.Message)
	assert.Equal(t, 7, res.Result)
}

func TestRunConvertsError(t *testing.T) {
	res := Run(context.Background(), nil, "create allergy", "allergy created", func(context.Context) (any, error) {
		return nil, errors.New("constraint violated")
	})
	assert.False(t, res.ActionSucceeded)
	assert.Equal(t, "create allergy failed: constraint violated", res.Message)
	assert.Nil(t, res.Result)
}

func TestRunRecoversPanic(t *testing.T) {
	res := Run(context.Background(), nil, "delete problem", "deleted", func(context.Context) (any, error) {
		panic("boom")
	})
	assert.False(t, res.ActionSucceeded)
	assert.Equal(t, "delete problem failed", res.Message)
}

func TestMarkStaleKeepsOutcome(t *testing.T) {
	res := Success("allergy created", 3).MarkStale()
	assert.True(t, res.ActionSucceeded)
	assert.True(t, res.Stale)
	assert.Equal(t, 3, res.Result)
	assert.Equal(t, "allergy created (chart not refreshed, reload to see the latest)", res.Message)
}
