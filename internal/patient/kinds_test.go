package patient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryKinds(t *testing.T) {
	assert.Len(t, HistoryKinds, 9)
	assert.True(t, HistoryDiet.Valid())
	assert.False(t, HistoryKind("astrology").Valid())
	assert.Equal(t, "psychological status", HistoryPsychological.Label())
}

func TestRelatives(t *testing.T) {
	assert.True(t, RelativeMaternalGrandparent.Valid())
	assert.False(t, Relative("cousin").Valid())
}
