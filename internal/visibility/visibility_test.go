package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/models"
)

func TestFilterDropsHiddenMessages(t *testing.T) {
	msgs := []models.Message{
		{ID: 1, Body: "a"},
		{ID: 2, Body: "b"},
		{ID: 3, Body: "c"},
	}
	hidden := map[int]struct{}{2: {}}

	visible := Filter(msgs, hidden)

	require.Len(t, visible, 2)
	assert.Equal(t, 1, visible[0].ID)
	assert.Equal(t, 3, visible[1].ID)
}

func TestFilterNoHiddenReturnsInput(t *testing.T) {
	msgs := []models.Message{{ID: 1}, {ID: 2}}

	assert.Equal(t, msgs, Filter(msgs, nil))
	assert.Equal(t, msgs, Filter(msgs, map[int]struct{}{}))
}

func TestFilterAllHidden(t *testing.T) {
	msgs := []models.Message{{ID: 1}, {ID: 2}}
	hidden := map[int]struct{}{1: {}, 2: {}}

	assert.Empty(t, Filter(msgs, hidden))
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	msgs := []models.Message{{ID: 1}, {ID: 2}, {ID: 3}}
	Filter(msgs, map[int]struct{}{1: {}})

	require.Len(t, msgs, 3)
	assert.Equal(t, 1, msgs[0].ID)
}
