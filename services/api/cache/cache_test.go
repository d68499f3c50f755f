package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/02loveslollipop/plant-growth-tracker/services/api/db"
)

func TestNoop_AlwaysMisses(t *testing.T) {
	var c PlantCache = Noop{}
	ctx := context.Background()

	assert.NoError(t, c.SetPlants(ctx, []db.Plant{{ID: 1, Name: "Basil"}}))

	plants, ok, err := c.GetPlants(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, plants)
	assert.NoError(t, c.Invalidate(ctx))
	assert.NoError(t, c.Close())
}
