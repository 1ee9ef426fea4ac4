package seed

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/opsconsole/internal/entities"
	"github.com/matthewbaird/opsconsole/internal/store"
)

func TestDocuments_CoverEveryCollection(t *testing.T) {
	docs := Documents()
	for _, c := range entities.Collections() {
		assert.NotEmpty(t, docs[c.Name], c.Name)
	}
	assert.ElementsMatch(t, Order, entities.Names)
}

func TestDocuments_Customers(t *testing.T) {
	byStatus := map[string]int{}
	jane := false
	customers := Documents()["customers"]
	for _, d := range customers {
		byStatus[d["status"].(string)]++
		if d["first_name"] == "Jane" && d["last_name"] == "Smith" {
			jane = true
		}
	}
	assert.True(t, jane)
	assert.Len(t, customers, 4)
	assert.Equal(t, map[string]int{"active": 3, "inactive": 1}, byStatus)
}

func TestDemo_Idempotent(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, Demo(ctx, st))
	require.NoError(t, Demo(ctx, st))

	n, err := st.Count(ctx, "customers")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	jane, err := st.Get(ctx, "customers", "cus-1001")
	require.NoError(t, err)
	assert.Equal(t, "system", jane["created_by"])
}
