package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTranslations(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveTranslation(ctx, &Translation{Hash: "0xh1", Lang: "en", Text: "hello"}))
	require.NoError(t, st.SaveTranslation(ctx, &Translation{Hash: "0xh1", Lang: "de", Text: "hallo"}))

	// Upsert replaces the text for an existing (hash, lang) pair
	require.NoError(t, st.SaveTranslation(ctx, &Translation{Hash: "0xh1", Lang: "en", Text: "hi"}))

	rows, err := st.Translations(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	texts := map[string]string{}
	for _, tr := range rows {
		texts[tr.Lang] = tr.Text
	}
	require.Equal(t, "hi", texts["en"])
	require.Equal(t, "hallo", texts["de"])
}

func TestOrderResponsesAndActivity(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	now := time.Now()

	require.NoError(t, st.SaveOrderResponse(ctx, &OrderResponse{
		OrderIndex: 1, FreelancerAddress: "0xF1", Comment: "bid", Price: 100, CreatedAt: now,
	}))
	require.NoError(t, st.SaveOrderResponse(ctx, &OrderResponse{
		OrderIndex: 1, FreelancerAddress: "0xF2", Comment: "bid", Price: 90, CreatedAt: now,
	}))
	require.NoError(t, st.SaveOrderResponse(ctx, &OrderResponse{
		OrderIndex: 2, FreelancerAddress: "0xF1", Comment: "bid", Price: 50, CreatedAt: now,
	}))

	byOrder, err := st.ResponsesByOrder(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byOrder, 2)

	all, err := st.OrderResponses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	require.NoError(t, st.SaveOrderActivity(ctx, &OrderActivity{
		OrderIndex: 1, Kind: "status_change", Actor: "0xF1", Note: "accepted", CreatedAt: now,
	}))

	activity, err := st.ActivityByOrder(ctx, 1)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	require.Equal(t, "status_change", activity[0].Kind)

	activity, err = st.ActivityByOrder(ctx, 2)
	require.NoError(t, err)
	require.Empty(t, activity)
}
