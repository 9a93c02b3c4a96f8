package expense

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRepositoryContract exercises behaviour every Repository implementation
// must share. newRepo must return an empty repository.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("Insert assigns identity and truncates to milliseconds", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, err := repo.Insert(ctx, Record{
			Title:     "Coffee",
			Amount:    decimal.RequireFromString("4.5"),
			Category:  CategoryFood,
			Notes:     "double shot",
			Timestamp: base.Add(9*time.Hour + 123456789*time.Nanosecond),
		})
		require.NoError(t, err)
		second, err := repo.Insert(ctx, Record{Title: "Bus", Amount: decimal.NewFromInt(3), Timestamp: base})
		require.NoError(t, err)

		assert.NotZero(t, first.Id)
		assert.Greater(t, second.Id, first.Id)
		assert.NotEqual(t, uuid.Nil, first.Uid)
		assert.NotEqual(t, first.Uid, second.Uid)
		assert.Equal(t, base.Add(9*time.Hour+123*time.Millisecond).UnixMilli(), first.Timestamp.UnixMilli())
	})

	t.Run("All returns records in insertion order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Insert(ctx, Record{Title: "Late", Amount: decimal.NewFromInt(1), Timestamp: base.Add(5 * time.Hour)})
		require.NoError(t, err)
		_, err = repo.Insert(ctx, Record{Title: "Early", Amount: decimal.NewFromInt(2), Category: CategoryStaff, Timestamp: base.Add(time.Hour)})
		require.NoError(t, err)

		all, err := repo.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Late", all[0].Title)
		assert.Equal(t, "Early", all[1].Title)
		assert.Equal(t, CategoryStaff, all[1].Category)
		assert.True(t, all[1].Amount.Equal(decimal.NewFromInt(2)))
		assert.Equal(t, "", all[1].Notes)
	})

	t.Run("All on empty repository", func(t *testing.T) {
		repo := newRepo(t)

		all, err := repo.All(context.Background())

		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("ForDay uses a half-open interval and orders newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		start := base
		end := base.AddDate(0, 0, 1)

		atStart, err := repo.Insert(ctx, Record{Title: "at start", Amount: decimal.NewFromInt(1), Timestamp: start})
		require.NoError(t, err)
		_, err = repo.Insert(ctx, Record{Title: "before", Amount: decimal.NewFromInt(1), Timestamp: start.Add(-time.Millisecond)})
		require.NoError(t, err)
		_, err = repo.Insert(ctx, Record{Title: "at end", Amount: decimal.NewFromInt(1), Timestamp: end})
		require.NoError(t, err)
		noonA, err := repo.Insert(ctx, Record{Title: "noon a", Amount: decimal.NewFromInt(1), Timestamp: start.Add(12 * time.Hour)})
		require.NoError(t, err)
		noonB, err := repo.Insert(ctx, Record{Title: "noon b", Amount: decimal.NewFromInt(1), Timestamp: start.Add(12 * time.Hour)})
		require.NoError(t, err)
		lastMs, err := repo.Insert(ctx, Record{Title: "last ms", Amount: decimal.NewFromInt(1), Timestamp: end.Add(-time.Millisecond)})
		require.NoError(t, err)

		day, err := repo.ForDay(ctx, start, end)
		require.NoError(t, err)

		ids := make([]int64, 0, len(day))
		for _, r := range day {
			ids = append(ids, r.Id)
		}
		assert.Equal(t, []int64{lastMs.Id, noonB.Id, noonA.Id, atStart.Id}, ids)
	})

	t.Run("CountSimilar matches title and amount in (since, until]", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Insert(ctx, Record{Title: "Coffee", Amount: decimal.RequireFromString("50.00"), Timestamp: base})
		require.NoError(t, err)
		_, err = repo.Insert(ctx, Record{Title: "Coffee", Amount: decimal.NewFromInt(50), Timestamp: base.Add(time.Hour)})
		require.NoError(t, err)
		_, err = repo.Insert(ctx, Record{Title: "Coffee", Amount: decimal.NewFromInt(51), Timestamp: base.Add(time.Hour)})
		require.NoError(t, err)
		_, err = repo.Insert(ctx, Record{Title: "Tea", Amount: decimal.NewFromInt(50), Timestamp: base.Add(time.Hour)})
		require.NoError(t, err)

		until := base.Add(2 * time.Hour)

		count, err := repo.CountSimilar(ctx, "Coffee", decimal.NewFromInt(50), base.Add(-time.Millisecond), until)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		count, err = repo.CountSimilar(ctx, "Coffee", decimal.NewFromInt(50), base, until)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		count, err = repo.CountSimilar(ctx, "Coffee", decimal.NewFromInt(50), base.Add(-time.Hour), base)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "upper bound is inclusive")

		count, err = repo.CountSimilar(ctx, "Coffee", decimal.NewFromInt(50), base.Add(-time.Hour), base.Add(-time.Millisecond))
		require.NoError(t, err)
		assert.Equal(t, 0, count, "records after until are not counted")

		count, err = repo.CountSimilar(ctx, "Juice", decimal.NewFromInt(50), base.Add(-time.Hour), until)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}
