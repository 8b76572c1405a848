package repositories_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spshare/domain/contracts"
	"spshare/domain/snapshot"
	"spshare/infrastructure/repositories"
	"spshare/test/helpers"
)

func TestSnapshotLifecycle(t *testing.T) {
	db := helpers.NewTestDatabase(t)
	repo := repositories.NewSqliteSnapshotRepository(db)
	ctx := helpers.TestContext()

	s, err := repo.Create(ctx, "https://contoso.sharepoint.com/sites/a", "overview")
	require.NoError(t, err)
	assert.NotZero(t, s.ID)
	assert.Equal(t, snapshot.StatusRunning, s.Status)

	require.NoError(t, repo.Complete(ctx, s.ID, 3, 120))

	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, snapshot.StatusCompleted, got.Status)
	assert.Equal(t, 3, got.ListsCount)
	assert.Equal(t, 120, got.ItemsCount)
	require.NotNil(t, got.CompletedAt)
	assert.WithinDuration(t, s.StartedAt, got.StartedAt, time.Millisecond)

	err = repo.Fail(ctx, s.ID, errors.New("late failure"))
	assert.ErrorIs(t, err, contracts.ErrSnapshotFinished)

	_, err = repo.Get(ctx, 9999)
	assert.ErrorIs(t, err, contracts.ErrSnapshotNotFound)
	assert.ErrorIs(t, repo.Complete(ctx, 9999, 0, 0), contracts.ErrSnapshotNotFound)
}

func TestSnapshotFailRecordsCause(t *testing.T) {
	db := helpers.NewTestDatabase(t)
	repo := repositories.NewSqliteSnapshotRepository(db)
	ctx := helpers.TestContext()

	s, err := repo.Create(ctx, "https://contoso.sharepoint.com", "detail")
	require.NoError(t, err)
	require.NoError(t, repo.Fail(ctx, s.ID, fmt.Errorf("get lists: %w", errors.New("403 Forbidden"))))

	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, snapshot.StatusFailed, got.Status)
	assert.Equal(t, "get lists: 403 Forbidden", got.Error)
	assert.Equal(t, "detail", got.Mode)
}

func TestSnapshotListNewestFirst(t *testing.T) {
	db := helpers.NewTestDatabase(t)
	repo := repositories.NewSqliteSnapshotRepository(db)
	ctx := helpers.TestContext()

	var ids []int64
	for _, site := range []string{"https://x/a", "https://x/b", "https://x/a"} {
		s, err := repo.Create(ctx, site, "overview")
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}

	all, err := repo.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)

	forA, err := repo.List(ctx, "https://x/a", 10)
	require.NoError(t, err)
	require.Len(t, forA, 2)
	assert.Equal(t, []int64{ids[2], ids[0]}, []int64{forA[0].ID, forA[1].ID})

	limited, err := repo.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestCatalogRoundTrip(t *testing.T) {
	db := helpers.NewTestDatabase(t)
	snapshots := repositories.NewSqliteSnapshotRepository(db)
	catalog := repositories.NewSqliteCatalogRepository(db)
	ctx := helpers.TestContext()
	td := helpers.NewTestData()

	s, err := snapshots.Create(ctx, "https://test.sharepoint.com/sites/team", "overview")
	require.NoError(t, err)

	site, err := snapshot.NewSiteRecord(s.ID, td.SimpleSite("team"))
	require.NoError(t, err)
	require.NoError(t, catalog.SaveSite(ctx, site))

	list, err := snapshot.NewListRecord(s.ID, td.SimpleList(1, false, 5))
	require.NoError(t, err)
	hidden, err := snapshot.NewListRecord(s.ID, td.SimpleList(2, true, 0))
	require.NoError(t, err)
	require.NoError(t, catalog.SaveLists(ctx, []snapshot.ListRecord{hidden, list}))

	var items []snapshot.ItemRecord
	for _, it := range td.Items(1, 5) {
		rec, err := snapshot.NewItemRecord(s.ID, list.ListID, &it)
		require.NoError(t, err)
		items = append(items, rec)
	}
	require.NoError(t, catalog.SaveItems(ctx, items))
	// Saving again upserts.
	require.NoError(t, catalog.SaveItems(ctx, items[:2]))

	gotSite, err := catalog.GetSite(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "team", gotSite.Title)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(gotSite.Raw, &raw))
	assert.Equal(t, "STS", raw["WebTemplate"])

	lists, err := catalog.GetLists(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "List 1", lists[0].Title)
	assert.True(t, lists[1].Hidden)

	page, err := catalog.GetItems(ctx, s.ID, list.ListID, 0, 3)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, 1, page[0].ItemID)

	rest, err := catalog.GetItems(ctx, s.ID, list.ListID, page[2].ItemID, 3)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, 5, rest[1].ItemID)
	assert.Equal(t, "/sites/test/Lists/l/5_.000", rest[1].FileRef)

	_, err = catalog.GetSite(ctx, s.ID+1)
	assert.ErrorIs(t, err, contracts.ErrSnapshotNotFound)
}

func TestCatalogRejectsMixedBatches(t *testing.T) {
	db := helpers.NewTestDatabase(t)
	catalog := repositories.NewSqliteCatalogRepository(db)

	err := catalog.SaveItems(helpers.TestContext(), []snapshot.ItemRecord{
		{SnapshotID: 1, ListID: "l", ItemID: 1, Raw: []byte(`{}`)},
		{SnapshotID: 2, ListID: "l", ItemID: 2, Raw: []byte(`{}`)},
	})
	var mismatch repositories.ErrSnapshotMismatch
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, int64(2), mismatch.Actual)
}

func TestCatalogItemsNeedTheirList(t *testing.T) {
	db := helpers.NewTestDatabase(t)
	snapshots := repositories.NewSqliteSnapshotRepository(db)
	catalog := repositories.NewSqliteCatalogRepository(db)
	ctx := helpers.TestContext()

	s, err := snapshots.Create(ctx, "https://x", "overview")
	require.NoError(t, err)

	err = catalog.SaveItems(ctx, []snapshot.ItemRecord{{SnapshotID: s.ID, ListID: "missing", ItemID: 1, Raw: []byte(`{}`)}})
	assert.Error(t, err)

	got, err := catalog.GetItems(ctx, s.ID, "missing", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
