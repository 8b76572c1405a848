package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"spshare/domain/sharepoint"
	"spshare/domain/snapshot"
	"spshare/test/helpers"
	"spshare/test/mocks"
)

func expectSiteWithOneList(sp *mocks.MockSiteEnumerator, repos *helpers.MockRepositories) *sharepoint.List {
	testData := helpers.NewTestData()
	list := testData.SimpleList(1, false, 2)
	sp.On("GetSite", mock.Anything, testSiteURL).Return(testData.SimpleSite("backup"), nil)
	sp.On("GetLists", mock.Anything, testSiteURL).Return([]sharepoint.List{*list}, nil)
	repos.Catalog.On("SaveSite", mock.Anything, mock.Anything).Return(nil)
	repos.Catalog.On("SaveLists", mock.Anything, mock.Anything).Return(nil)
	return list
}

func TestSnapshotRunner_Start(t *testing.T) {
	// Arrange
	repos := helpers.NewMockRepositories()
	sp := &mocks.MockSiteEnumerator{}
	list := expectSiteWithOneList(sp, repos)

	repos.ExpectSnapshotCreated(11, testSiteURL)
	sp.On("WalkListItems", mock.Anything, testSiteURL, list.ID, mock.Anything, mock.Anything).
		Return([][]sharepoint.ListItem{helpers.NewTestData().Items(1, 2)}, nil)
	repos.Catalog.On("SaveItems", mock.Anything, mock.Anything).Return(nil)
	repos.Snapshots.On("Complete", mock.Anything, int64(11), 1, 2).Return(nil)
	repos.Snapshots.On("Get", mock.Anything, int64(11)).Return(&snapshot.Snapshot{ID: 11, Status: snapshot.StatusCompleted}, nil)

	runner := NewSnapshotRunner(context.Background(), NewSnapshotService(sp, repos.Snapshots, repos.Catalog))

	// Act
	snap, err := runner.Start(context.Background(), snapshot.DefaultParameters(testSiteURL))
	runner.Wait()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(11), snap.ID)
	assert.Equal(t, snapshot.StatusRunning, snap.Status, "Start returns the snapshot as queued")
	assert.Empty(t, runner.Running())
	repos.AssertAllExpectations(t)
}

func TestSnapshotRunner_Cancel(t *testing.T) {
	// Arrange
	repos := helpers.NewMockRepositories()
	sp := &mocks.MockSiteEnumerator{}
	list := expectSiteWithOneList(sp, repos)

	walking := make(chan struct{})
	repos.ExpectSnapshotCreated(12, testSiteURL)
	sp.On("WalkListItems", mock.Anything, testSiteURL, list.ID, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			close(walking)
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.Canceled)
	repos.Snapshots.On("Fail", mock.Anything, int64(12), mock.Anything).Return(nil)

	runner := NewSnapshotRunner(context.Background(), NewSnapshotService(sp, repos.Snapshots, repos.Catalog))

	// Act
	snap, err := runner.Start(context.Background(), snapshot.DefaultParameters(testSiteURL))
	require.NoError(t, err)
	<-walking
	assert.Equal(t, []int64{12}, runner.Running())

	require.NoError(t, runner.Cancel(snap.ID))
	runner.Wait()

	// Assert
	assert.Empty(t, runner.Running())
	assert.ErrorIs(t, runner.Cancel(snap.ID), ErrSnapshotNotRunning)
	repos.Snapshots.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repos.AssertAllExpectations(t)
}

func TestSnapshotRunner_StartRejectsInvalidParameters(t *testing.T) {
	repos := helpers.NewMockRepositories()
	runner := NewSnapshotRunner(context.Background(), NewSnapshotService(&mocks.MockSiteEnumerator{}, repos.Snapshots, repos.Catalog))

	_, err := runner.Start(context.Background(), snapshot.Parameters{})

	assert.Error(t, err)
	assert.Empty(t, runner.Running())
}
