package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/lectoria/lectoria-api/internal/models"
)

func TestAuditRecordRepositoryListFiltersAndPaginates(t *testing.T) {
	db := setupCourseTestDB(t, &models.AuditRecord{})
	repo := NewAuditRecordRepository(db)

	base := time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC)
	seed := []models.AuditRecord{
		{ActorID: 1, ActorRole: "admin", Action: "course_created", ResourceType: "course", CreatedAt: base},
		{ActorID: 1, ActorRole: "admin", Action: "course_published", ResourceType: "course", CreatedAt: base.Add(time.Minute)},
		{ActorID: 2, ActorRole: "super_admin", Action: "assignment_created", ResourceType: "course_assignment", CreatedAt: base.Add(2 * time.Minute)},
		{ActorID: 2, ActorRole: "super_admin", Action: "course_created", ResourceType: "course", CreatedAt: base.Add(3 * time.Minute)},
	}
	for i := range seed {
		seed[i].Details = datatypes.JSONMap{"seq": i}
		require.NoError(t, repo.Create(context.Background(), &seed[i]))
	}

	all, total, err := repo.List(context.Background(), AuditRecordFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(4), total)
	require.Len(t, all, 4)
	require.Equal(t, "course_created", all[0].Action, "newest entry first")
	require.Equal(t, uint(2), all[0].ActorID)

	actorID := uint(1)
	mine, total, err := repo.List(context.Background(), AuditRecordFilter{ActorID: &actorID})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, mine, 2)

	created, total, err := repo.List(context.Background(), AuditRecordFilter{Action: "course_created"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, created, 2)

	assignments, total, err := repo.List(context.Background(), AuditRecordFilter{ResourceType: "course_assignment"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, assignments, 1)

	paged, total, err := repo.List(context.Background(), AuditRecordFilter{Page: 2, PageSize: 3})
	require.NoError(t, err)
	require.Equal(t, int64(4), total)
	require.Len(t, paged, 1)
	require.Equal(t, seed[0].ID, paged[0].ID, "oldest entry lands on the last page")
}
