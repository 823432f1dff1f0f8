package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
)

func newCategoryService(t *testing.T) (*CategoryService, *fakeCategoryRepo, *activityFixture) {
	t.Helper()
	repo := newFakeCategoryRepo()
	act := newActivityFixture(t)
	return NewCategoryService(repo, act.cache, time.Minute, act.service), repo, act
}

func TestCategoryService_CreateRejectsShortName(t *testing.T) {
	svc, repo, _ := newCategoryService(t)

	_, err := svc.Create(context.Background(), CategoryInput{Name: "R"})
	require.Error(t, err)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ErrCodeValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "name")
	assert.Empty(t, repo.items)
}

func TestCategoryService_CreateRejectsMissingParent(t *testing.T) {
	svc, _, _ := newCategoryService(t)

	_, err := svc.Create(context.Background(), CategoryInput{Name: "Rings", ParentID: ptr(uuid.New())})
	require.Error(t, err)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ErrCodeValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "parentId")
}

func TestCategoryService_CreateAndGetRoundTrip(t *testing.T) {
	svc, _, act := newCategoryService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CategoryInput{Name: "  Rings  ", Description: ptr("Кольца")})
	require.NoError(t, err)
	assert.Equal(t, "Rings", created.Name)
	assert.True(t, created.Active)
	assert.Equal(t, 0, created.Level)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, "Кольца", *got.Description)
	assert.Nil(t, got.ParentID)

	records := act.recorded(t)
	require.Len(t, records, 1)
	assert.Equal(t, models.ActivityCategory, records[0].Type)
	assert.Equal(t, models.ActionCreated, records[0].Action)
}

func TestCategoryService_Levels(t *testing.T) {
	svc, _, _ := newCategoryService(t)
	ctx := context.Background()

	rings, err := svc.Create(ctx, CategoryInput{Name: "Rings"})
	require.NoError(t, err)
	engagement, err := svc.Create(ctx, CategoryInput{Name: "Engagement Rings", ParentID: &rings.ID})
	require.NoError(t, err)
	solitaire, err := svc.Create(ctx, CategoryInput{Name: "Solitaire Rings", ParentID: &engagement.ID})
	require.NoError(t, err)

	assert.Equal(t, 0, rings.Level)
	assert.Equal(t, 1, engagement.Level)
	assert.Equal(t, 2, solitaire.Level)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Rings", "Engagement Rings", "Solitaire Rings"},
		[]string{list[0].Name, list[1].Name, list[2].Name})
	assert.Equal(t, []int{0, 1, 2}, []int{list[0].Level, list[1].Level, list[2].Level})
}

func TestCategoryService_ListIsCachedAndInvalidated(t *testing.T) {
	svc, repo, _ := newCategoryService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CategoryInput{Name: "Rings"})
	require.NoError(t, err)

	_, err = svc.List(ctx)
	require.NoError(t, err)
	_, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	_, err = svc.Create(ctx, CategoryInput{Name: "Necklaces"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, repo.listCalls)
}

func TestCategoryService_ReparentUpdatesDescendantLevels(t *testing.T) {
	svc, _, _ := newCategoryService(t)
	ctx := context.Background()

	jewelry, _ := svc.Create(ctx, CategoryInput{Name: "Jewelry"})
	rings, _ := svc.Create(ctx, CategoryInput{Name: "Rings"})
	engagement, _ := svc.Create(ctx, CategoryInput{Name: "Engagement Rings", ParentID: &rings.ID})

	moved, err := svc.Update(ctx, rings.ID, CategoryPatch{ParentSet: true, ParentID: &jewelry.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Level)

	child, err := svc.Get(ctx, engagement.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, child.Level)

	root, err := svc.Update(ctx, rings.ID, CategoryPatch{ParentSet: true})
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)
	assert.Equal(t, 0, root.Level)
}

func TestCategoryService_UpdateRejectsCycle(t *testing.T) {
	svc, _, _ := newCategoryService(t)
	ctx := context.Background()

	rings, _ := svc.Create(ctx, CategoryInput{Name: "Rings"})
	engagement, _ := svc.Create(ctx, CategoryInput{Name: "Engagement Rings", ParentID: &rings.ID})

	_, err := svc.Update(ctx, rings.ID, CategoryPatch{ParentSet: true, ParentID: &engagement.ID})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Update(ctx, rings.ID, CategoryPatch{ParentSet: true, ParentID: &rings.ID})
	assert.True(t, apperror.IsValidation(err))
}

func TestCategoryService_UpdateKeepsParentWhenNotSet(t *testing.T) {
	svc, _, _ := newCategoryService(t)
	ctx := context.Background()

	rings, _ := svc.Create(ctx, CategoryInput{Name: "Rings"})
	engagement, _ := svc.Create(ctx, CategoryInput{Name: "Engagement Rings", ParentID: &rings.ID})

	updated, err := svc.Update(ctx, engagement.ID, CategoryPatch{Name: ptr("Обручальные кольца"), Active: ptr(false)})
	require.NoError(t, err)
	require.NotNil(t, updated.ParentID)
	assert.Equal(t, rings.ID, *updated.ParentID)
	assert.Equal(t, "Обручальные кольца", updated.Name)
	assert.False(t, updated.Active)
}

func TestCategoryService_DeleteBlockedByChildrenAndProducts(t *testing.T) {
	svc, repo, _ := newCategoryService(t)
	ctx := context.Background()

	rings, _ := svc.Create(ctx, CategoryInput{Name: "Rings"})
	engagement, _ := svc.Create(ctx, CategoryInput{Name: "Engagement Rings", ParentID: &rings.ID})

	err := svc.Delete(ctx, rings.ID)
	assert.True(t, apperror.IsConflict(err))

	repo.products[engagement.ID] = 3
	err = svc.Delete(ctx, engagement.ID)
	assert.True(t, apperror.IsConflict(err))

	repo.products[engagement.ID] = 0
	require.NoError(t, svc.Delete(ctx, engagement.ID))
	require.NoError(t, svc.Delete(ctx, rings.ID))

	_, err = svc.Get(ctx, rings.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCategoryService_Tree(t *testing.T) {
	svc, _, _ := newCategoryService(t)
	ctx := context.Background()

	rings, _ := svc.Create(ctx, CategoryInput{Name: "Rings"})
	_, _ = svc.Create(ctx, CategoryInput{Name: "Engagement Rings", ParentID: &rings.ID})
	_, _ = svc.Create(ctx, CategoryInput{Name: "Bracelets"})

	tree, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "Bracelets", tree[0].Name)
	assert.Equal(t, "Rings", tree[1].Name)
	require.Len(t, tree[1].Children, 1)
	assert.Equal(t, "Engagement Rings", tree[1].Children[0].Name)
}
