package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/shared"
)

type fakeRepo struct {
	nextID int64
	rows   map[int64]Access
	roles  map[int64]bool
	menus  map[int64]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		rows:  map[int64]Access{},
		roles: map[int64]bool{},
		menus: map[int64]bool{},
	}
}

func (f *fakeRepo) List(ctx context.Context, req ListAccessRequest) ([]AccessDetail, int, error) {
	details := []AccessDetail{}
	for _, row := range f.rows {
		details = append(details, AccessDetail{Access: row})
	}
	return details, len(details), nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (AccessDetail, error) {
	row, ok := f.rows[id]
	if !ok {
		return AccessDetail{}, shared.ErrNotFound
	}
	return AccessDetail{Access: row}, nil
}

func (f *fakeRepo) Find(ctx context.Context, roleID, menuID int64) (Access, error) {
	for _, row := range f.rows {
		if row.RoleID == roleID && row.MenuID == menuID {
			return row, nil
		}
	}
	return Access{}, shared.ErrNotFound
}

func (f *fakeRepo) Create(ctx context.Context, a Access) (Access, error) {
	f.nextID++
	a.ID = f.nextID
	f.rows[a.ID] = a
	return a, nil
}

func (f *fakeRepo) UpdateFlags(ctx context.Context, id int64, flags Flags) error {
	row, ok := f.rows[id]
	if !ok {
		return shared.ErrNotFound
	}
	row.Flags = flags
	f.rows[id] = row
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeRepo) DeleteByRole(ctx context.Context, roleID int64) (int64, error) {
	var removed int64
	for id, row := range f.rows {
		if row.RoleID == roleID {
			delete(f.rows, id)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeRepo) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	return f.roles[roleID], nil
}

func (f *fakeRepo) MenuExists(ctx context.Context, menuID int64) (bool, error) {
	return f.menus[menuID], nil
}

func (f *fakeRepo) ViewableFlags(ctx context.Context, roleID int64) (map[int64]Flags, error) {
	out := map[int64]Flags{}
	for _, row := range f.rows {
		if row.RoleID == roleID && row.CanView {
			out[row.MenuID] = row.Flags
		}
	}
	return out, nil
}

func boolPtr(b bool) *bool { return &b }

func TestGrantDefaultsToViewOnly(t *testing.T) {
	repo := newFakeRepo()
	repo.roles[1] = true
	repo.menus[10] = true
	svc := NewService(repo, nil)

	created, err := svc.Grant(context.Background(), GrantRequest{RoleID: 1, MenuID: 10})
	require.NoError(t, err)
	require.True(t, created.CanView)
	require.False(t, created.CanCreate)
	require.False(t, created.CanUpdate)
	require.False(t, created.CanDelete)
}

func TestGrantConflictsOnExistingPair(t *testing.T) {
	repo := newFakeRepo()
	repo.roles[1] = true
	repo.menus[10] = true
	svc := NewService(repo, nil)

	_, err := svc.Grant(context.Background(), GrantRequest{RoleID: 1, MenuID: 10})
	require.NoError(t, err)

	_, err = svc.Grant(context.Background(), GrantRequest{RoleID: 1, MenuID: 10})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestGrantMissingRoleOrMenu(t *testing.T) {
	repo := newFakeRepo()
	repo.menus[10] = true
	svc := NewService(repo, nil)

	_, err := svc.Grant(context.Background(), GrantRequest{RoleID: 99, MenuID: 10})
	require.ErrorIs(t, err, shared.ErrNotFound)

	repo.roles[1] = true
	_, err = svc.Grant(context.Background(), GrantRequest{RoleID: 1, MenuID: 99})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBulkGrantMixedValidity(t *testing.T) {
	repo := newFakeRepo()
	repo.roles[1] = true
	repo.menus[10] = true
	repo.menus[11] = true
	svc := NewService(repo, nil)

	// Pre-existing row gets overwritten, not rejected.
	_, err := svc.Grant(context.Background(), GrantRequest{RoleID: 1, MenuID: 10})
	require.NoError(t, err)

	result, err := svc.BulkGrant(context.Background(), BulkGrantRequest{
		RoleID: 1,
		Menus: []BulkGrantEntry{
			{MenuID: 10, CanCreate: boolPtr(true)},
			{MenuID: 11},
			{MenuID: 404},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.SuccessCount)
	require.Equal(t, 1, result.ErrorCount)
	require.Len(t, result.Errors, 1)
	require.Equal(t, int64(404), result.Errors[0].MenuID)
	require.Equal(t, "Menu not found", result.Errors[0].Error)

	overwritten, err := repo.Find(context.Background(), 1, 10)
	require.NoError(t, err)
	require.True(t, overwritten.CanCreate)
}

func TestBulkGrantUnknownRoleAborts(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	_, err := svc.BulkGrant(context.Background(), BulkGrantRequest{
		RoleID: 42,
		Menus:  []BulkGrantEntry{{MenuID: 10}},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDecideFailsClosed(t *testing.T) {
	repo := newFakeRepo()
	repo.roles[1] = true
	repo.menus[10] = true
	svc := NewService(repo, nil)

	// No matrix row: deny without error.
	allowed, err := svc.Decide(context.Background(), 1, 10, ActionView)
	require.NoError(t, err)
	require.False(t, allowed)

	_, err = svc.Grant(context.Background(), GrantRequest{RoleID: 1, MenuID: 10, CanUpdate: boolPtr(true)})
	require.NoError(t, err)

	allowed, err = svc.Decide(context.Background(), 1, 10, ActionView)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = svc.Decide(context.Background(), 1, 10, ActionDelete)
	require.NoError(t, err)
	require.False(t, allowed)

	// Unknown action: deny.
	allowed, err = svc.Decide(context.Background(), 1, 10, "approve")
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestRevokeAllForRoleCountsAndZeroIsSuccess(t *testing.T) {
	repo := newFakeRepo()
	repo.roles[1] = true
	repo.menus[10] = true
	repo.menus[11] = true
	svc := NewService(repo, nil)

	_, err := svc.Grant(context.Background(), GrantRequest{RoleID: 1, MenuID: 10})
	require.NoError(t, err)
	_, err = svc.Grant(context.Background(), GrantRequest{RoleID: 1, MenuID: 11})
	require.NoError(t, err)

	removed, err := svc.RevokeAllForRole(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)

	removed, err = svc.RevokeAllForRole(context.Background(), 1)
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestUpdateOverwritesOnlyProvidedFlags(t *testing.T) {
	repo := newFakeRepo()
	repo.roles[1] = true
	repo.menus[10] = true
	svc := NewService(repo, nil)

	created, err := svc.Grant(context.Background(), GrantRequest{RoleID: 1, MenuID: 10})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateAccessRequest{CanDelete: boolPtr(true)})
	require.NoError(t, err)
	require.True(t, updated.CanView)
	require.True(t, updated.CanDelete)
	require.False(t, updated.CanCreate)
}
