package menus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/access"
	"github.com/gatewarden/gatewarden/internal/shared"
)

type fakeRepo struct {
	nextID int64
	menus  map[int64]Menu
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{menus: map[int64]Menu{}}
}

func (f *fakeRepo) List(ctx context.Context, req ListMenusRequest) ([]MenuWithParent, int, error) {
	out := []MenuWithParent{}
	for _, m := range f.menus {
		out = append(out, MenuWithParent{Menu: m})
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]Menu, error) {
	out := make([]Menu, 0, len(f.menus))
	for _, m := range f.menus {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Menu, error) {
	m, ok := f.menus[id]
	if !ok {
		return Menu{}, shared.ErrNotFound
	}
	return m, nil
}

func (f *fakeRepo) Create(ctx context.Context, menu Menu) (Menu, error) {
	f.nextID++
	menu.ID = f.nextID
	f.menus[menu.ID] = menu
	return menu, nil
}

func (f *fakeRepo) Update(ctx context.Context, menu Menu) (Menu, error) {
	f.menus[menu.ID] = menu
	return menu, nil
}

func (f *fakeRepo) Reparent(ctx context.Context, id int64, parentID *int64, levels map[int64]int) error {
	m, ok := f.menus[id]
	if !ok {
		return shared.ErrNotFound
	}
	m.ParentID = parentID
	f.menus[id] = m
	for menuID, level := range levels {
		node := f.menus[menuID]
		node.Level = level
		f.menus[menuID] = node
	}
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	delete(f.menus, id)
	return nil
}

func (f *fakeRepo) CountChildren(ctx context.Context, id int64) (int, error) {
	count := 0
	for _, m := range f.menus {
		if m.ParentID != nil && *m.ParentID == id {
			count++
		}
	}
	return count, nil
}

type fakeAccessSource struct {
	flags map[int64]access.Flags
}

func (f fakeAccessSource) ViewableFlags(ctx context.Context, roleID int64) (map[int64]access.Flags, error) {
	return f.flags, nil
}

func int64Ptr(v int64) *int64 { return &v }

func seedChain(t *testing.T, svc *Service, depth int) []Menu {
	t.Helper()
	created := make([]Menu, 0, depth)
	var parentID *int64
	for i := 0; i < depth; i++ {
		menu, err := svc.Create(context.Background(), CreateMenuRequest{
			Name:     "Node",
			ParentID: parentID,
		})
		require.NoError(t, err)
		created = append(created, menu)
		parentID = int64Ptr(menu.ID)
	}
	return created
}

func TestCreateDerivesLevelFromParent(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeAccessSource{})
	chain := seedChain(t, svc, 3)

	require.Equal(t, 1, chain[0].Level)
	require.Equal(t, 2, chain[1].Level)
	require.Equal(t, 3, chain[2].Level)
}

func TestCreateUnknownParent(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeAccessSource{})
	_, err := svc.Create(context.Background(), CreateMenuRequest{Name: "Orphan", ParentID: int64Ptr(99)})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReparentRejectsSelfAndDescendants(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeAccessSource{})
	chain := seedChain(t, svc, 3)

	_, err := svc.Reparent(context.Background(), chain[0].ID, ReparentMenuRequest{ParentID: int64Ptr(chain[0].ID)})
	require.ErrorIs(t, err, shared.ErrBadRequest)

	// Moving the root under its grandchild would close a cycle.
	_, err = svc.Reparent(context.Background(), chain[0].ID, ReparentMenuRequest{ParentID: int64Ptr(chain[2].ID)})
	require.ErrorIs(t, err, shared.ErrBadRequest)
}

func TestReparentRecomputesSubtreeLevels(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeAccessSource{})
	chain := seedChain(t, svc, 3)

	other, err := svc.Create(context.Background(), CreateMenuRequest{Name: "Other root"})
	require.NoError(t, err)

	// Move the middle node (and its child) under the other root.
	moved, err := svc.Reparent(context.Background(), chain[1].ID, ReparentMenuRequest{ParentID: int64Ptr(other.ID)})
	require.NoError(t, err)
	require.Equal(t, 2, moved.Level)

	leaf, err := repo.Get(context.Background(), chain[2].ID)
	require.NoError(t, err)
	require.Equal(t, 3, leaf.Level)
}

func TestReparentToRoot(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeAccessSource{})
	chain := seedChain(t, svc, 2)

	moved, err := svc.Reparent(context.Background(), chain[1].ID, ReparentMenuRequest{})
	require.NoError(t, err)
	require.Nil(t, moved.ParentID)
	require.Equal(t, 1, moved.Level)
}

func TestDeleteBlockedWhileChildrenExist(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeAccessSource{})
	chain := seedChain(t, svc, 2)

	err := svc.Delete(context.Background(), chain[0].ID)
	require.ErrorIs(t, err, shared.ErrConflict)

	require.NoError(t, svc.Delete(context.Background(), chain[1].ID))
	require.NoError(t, svc.Delete(context.Background(), chain[0].ID))
}

func TestTreeOrdersChildrenAndFiltersStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeAccessSource{})

	root, err := svc.Create(context.Background(), CreateMenuRequest{Name: "Root"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), CreateMenuRequest{Name: "Second", ParentID: int64Ptr(root.ID), OrderNumber: 2})
	require.NoError(t, err)
	first, err := svc.Create(context.Background(), CreateMenuRequest{Name: "First", ParentID: int64Ptr(root.ID), OrderNumber: 1})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateMenuRequest{Name: "Hidden", ParentID: int64Ptr(root.ID), Status: StatusInactive})
	require.NoError(t, err)

	tree, err := svc.Tree(context.Background(), StatusActive)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 2)
	require.Equal(t, first.ID, tree[0].Children[0].ID)
	require.Equal(t, second.ID, tree[0].Children[1].ID)
}

func TestAccessibleTreeCarriesFlagsAndOmitsUnreachable(t *testing.T) {
	repo := newFakeRepo()
	root, err := NewService(repo, fakeAccessSource{}).Create(context.Background(), CreateMenuRequest{Name: "Root"})
	require.NoError(t, err)
	child, err := NewService(repo, fakeAccessSource{}).Create(context.Background(), CreateMenuRequest{Name: "Child", ParentID: int64Ptr(root.ID)})
	require.NoError(t, err)
	hiddenParent, err := NewService(repo, fakeAccessSource{}).Create(context.Background(), CreateMenuRequest{Name: "Hidden parent"})
	require.NoError(t, err)
	orphan, err := NewService(repo, fakeAccessSource{}).Create(context.Background(), CreateMenuRequest{Name: "Unreachable", ParentID: int64Ptr(hiddenParent.ID)})
	require.NoError(t, err)

	flags := map[int64]access.Flags{
		root.ID:   {CanView: true, CanUpdate: true},
		child.ID:  {CanView: true},
		orphan.ID: {CanView: true},
	}
	svc := NewService(repo, fakeAccessSource{flags: flags})

	tree, err := svc.AccessibleTree(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Equal(t, root.ID, tree[0].ID)
	require.NotNil(t, tree[0].Permissions)
	require.True(t, tree[0].Permissions.CanUpdate)
	require.Len(t, tree[0].Children, 1)
	require.Equal(t, child.ID, tree[0].Children[0].ID)
}
