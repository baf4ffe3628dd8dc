package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatewarden/gatewarden/internal/shared"
)

type assignment struct {
	roleID    int64
	isDefault bool
}

type fakeRepo struct {
	nextID      int64
	users       map[int64]User
	roles       map[int64]string
	assignments map[int64][]assignment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:       map[int64]User{},
		roles:       map[int64]string{},
		assignments: map[int64][]assignment{},
	}
}

func (f *fakeRepo) List(ctx context.Context, req ListUsersRequest) ([]User, int, error) {
	out := []User{}
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (User, error) {
	u, ok := f.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) Create(ctx context.Context, user User) (User, error) {
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return User{}, shared.ErrConflict
		}
		if existing.Email != nil && user.Email != nil && *existing.Email == *user.Email {
			return User{}, shared.ErrConflict
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeRepo) Update(ctx context.Context, user User) (User, error) {
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	delete(f.users, id)
	delete(f.assignments, id)
	return nil
}

func (f *fakeRepo) ListRoles(ctx context.Context, userID int64) ([]RoleAssignment, error) {
	out := []RoleAssignment{}
	for _, a := range f.assignments[userID] {
		out = append(out, RoleAssignment{RoleID: a.roleID, RoleName: f.roles[a.roleID], IsDefault: a.isDefault})
	}
	return out, nil
}

func (f *fakeRepo) HasRole(ctx context.Context, userID, roleID int64) (bool, error) {
	for _, a := range f.assignments[userID] {
		if a.roleID == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	_, ok := f.roles[roleID]
	return ok, nil
}

func (f *fakeRepo) AssignRole(ctx context.Context, userID, roleID int64, isDefault bool) error {
	if isDefault {
		for i := range f.assignments[userID] {
			f.assignments[userID][i].isDefault = false
		}
	}
	f.assignments[userID] = append(f.assignments[userID], assignment{roleID: roleID, isDefault: isDefault})
	return nil
}

func (f *fakeRepo) RemoveRole(ctx context.Context, userID, roleID int64) error {
	kept := f.assignments[userID][:0]
	for _, a := range f.assignments[userID] {
		if a.roleID != roleID {
			kept = append(kept, a)
		}
	}
	f.assignments[userID] = kept
	return nil
}

func createUser(t *testing.T, svc *Service, username string) User {
	t.Helper()
	email := username + "@example.com"
	user, err := svc.Create(context.Background(), CreateUserRequest{
		Username: username,
		Email:    &email,
		FullName: username,
		Password: "long enough password",
	})
	require.NoError(t, err)
	return user
}

func TestCreateHashesPassword(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	user := createUser(t, svc, "alice")
	require.NotEqual(t, "long enough password", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("long enough password")))
	require.Equal(t, StatusActive, user.Status)
}

func TestCreateDuplicateUsernameConflict(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	createUser(t, svc, "alice")
	other := "other@example.com"
	_, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "alice",
		Email:    &other,
		FullName: "Alice",
		Password: "long enough password",
	})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestCreateWithoutEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	req := CreateUserRequest{
		Username: "alice",
		FullName: "Alice Example",
		Password: "long enough password",
	}
	require.Nil(t, shared.ValidateStruct(req))

	user, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.Nil(t, user.Email)

	// A second address-less account must not trip the uniqueness check.
	_, err = svc.Create(context.Background(), CreateUserRequest{
		Username: "bob",
		FullName: "Bob Example",
		Password: "long enough password",
	})
	require.NoError(t, err)
}

func TestCreateStoresEmptyEmailAsAbsent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	empty := ""
	user, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "alice",
		Email:    &empty,
		FullName: "Alice Example",
		Password: "long enough password",
	})
	require.NoError(t, err)
	require.Nil(t, user.Email)
}

func TestUpdateRehashesOnlyWhenPasswordChanges(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	user := createUser(t, svc, "alice")
	originalHash := user.PasswordHash

	name := "Alice Cooper"
	updated, err := svc.Update(context.Background(), user.ID, UpdateUserRequest{FullName: &name})
	require.NoError(t, err)
	require.Equal(t, originalHash, updated.PasswordHash)

	newPassword := "another long password"
	updated, err = svc.Update(context.Background(), user.ID, UpdateUserRequest{Password: &newPassword})
	require.NoError(t, err)
	require.NotEqual(t, originalHash, updated.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(newPassword)))
}

func TestAssignRoleKeepsSingleDefault(t *testing.T) {
	repo := newFakeRepo()
	repo.roles[1] = "Editor"
	repo.roles[2] = "Auditor"
	repo.roles[3] = "Viewer"
	svc := NewService(repo)

	user := createUser(t, svc, "alice")

	require.NoError(t, svc.AssignRole(context.Background(), user.ID, AssignRoleRequest{RoleID: 1, IsDefault: true}))
	require.NoError(t, svc.AssignRole(context.Background(), user.ID, AssignRoleRequest{RoleID: 2}))
	require.NoError(t, svc.AssignRole(context.Background(), user.ID, AssignRoleRequest{RoleID: 3, IsDefault: true}))

	roles, err := svc.ListRoles(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, roles, 3)

	defaults := 0
	for _, r := range roles {
		if r.IsDefault {
			defaults++
			require.Equal(t, int64(3), r.RoleID)
		}
	}
	require.Equal(t, 1, defaults)
}

func TestAssignRoleValidatesBothSides(t *testing.T) {
	repo := newFakeRepo()
	repo.roles[1] = "Editor"
	svc := NewService(repo)

	user := createUser(t, svc, "alice")

	err := svc.AssignRole(context.Background(), 99, AssignRoleRequest{RoleID: 1})
	require.ErrorIs(t, err, shared.ErrNotFound)

	err = svc.AssignRole(context.Background(), user.ID, AssignRoleRequest{RoleID: 99})
	require.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, svc.AssignRole(context.Background(), user.ID, AssignRoleRequest{RoleID: 1}))
	err = svc.AssignRole(context.Background(), user.ID, AssignRoleRequest{RoleID: 1})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestRemoveRole(t *testing.T) {
	repo := newFakeRepo()
	repo.roles[1] = "Editor"
	svc := NewService(repo)

	user := createUser(t, svc, "alice")
	require.NoError(t, svc.AssignRole(context.Background(), user.ID, AssignRoleRequest{RoleID: 1}))

	require.NoError(t, svc.RemoveRole(context.Background(), user.ID, 1))
	err := svc.RemoveRole(context.Background(), user.ID, 1)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
