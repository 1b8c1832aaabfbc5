package service

import (
	"context"
	"strings"
	"testing"

	"github.com/lena210296/ProjectBlog/internal/forms"
	"github.com/lena210296/ProjectBlog/internal/models"
	"github.com/lena210296/ProjectBlog/internal/repository"
	"github.com/lena210296/ProjectBlog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newUserServiceForDB(db)
	ctx := context.Background()

	form := forms.Register{Username: "carol", Email: "carol@example.com", Password1: "Tulip-garden7", Password2: "Tulip-garden7"}
	user, err := svc.Register(ctx, form)
	require.NoError(t, err)
	assert.NotEqual(t, "Tulip-garden7", user.Password)
	assert.False(t, user.IsStaff)

	_, err = svc.Register(ctx, form)
	appErr := assertAppError(t, err, models.CodeValidation)
	assert.Equal(t, []string{DuplicateUsernameMessage}, appErr.Fields["username"])

	got, err := svc.Authenticate(ctx, "carol", "Tulip-garden7")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotNil(t, got.LastLogin)

	_, err = svc.Authenticate(ctx, "carol", "wrong")
	appErr = assertAppError(t, err, models.CodeUnauthorized)
	assert.Equal(t, forms.InvalidLoginMessage, appErr.Message)

	_, err = svc.Authenticate(ctx, "nobody", "Tulip-garden7")
	assertAppError(t, err, models.CodeUnauthorized)
}

func TestUserService_StaffManagement(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newUserServiceForDB(db)
	ctx := context.Background()

	_, err := svc.CreateStaff(ctx, forms.Register{Username: "admin", Email: "admin@example.com", Password1: "short"})
	appErr := assertAppError(t, err, models.CodeValidation)
	assert.NotEmpty(t, appErr.Fields["password2"])

	admin, err := svc.CreateStaff(ctx, forms.Register{Username: "admin", Email: "admin@example.com", Password1: "Quiet-harbor42"})
	require.NoError(t, err)
	assert.True(t, admin.IsStaff)

	testutil.CreateUser(t, db, "dave", false)
	require.NoError(t, svc.SetStaff(ctx, "dave", true))
	staff, err := svc.ListStaff(ctx)
	require.NoError(t, err)
	require.Len(t, staff, 2)
	assert.Equal(t, "admin", staff[0].Username)
	assert.Equal(t, "dave", staff[1].Username)

	require.NoError(t, svc.SetStaff(ctx, "dave", false))
	assertAppError(t, svc.SetStaff(ctx, "ghost", true), models.CodeNotFound)
}

// staleExistsRepo answers UsernameExists as if another sign-up had not yet committed.
type staleExistsRepo struct {
	repository.UserRepository
}

func (staleExistsRepo) UsernameExists(context.Context, string) (bool, error) { return false, nil }

func TestUserService_RegisterRaceMapsToFieldError(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateUser(t, db, "erin", false)
	svc := NewUserService(staleExistsRepo{repository.NewUserRepository(db)}).WithBcryptCost(bcrypt.MinCost)

	_, err := svc.Register(context.Background(), forms.Register{
		Username: "erin", Email: "erin2@example.com", Password1: "Tulip-garden7", Password2: "Tulip-garden7",
	})
	appErr := assertAppError(t, err, models.CodeValidation)
	assert.Equal(t, []string{DuplicateUsernameMessage}, appErr.Fields["username"])
}

func TestUserService_CreateStaffRejectsPasswordOverBcryptLimit(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newUserServiceForDB(db)

	_, err := svc.CreateStaff(context.Background(), forms.Register{
		Username: "root", Email: "root@example.com", Password1: strings.Repeat("Zq7!", 25),
	})
	appErr := assertAppError(t, err, models.CodeValidation)
	assert.NotEmpty(t, appErr.Fields["password2"])
}
