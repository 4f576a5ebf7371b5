package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Noor-Islam16/Coupon-Backend/internal/models"
	"github.com/Noor-Islam16/Coupon-Backend/internal/repository"
	"github.com/Noor-Islam16/Coupon-Backend/internal/testutil"
)

type profileFixture struct {
	svc      *ProfileService
	users    *repository.UserRepository
	profiles *repository.ProfileRepository
	identity Identity
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &profileFixture{
		users:    repository.NewUserRepository(db),
		profiles: repository.NewProfileRepository(db),
	}
	f.svc = NewProfileService(f.users, f.profiles, testutil.Logger())

	user := &models.User{Email: "alice@example.com", Phone: "+15550001", PasswordHash: "x"}
	require.NoError(t, f.users.Create(context.Background(), user))
	f.identity = Identity{ID: user.ID, Email: user.Email}
	return f
}

func profileInput(city string) ProfileInput {
	house := 12
	return ProfileInput{
		FirstName:       "Alice",
		LastName:        "Smith",
		Gender:          "Female",
		HouseNo:         &house,
		CityTownVillage: city,
		District:        "Central",
		State:           "State",
		Country:         "Country",
	}
}

func TestSaveProfileUpserts(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	first, err := f.svc.Save(ctx, f.identity, profileInput("Springfield"))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", first.Profile.Email)
	assert.Equal(t, "+15550001", first.Profile.Phone)

	second, err := f.svc.Save(ctx, f.identity, profileInput("Shelbyville"))
	require.NoError(t, err)
	assert.Equal(t, "Shelbyville", second.Profile.CityTownVillage)
	assert.Equal(t, first.Profile.ID, second.Profile.ID)

	n, err := f.profiles.Count(ctx, f.identity.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSaveProfileValidation(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	in := profileInput("Springfield")
	in.Gender = "Unknown"
	_, err := f.svc.Save(ctx, f.identity, in)
	assert.Equal(t, KindValidation, KindOf(err))

	in = profileInput("Springfield")
	in.HouseNo = nil
	_, err = f.svc.Save(ctx, f.identity, in)
	assert.Equal(t, KindValidation, KindOf(err))

	in = profileInput("")
	_, err = f.svc.Save(ctx, f.identity, in)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestSaveProfileForMissingUser(t *testing.T) {
	f := newProfileFixture(t)

	_, err := f.svc.Save(context.Background(), Identity{ID: uuid.New()}, profileInput("Springfield"))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestGetAndDeleteProfile(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	_, err := f.svc.Get(ctx, f.identity)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = f.svc.Save(ctx, f.identity, profileInput("Springfield"))
	require.NoError(t, err)

	view, err := f.svc.Get(ctx, f.identity)
	require.NoError(t, err)
	assert.Equal(t, f.identity.ID, view.UserID)
	assert.Equal(t, "Springfield", view.Profile.CityTownVillage)

	require.NoError(t, f.svc.Delete(ctx, f.identity))
	_, err = f.svc.Get(ctx, f.identity)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = f.users.FindByID(ctx, f.identity.ID)
	assert.NoError(t, err, "deleting a profile keeps the account")

	assert.Equal(t, KindNotFound, KindOf(f.svc.Delete(ctx, f.identity)))
}

func TestUpdatePicture(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdatePicture(ctx, f.identity, "  ")
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.svc.UpdatePicture(ctx, f.identity, "https://img.test/a.png")
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = f.svc.Save(ctx, f.identity, profileInput("Springfield"))
	require.NoError(t, err)

	view, err := f.svc.UpdatePicture(ctx, f.identity, "https://img.test/a.png")
	require.NoError(t, err)
	require.NotNil(t, view.Profile.ProfilePictureURL)
	assert.Equal(t, "https://img.test/a.png", *view.Profile.ProfilePictureURL)
}
