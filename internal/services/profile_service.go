package services

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Noor-Islam16/Coupon-Backend/internal/models"
	"github.com/Noor-Islam16/Coupon-Backend/internal/repository"
	"github.com/Noor-Islam16/Coupon-Backend/internal/utils"
)

// ProfileService manages the caller's extended profile.
type ProfileService struct {
	users    UserStore
	profiles ProfileStore
	validate *validator.Validate
	log      *zap.SugaredLogger
	now      Clock
}

// NewProfileService constructs a ProfileService.
func NewProfileService(users UserStore, profiles ProfileStore, log *zap.SugaredLogger) *ProfileService {
	return &ProfileService{
		users:    users,
		profiles: profiles,
		validate: utils.NewValidator(),
		log:      log,
		now:      systemClock,
	}
}

// ProfileInput is the body of a profile save.
type ProfileInput struct {
	FirstName       string  `json:"firstName" validate:"required"`
	MiddleName      *string `json:"middleName"`
	LastName        string  `json:"lastName" validate:"required"`
	Gender          string  `json:"gender" validate:"required,oneof=Male Female Other"`
	HouseNo         *int    `json:"houseNo" validate:"required"`
	CityTownVillage string  `json:"cityTownVillage" validate:"required"`
	District        string  `json:"district" validate:"required"`
	State           string  `json:"state" validate:"required"`
	Country         string  `json:"country" validate:"required"`
}

// ProfileView joins an account with its profile.
type ProfileView struct {
	UserID     uuid.UUID       `json:"user_id"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	IsVerified bool            `json:"is_verified"`
	Profile    *models.Profile `json:"profile"`
}

// Save creates the caller's profile, or updates it if one exists.
func (s *ProfileService) Save(ctx context.Context, identity Identity, in ProfileInput) (*ProfileView, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, newError(KindValidation, utils.FormatValidationErrors(err))
	}

	user, err := s.loadUser(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	_, err = s.profiles.FindByUserID(ctx, user.ID)
	switch {
	case err == nil:
		if err := s.update(ctx, user.ID, in); err != nil {
			return nil, err
		}
	case errors.Is(err, repository.ErrNotFound):
		if err := s.create(ctx, user, in); err != nil {
			return nil, err
		}
	default:
		return nil, internalError("failed to load profile", err)
	}

	return s.view(ctx, user)
}

func (s *ProfileService) create(ctx context.Context, user *models.User, in ProfileInput) error {
	profile := &models.Profile{
		UserID:          user.ID,
		Email:           user.Email,
		Phone:           user.Phone,
		FirstName:       in.FirstName,
		MiddleName:      in.MiddleName,
		LastName:        in.LastName,
		Gender:          in.Gender,
		HouseNo:         *in.HouseNo,
		CityTownVillage: in.CityTownVillage,
		District:        in.District,
		State:           in.State,
		Country:         in.Country,
	}
	err := s.profiles.Create(ctx, profile)
	if errors.Is(err, repository.ErrDuplicate) {
		// A concurrent save created the row first.
		return s.update(ctx, user.ID, in)
	}
	if err != nil {
		return internalError("failed to create profile", err)
	}
	return nil
}

func (s *ProfileService) update(ctx context.Context, userID uuid.UUID, in ProfileInput) error {
	updates := map[string]interface{}{
		"first_name":        in.FirstName,
		"last_name":         in.LastName,
		"gender":            in.Gender,
		"house_no":          *in.HouseNo,
		"city_town_village": in.CityTownVillage,
		"district":          in.District,
		"state":             in.State,
		"country":           in.Country,
		"updated_at":        s.now(),
	}
	if in.MiddleName != nil {
		updates["middle_name"] = *in.MiddleName
	}

	if err := s.profiles.UpdateFields(ctx, userID, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errProfileNotFound
		}
		return internalError("failed to update profile", err)
	}
	return nil
}

// Get returns the caller's profile.
func (s *ProfileService) Get(ctx context.Context, identity Identity) (*ProfileView, error) {
	user, err := s.loadUser(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, user)
}

// Delete removes the caller's profile. The account is left untouched.
func (s *ProfileService) Delete(ctx context.Context, identity Identity) error {
	if err := s.profiles.DeleteByUserID(ctx, identity.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errProfileNotFound
		}
		return internalError("failed to delete profile", err)
	}
	return nil
}

// UpdatePicture stores a new profile picture URL.
func (s *ProfileService) UpdatePicture(ctx context.Context, identity Identity, imageURL string) (*ProfileView, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, newError(KindValidation, "imageUrl is required")
	}

	user, err := s.loadUser(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	err = s.profiles.UpdateFields(ctx, user.ID, map[string]interface{}{
		"profile_picture_url": imageURL,
		"updated_at":          s.now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errProfileNotFound
		}
		return nil, internalError("failed to update profile picture", err)
	}

	return s.view(ctx, user)
}

func (s *ProfileService) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, internalError("failed to load user", err)
	}
	return user, nil
}

func (s *ProfileService) view(ctx context.Context, user *models.User) (*ProfileView, error) {
	profile, err := s.profiles.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errProfileNotFound
		}
		return nil, internalError("failed to load profile", err)
	}

	return &ProfileView{
		UserID:     user.ID,
		Email:      user.Email,
		Phone:      user.Phone,
		IsVerified: user.IsVerified,
		Profile:    profile,
	}, nil
}
