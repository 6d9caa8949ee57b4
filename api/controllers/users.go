package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/stockpix/stockpix-backend/api/middleware"
	"github.com/stockpix/stockpix-backend/api/responses"
	"github.com/stockpix/stockpix-backend/api/validators"
	usersvc "github.com/stockpix/stockpix-backend/internal/users"
	"github.com/stockpix/stockpix-backend/pkg/enums"
	pkgerrors "github.com/stockpix/stockpix-backend/pkg/errors"
	"github.com/stockpix/stockpix-backend/pkg/listing"
	"github.com/stockpix/stockpix-backend/pkg/logger"
)

type updateProfileRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

type changePasswordRequest struct {
	CurrentPassword         string `json:"current_password" validate:"required"`
	NewPassword             string `json:"new_password" validate:"required"`
	NewPasswordConfirmation string `json:"new_password_confirmation" validate:"required,eqfield=NewPassword"`
}

type updateStatusRequest struct {
	ID           string  `json:"id" validate:"required"`
	Status       *string `json:"status,omitempty"`
	Subscription *string `json:"subscription,omitempty"`
}

type userIDRequest struct {
	ID string `json:"id" validate:"required"`
}

func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user context")
	}
	return id, nil
}

func targetID(r *http.Request) (uuid.UUID, error) {
	var body userIDRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(strings.TrimSpace(body.ID))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "id must be a valid id")
	}
	return id, nil
}

// ListUsers handles the authenticated user directory. The current actor is
// always excluded from the page.
func ListUsers(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := validators.ParseQueryInt(r, "page", listing.DefaultPage, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		perPage, err := validators.ParseQueryInt(r, "per_page", listing.DefaultPerPage, 1, listing.MaxPerPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rawOrder, err := validators.ParseQueryOneOf(r, "sort_order", "", string(listing.SortAsc), string(listing.SortDesc))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sortOrder, _ := listing.ParseSortOrder(rawOrder)

		input := usersvc.ListUsersInput{
			ActorID:   actor,
			Role:      strings.TrimSpace(r.URL.Query().Get("role")),
			Deleted:   listing.ParseDeletedScope(r.URL.Query().Get("deleted")),
			Search:    validators.SanitizeString(r.URL.Query().Get("search"), listing.MaxSearchLen),
			SortBy:    strings.TrimSpace(r.URL.Query().Get("sort_by")),
			SortOrder: sortOrder,
			Page:      page,
			PerPage:   perPage,
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseUserStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("subscription")); raw != "" {
			tier, err := enums.ParseSubscriptionTier(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subscription"))
				return
			}
			input.Subscription = &tier
		}

		result, err := svc.ListUsers(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "User list fetched successfully.", result)
	}
}

// UserStats handles the aggregate counts endpoint.
func UserStats(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		result, err := svc.GetStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "User stats fetched successfully.", result)
	}
}

// UpdateProfile handles partial profile edits for the authenticated user.
func UpdateProfile(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.UpdateProfile(r.Context(), actor, usersvc.UpdateProfileInput{
			Email:    body.Email,
			Username: body.Username,
			Phone:    body.Phone,
			Bio:      body.Bio,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Profile updated successfully.", result)
	}
}

// ChangePassword verifies the current password and stores the new one.
func ChangePassword(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body changePasswordRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ChangePassword(r.Context(), actor, body.CurrentPassword, body.NewPassword); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Password changed successfully.", nil)
	}
}

// UpdateUserStatus handles the admin-side partial update of status and
// subscription.
func UpdateUserStatus(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		var body updateStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(body.ID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "id must be a valid id"))
			return
		}

		input := usersvc.UpdateStatusInput{}
		if body.Status != nil {
			status, err := enums.ParseUserStatus(strings.TrimSpace(*body.Status))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}
		if body.Subscription != nil {
			tier, err := enums.ParseSubscriptionTier(strings.TrimSpace(*body.Subscription))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subscription"))
				return
			}
			input.Subscription = &tier
		}

		result, err := svc.UpdateStatus(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "User updated successfully.", result)
	}
}

// DeleteUser handles the soft-delete endpoint.
func DeleteUser(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		id, err := targetID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteUser(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "User deleted successfully.", nil)
	}
}

// RestoreUser brings a soft-deleted user back.
func RestoreUser(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		id, err := targetID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RestoreUser(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "User restored successfully.", result)
	}
}

// ForceDeleteUser permanently removes a soft-deleted user.
func ForceDeleteUser(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		id, err := targetID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ForceDeleteUser(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "User permanently deleted.", nil)
	}
}
