// Package settings implements the Settings Resolver (§4.12): user ->
// dealership -> default value lookup with validation, grounded on
// original_source's settings_service.py.
package settings

import (
	"context"
	"strconv"
	"strings"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/apperr"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/repository"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/roles"
)

// Resolver resolves and validates setting reads/writes against the
// dealership/user hierarchy.
type Resolver struct {
	repo repository.RepositoryManager
}

// New builds a Resolver.
func New(repo repository.RepositoryManager) *Resolver {
	return &Resolver{repo: repo}
}

func (r *Resolver) definition(ctx context.Context, key string) (*domain.SettingDefinition, error) {
	defs, err := r.repo.Settings().Definitions(ctx)
	if err != nil {
		return nil, apperr.Provider("failed to load setting definitions", err)
	}
	for _, d := range defs {
		if d.Key == key {
			return d, nil
		}
	}
	return nil, apperr.NotFound("unknown key: " + key)
}

// GetUserEffective resolves a value for (user, key): user value if set,
// else the user's dealership value if set, else the definition default,
// else UnknownKey.
func (r *Resolver) GetUserEffective(ctx context.Context, userID, dealershipID, key string) (string, error) {
	def, err := r.definition(ctx, key)
	if err != nil {
		return "", err
	}

	if v, ok, err := r.repo.Settings().GetUserValue(ctx, userID, key); err != nil {
		return "", apperr.Provider("failed to read user setting", err)
	} else if ok {
		return v, nil
	}

	if v, ok, err := r.repo.Settings().GetDealershipValue(ctx, dealershipID, key); err != nil {
		return "", apperr.Provider("failed to read dealership setting", err)
	} else if ok {
		return v, nil
	}

	return def.DefaultValue, nil
}

// GetDealership resolves a dealership-level value, falling back to the
// definition default.
func (r *Resolver) GetDealership(ctx context.Context, dealershipID, key string) (string, error) {
	def, err := r.definition(ctx, key)
	if err != nil {
		return "", err
	}
	if v, ok, err := r.repo.Settings().GetDealershipValue(ctx, dealershipID, key); err != nil {
		return "", apperr.Provider("failed to read dealership setting", err)
	} else if ok {
		return v, nil
	}
	return def.DefaultValue, nil
}

// SetUser validates and writes a user-level override.
func (r *Resolver) SetUser(ctx context.Context, userID, key, value string) error {
	def, err := r.definition(ctx, key)
	if err != nil {
		return err
	}
	if !def.UserLevel {
		return apperr.Input("key is not writable at the user level: " + key)
	}
	if err := validate(def, value); err != nil {
		return err
	}
	if err := r.repo.Settings().SetUserValue(ctx, userID, key, value); err != nil {
		return apperr.Provider("failed to write user setting", err)
	}
	return nil
}

// SetDealership validates and writes a dealership-level override. The
// actor must hold manager-or-owner permission.
func (r *Resolver) SetDealership(ctx context.Context, dealershipID, key, value string, actor roles.Role) error {
	if !actor.AtLeast(roles.Manager) {
		return apperr.Auth("manager or owner role required to change dealership settings")
	}
	def, err := r.definition(ctx, key)
	if err != nil {
		return err
	}
	if !def.DealershipLevel {
		return apperr.Input("key is not writable at the dealership level: " + key)
	}
	if err := validate(def, value); err != nil {
		return err
	}
	if err := r.repo.Settings().SetDealershipValue(ctx, dealershipID, key, value); err != nil {
		return apperr.Provider("failed to write dealership setting", err)
	}
	return nil
}

// DeleteUser removes a user-level override row outright, so GetUserEffective
// falls through to the dealership value or definition default on the next read.
func (r *Resolver) DeleteUser(ctx context.Context, userID, key string) error {
	if err := r.repo.Settings().DeleteUserValue(ctx, userID, key); err != nil {
		return apperr.Provider("failed to delete user setting", err)
	}
	return nil
}

// validate enforces the write-time rules in §4.12: data-type match,
// allowed-value membership, the reply_timing_mode enum, numeric delay
// bounds, and HH:MM time fields.
func validate(def *domain.SettingDefinition, value string) error {
	if len(def.AllowedValues) > 0 {
		allowed := false
		for _, v := range def.AllowedValues {
			if v == value {
				allowed = true
				break
			}
		}
		if !allowed {
			return apperr.Input("value not in allowed set for key: " + def.Key)
		}
	}

	switch def.Key {
	case domain.SettingReplyTimingMode:
		switch value {
		case "instant", "custom_delay", "business_hours":
		default:
			return apperr.Input("reply_timing_mode must be one of instant, custom_delay, business_hours")
		}
		return nil
	case domain.SettingReplyDelaySeconds, domain.SettingBusinessHoursDelaySecond:
		return validateDelaySeconds(value)
	case domain.SettingBusinessHoursStart, domain.SettingBusinessHoursEnd:
		return validateHHMM(value)
	}

	switch def.DataType {
	case domain.SettingTypeInt:
		if _, err := strconv.Atoi(value); err != nil {
			return apperr.Input("value must be an integer for key: " + def.Key)
		}
	case domain.SettingTypeFloat:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return apperr.Input("value must be a number for key: " + def.Key)
		}
	case domain.SettingTypeBool:
		if _, err := strconv.ParseBool(value); err != nil {
			return apperr.Input("value must be a boolean for key: " + def.Key)
		}
	case domain.SettingTypeTime:
		return validateHHMM(value)
	}
	return nil
}

func validateDelaySeconds(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return apperr.Input("delay must be numeric")
	}
	if n < 0 || n > 300 {
		return apperr.Input("delay must be between 0 and 300 seconds")
	}
	return nil
}

func validateHHMM(value string) error {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return apperr.Input("time must be HH:MM")
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return apperr.Input("time must be HH:MM")
	}
	return nil
}
