package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/app/repository"
	"github.com/ManuelReschke/TaskFox/internal/pkg/billing"
	"github.com/ManuelReschke/TaskFox/internal/pkg/logging"
	"github.com/ManuelReschke/TaskFox/internal/pkg/usercontext"
)

type AuthController struct {
	repos   *repository.Repositories
	billing *billing.Service
	log     logrus.FieldLogger
}

func NewAuthController(repos *repository.Repositories, billingService *billing.Service) *AuthController {
	return &AuthController{repos: repos, billing: billingService, log: logging.Component("auth")}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email,max=200"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister creates the user, the free subscription and the first API key
// in one transaction.
func (ac *AuthController) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	var (
		user   *models.User
		sub    *models.UserSubscription
		apiKey string
	)
	err := ac.repos.Transaction(c.UserContext(), func(tx *repository.Repositories) error {
		if _, err := tx.User.GetByEmail(req.Email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		u, err := models.CreateUser(req.Name, req.Email, req.Password)
		if err != nil {
			return err
		}
		if err := tx.User.Create(u); err != nil {
			return err
		}
		user = u

		sub, err = ac.billing.WithRepositories(tx).CreateFreeSubscription(c.UserContext(), u.ID)
		if errors.Is(err, billing.ErrFreePlanMissing) {
			ac.log.WithField("user_id", u.ID).Warn("free plan missing, user registered without subscription")
		} else if err != nil {
			return err
		}

		settings, err := tx.Settings.GetOrCreate(u.ID)
		if err != nil {
			return err
		}
		apiKey, err = settings.IssueAPIKey()
		if err != nil {
			return err
		}
		return tx.Settings.Save(settings)
	})
	if err != nil {
		return respondError(c, err)
	}

	ac.log.WithField("user_id", user.ID).Info("user registered")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":         user,
		"api_key":      apiKey,
		"subscription": sub,
	})
}

// HandleLogout revokes the API key used for the request.
func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	settings, err := ac.repos.Settings.GetOrCreate(userID)
	if err != nil {
		return respondError(c, err)
	}
	if settings.HasActiveAPIKey() {
		settings.RevokeAPIKey()
		if err := ac.repos.Settings.Save(settings); err != nil {
			return respondError(c, err)
		}
		ac.log.WithField("user_id", userID).Info("api key revoked")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleLogin verifies the password and rotates the user's API key.
func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := ac.repos.User.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, ErrInvalidCredentials)
		}
		return respondError(c, err)
	}
	if !user.CheckPassword(req.Password) || !user.IsActive() {
		return respondError(c, ErrInvalidCredentials)
	}

	settings, err := ac.repos.Settings.GetOrCreate(user.ID)
	if err != nil {
		return respondError(c, err)
	}
	apiKey, err := settings.IssueAPIKey()
	if err != nil {
		return respondError(c, err)
	}
	if err := ac.repos.Settings.Save(settings); err != nil {
		return respondError(c, err)
	}
	if err := ac.repos.User.TouchLastLogin(user.ID); err != nil {
		ac.log.WithError(err).WithField("user_id", user.ID).Warn("failed to update last login")
	}

	return c.JSON(fiber.Map{
		"user":    user,
		"api_key": apiKey,
	})
}
