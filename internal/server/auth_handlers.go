package server

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)

	if err := validation.ValidateName("First name", req.FirstName); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := validation.ValidateName("Last name", req.LastName); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Password is required"))
	}

	// Fast-path duplicate check. The unique index on email is the real
	// guarantee; Create translates constraint violations to a conflict.
	existing, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil {
		observability.AuthAttempts.WithLabelValues("register", "conflict").Inc()
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Email is already in use"))
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hashedPassword,
		Status:    models.UserStatusActive,
	}

	if err := s.userRepo.Create(c.Context(), user); err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == "CONFLICT" {
			observability.AuthAttempts.WithLabelValues("register", "conflict").Inc()
			return models.RespondWithError(c, fiber.StatusConflict, appErr)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	observability.AuthAttempts.WithLabelValues("register", "success").Inc()
	middleware.Logger.InfoContext(c.UserContext(), "user registered", "user_id", user.ID)

	return c.JSON(user)
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	// Unknown email and wrong password must be indistinguishable to the caller
	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		observability.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	ok, needsRehash := auth.VerifyPassword(user.Password, req.Password)
	if !ok {
		observability.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	// Pre-migration rows carry an unsalted digest; upgrade it now that we
	// hold the plaintext. Login still succeeds if the rewrite fails.
	if needsRehash {
		if newHash, herr := auth.HashPassword(req.Password); herr == nil {
			user.Password = newHash
			if uerr := s.userRepo.Update(c.Context(), user); uerr != nil {
				middleware.Logger.WarnContext(c.UserContext(), "legacy hash upgrade failed",
					"user_id", user.ID, "error", uerr)
			} else {
				observability.LegacyHashUpgrades.Inc()
			}
		}
	}

	token, err := s.generateToken(user)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	observability.AuthAttempts.WithLabelValues("login", "success").Inc()

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// generateToken creates a JWT for the given user. The subject claim is the
// only identity claim; handlers never read anything else.
func (s *Server) generateToken(user *models.User) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(user.ID), 10),
		"name":  user.FullName(),
		"email": user.Email,
		"iss":   tokenIssuer,
		"aud":   tokenAudience,
		"exp":   now.Add(tokenLifetime).Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"jti":   s.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
