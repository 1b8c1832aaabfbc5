package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lena210296/ProjectBlog/internal/forms"
	"github.com/lena210296/ProjectBlog/internal/middleware"
	"github.com/lena210296/ProjectBlog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionCookie   = "sessionid"
	sessionTTL      = 14 * 24 * time.Hour
	sessionIssuer   = "projectblog"
	sessionAudience = "projectblog-web"
)

var errInvalidSession = models.NewUnauthorizedError("invalid or expired session")

// RegisterPage shows the sign-up form.
func (s *Server) RegisterPage(c *fiber.Ctx) error {
	return s.render(c, "auth/register", fiber.Map{"Title": "Register", "Form": forms.Register{}})
}

// Register creates an account and sends the visitor to the login page.
func (s *Server) Register(c *fiber.Ctx) error {
	var form forms.Register
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	errs := form.Validate()
	if errs.Valid() {
		_, err := s.userService.Register(c.UserContext(), form)
		if err == nil {
			return c.Redirect("/login/", fiber.StatusFound)
		}
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Fields == nil {
			return err
		}
		errs.Merge(appErr.Fields)
	}

	form.Password1, form.Password2 = "", ""
	return s.render(c, "auth/register", fiber.Map{"Title": "Register", "Form": form, "Errors": errs})
}

// LoginPage shows the sign-in form.
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return s.render(c, "auth/login", fiber.Map{
		"Title": "Log in",
		"Form":  forms.Login{},
		"Next":  c.Query("next"),
	})
}

// Login checks the credentials and starts a session.
func (s *Server) Login(c *fiber.Ctx) error {
	var form forms.Login
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	next := c.FormValue("next", c.Query("next"))

	errs := form.Validate()
	if errs.Valid() {
		user, err := s.userService.Authenticate(c.UserContext(), form.Username, form.Password)
		switch {
		case err == nil:
			token, err := s.generateToken(user)
			if err != nil {
				return models.NewInternalError(err)
			}
			s.setSessionCookie(c, token, time.Now().Add(sessionTTL))
			return c.Redirect(safeNext(next), fiber.StatusFound)
		case models.HasCode(err, models.CodeUnauthorized):
			errs.Add(forms.NonFieldErrors, forms.InvalidLoginMessage)
		default:
			return err
		}
	}

	form.Password = ""
	return s.render(c, "auth/login", fiber.Map{"Title": "Log in", "Form": form, "Errors": errs, "Next": next})
}

// Logout revokes the session token and clears the cookie.
func (s *Server) Logout(c *fiber.Ctx) error {
	if tokenString := sessionToken(c); tokenString != "" {
		if claims, err := s.parseToken(tokenString); err == nil {
			s.revokeToken(c.UserContext(), claims)
		}
	}

	c.ClearCookie(sessionCookie)
	return c.Redirect("/login/", fiber.StatusFound)
}

func (s *Server) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      fmt.Sprintf("%d", user.ID),
		"username": user.Username,
		"iss":      sessionIssuer,
		"aud":      sessionAudience,
		"exp":      now.Add(sessionTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *Server) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithAudience(sessionAudience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return nil, errInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidSession
	}
	return claims, nil
}

func (s *Server) revokeToken(ctx context.Context, claims jwt.MapClaims) {
	if s.redis == nil {
		return
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return
	}

	ttl := sessionTTL
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ttl = time.Until(exp.Time)
	}
	if ttl <= 0 {
		return
	}
	if err := s.redis.Set(ctx, "blacklist:"+jti, "1", ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to revoke session", slog.String("error", err.Error()))
	}
}

// sessionUser resolves the active user behind the request's session token.
func (s *Server) sessionUser(c *fiber.Ctx) (*models.User, error) {
	tokenString := sessionToken(c)
	if tokenString == "" {
		return nil, errInvalidSession
	}

	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if jti, _ := claims["jti"].(string); jti != "" {
			n, err := s.redis.Exists(c.UserContext(), "blacklist:"+jti).Result()
			if err != nil {
				middleware.Logger.WarnContext(c.UserContext(), "session revocation check failed", slog.String("error", err.Error()))
			} else if n > 0 {
				return nil, errInvalidSession
			}
		}
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, errInvalidSession
	}
	var userID uint
	if _, err := fmt.Sscanf(sub, "%d", &userID); err != nil || userID == 0 {
		return nil, errInvalidSession
	}

	user, err := s.userRepo.GetByID(c.UserContext(), userID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, errInvalidSession
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errInvalidSession
	}
	return user, nil
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// sessionToken reads the session cookie, falling back to a bearer token.
func sessionToken(c *fiber.Ctx) string {
	if token := c.Cookies(sessionCookie); token != "" {
		return token
	}
	auth := c.Get(fiber.HeaderAuthorization)
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}
