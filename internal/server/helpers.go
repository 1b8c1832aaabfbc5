package server

import (
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/lena210296/ProjectBlog/internal/forms"
	"github.com/lena210296/ProjectBlog/internal/middleware"
	"github.com/lena210296/ProjectBlog/internal/models"
	"github.com/lena210296/ProjectBlog/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const defaultLoginRedirect = "/accounts/profile/"

// parseID reads a positive numeric route parameter. Anything else is a 404,
// matching the integer path converters of the URL table.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.ErrNotFound
	}
	return uint(id), nil
}

// currentUser returns the user loaded by AuthRequired, if any.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

// hasFormKey reports whether the submitted form carries key at all,
// whatever its value. Submit buttons are detected this way.
func hasFormKey(c *fiber.Ctx, key string) bool {
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		_, ok := mf.Value[key]
		return ok
	}
	return c.Request().PostArgs().Has(key)
}

// formValues returns every value submitted under key.
func formValues(c *fiber.Ctx, key string) []string {
	var values []string
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		return mf.Value[key]
	}
	for _, v := range c.Request().PostArgs().PeekMulti(key) {
		values = append(values, string(v))
	}
	return values
}

// readUpload returns the file submitted under field, or nil when none was
// chosen. At most max+1 bytes are read so oversized files are still reported.
func readUpload(c *fiber.Ctx, field string, max int64) (*storage.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil || fh == nil || fh.Size == 0 {
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, err
	}
	return &storage.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// safeNext only allows local absolute paths as post-login redirects.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return defaultLoginRedirect
	}
	return next
}

// splitParagraphs breaks text on blank lines for display.
func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func loginURL(next string) string {
	return "/login/?next=" + url.QueryEscape(next)
}

// render fills the values every page expects and renders name inside the base layout.
func (s *Server) render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = forms.Errors{}
	}
	data["CurrentUser"] = currentUser(c)
	return c.Render(name, data)
}

// renderStatus is render with an explicit status code.
func (s *Server) renderStatus(c *fiber.Ctx, status int, name string, data fiber.Map) error {
	c.Status(status)
	return s.render(c, name, data)
}

// errorHandler renders 404 and 500 pages for errors returned by handlers.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case models.HasCode(err, models.CodeNotFound):
		code = fiber.StatusNotFound
	case models.HasCode(err, models.CodeForbidden):
		code = fiber.StatusForbidden
	}

	if code >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}

	template := "errors/500"
	switch code {
	case fiber.StatusNotFound:
		template = "errors/404"
	case fiber.StatusForbidden, fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusTooManyRequests:
		template = "errors/generic"
	}

	c.Status(code)
	if rerr := s.render(c, template, fiber.Map{
		"Status":  code,
		"Message": statusMessage(code),
	}); rerr != nil {
		return c.Status(code).SendString(statusMessage(code))
	}
	return nil
}

func statusMessage(code int) string {
	if msg := utils.StatusMessage(code); msg != "" {
		return msg
	}
	return "Error"
}
