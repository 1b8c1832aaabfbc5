package server

import (
	"github.com/lena210296/ProjectBlog/internal/forms"
	"github.com/lena210296/ProjectBlog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ContactPage shows the contact form with the sender's name pre-filled.
func (s *Server) ContactPage(c *fiber.Ctx) error {
	form := forms.Contact{Name: currentUser(c).Username}
	return s.render(c, "contact/form", fiber.Map{"Title": "Contact", "Form": form})
}

// ContactAdmin queues the message for the admin. The page posts it with
// fetch, so the answer is JSON.
func (s *Server) ContactAdmin(c *fiber.Ctx) error {
	var form forms.Contact
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Malformed request body"))
	}

	if errs := form.Validate(); !errs.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	s.contactService.Submit(c.UserContext(), form)
	return c.JSON(fiber.Map{"success": true})
}
