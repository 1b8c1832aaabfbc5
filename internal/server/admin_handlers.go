package server

import (
	"log/slog"
	"strconv"

	"github.com/lena210296/ProjectBlog/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

const adminListLimit = 100

// Moderation actions accepted by AdminAction.
const (
	actionApproveComments = "approve_comments"
	actionRejectComments  = "reject_comments"
)

// AdminIndex lists comments, posts and profiles for staff.
func (s *Server) AdminIndex(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var approved *bool
	filter := c.Query("is_approved")
	switch filter {
	case "1", "true":
		v := true
		approved = &v
	case "0", "false":
		v := false
		approved = &v
	default:
		filter = ""
	}

	comments, err := s.commentService.ListForModeration(ctx, approved, adminListLimit)
	if err != nil {
		return err
	}
	posts, err := s.postRepo.ListAll(ctx, adminListLimit, 0)
	if err != nil {
		return err
	}
	profiles, err := s.profileRepo.List(ctx, adminListLimit)
	if err != nil {
		return err
	}

	return s.render(c, "admin/index", fiber.Map{
		"Title":    "Administration",
		"Comments": comments,
		"Posts":    posts,
		"Profiles": profiles,
		"Filter":   filter,
		"Notice":   c.Query("notice"),
	})
}

// AdminAction applies a bulk moderation action to the selected comments.
func (s *Server) AdminAction(c *fiber.Ctx) error {
	var ids []uint
	for _, raw := range formValues(c, "_selected_action") {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			continue
		}
		ids = append(ids, uint(id))
	}

	action := c.FormValue("action")
	if len(ids) == 0 {
		return c.Redirect("/admin/?notice="+noticeNoSelection, fiber.StatusFound)
	}

	var (
		n   int64
		err error
	)
	switch action {
	case actionApproveComments:
		n, err = s.commentService.Approve(c.UserContext(), ids)
	case actionRejectComments:
		n, err = s.commentService.Reject(c.UserContext(), ids)
	default:
		return c.Redirect("/admin/?notice="+noticeUnknownAction, fiber.StatusFound)
	}
	if err != nil {
		return err
	}

	middleware.Logger.InfoContext(c.UserContext(), "moderation action applied",
		slog.String("action", action),
		slog.Int64("affected", n),
	)
	return c.Redirect("/admin/", fiber.StatusFound)
}

const (
	noticeNoSelection   = "no_selection"
	noticeUnknownAction = "unknown_action"
)
