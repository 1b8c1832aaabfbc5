package server

import (
	"errors"
	"fmt"

	"github.com/lena210296/ProjectBlog/internal/forms"
	"github.com/lena210296/ProjectBlog/internal/models"
	"github.com/lena210296/ProjectBlog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePostPage shows an empty post form.
func (s *Server) CreatePostPage(c *fiber.Ctx) error {
	return s.render(c, "posts/create", fiber.Map{"Title": "New post", "Form": forms.Post{}})
}

// CreatePost stores a new post. The "submit" button publishes it,
// any other submission saves a draft.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	user := currentUser(c)

	form, errs, err := s.bindPostForm(c, true)
	if err != nil {
		return err
	}
	if !errs.Valid() {
		return s.render(c, "posts/create", fiber.Map{"Title": "New post", "Form": form, "Errors": errs})
	}

	imageKey, err := s.media.SavePostImage(c.UserContext(), *form.Image)
	if err != nil {
		errs.Add("image", forms.ImageErrorMessage(err))
		return s.render(c, "posts/create", fiber.Map{"Title": "New post", "Form": form, "Errors": errs})
	}

	_, err = s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID:         user.ID,
		Title:            form.Title,
		ShortDescription: form.ShortDescription,
		FullDescription:  form.FullDescription,
		ImageKey:         imageKey,
		Submit:           hasFormKey(c, "submit"),
	})
	if err != nil {
		_ = s.media.Delete(c.UserContext(), imageKey)
		return err
	}
	return c.Redirect("/user_posts/", fiber.StatusFound)
}

// EditPostPage shows the post form pre-filled for its author.
func (s *Server) EditPostPage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	post, err := s.postService.GetForEdit(c.UserContext(), id, currentUser(c).ID)
	if err != nil {
		return s.editPostError(c, err)
	}

	form := forms.Post{
		Title:            post.Title,
		ShortDescription: post.ShortDescription,
		FullDescription:  post.FullDescription,
		Status:           string(post.Status),
	}
	return s.render(c, "posts/edit", fiber.Map{"Title": "Edit post", "Form": form, "Post": post})
}

// EditPost saves changes made by the author.
func (s *Server) EditPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	user := currentUser(c)

	post, err := s.postService.GetForEdit(c.UserContext(), id, user.ID)
	if err != nil {
		return s.editPostError(c, err)
	}

	form, errs, err := s.bindPostForm(c, false)
	if err != nil {
		return err
	}
	if !errs.Valid() {
		return s.render(c, "posts/edit", fiber.Map{"Title": "Edit post", "Form": form, "Post": post, "Errors": errs})
	}

	imageKey := ""
	if form.Image != nil {
		imageKey, err = s.media.SavePostImage(c.UserContext(), *form.Image)
		if err != nil {
			errs.Add("image", forms.ImageErrorMessage(err))
			return s.render(c, "posts/edit", fiber.Map{"Title": "Edit post", "Form": form, "Post": post, "Errors": errs})
		}
	}

	_, err = s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		PostID:           id,
		EditorID:         user.ID,
		Title:            form.Title,
		ShortDescription: form.ShortDescription,
		FullDescription:  form.FullDescription,
		ImageKey:         imageKey,
		Publish:          hasFormKey(c, "submit") || form.Status == string(models.PostStatusPublished),
	})
	if err != nil {
		if imageKey != "" {
			_ = s.media.Delete(c.UserContext(), imageKey)
		}
		return s.editPostError(c, err)
	}
	return c.Redirect("/user_posts/", fiber.StatusFound)
}

// editPostError sends non-authors back to their own posts.
func (s *Server) editPostError(c *fiber.Ctx, err error) error {
	if models.HasCode(err, models.CodeForbidden) {
		return c.Redirect("/user_posts/", fiber.StatusFound)
	}
	return err
}

func (s *Server) bindPostForm(c *fiber.Ctx, requireImage bool) (forms.Post, forms.Errors, error) {
	var form forms.Post
	if err := c.BodyParser(&form); err != nil {
		return form, nil, fiber.ErrBadRequest
	}

	upload, err := readUpload(c, "image", s.config.MaxUploadBytes())
	if err != nil {
		return form, nil, err
	}
	form.Image = upload
	form.RequireImage = requireImage
	form.ImageChecker = s.media.CheckImage

	return form, form.Validate(), nil
}

// UserPosts lists the current user's posts, drafts included.
func (s *Server) UserPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListUserPosts(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return s.render(c, "posts/user_posts", fiber.Map{"Title": "My posts", "Posts": posts})
}

// AllPosts pages through every post.
func (s *Server) AllPosts(c *fiber.Ctx) error {
	page, err := s.postService.ListAllPosts(c.UserContext(), c.Query("page"), s.config.PostsPerPage)
	if err != nil {
		return err
	}
	return s.render(c, "posts/all", fiber.Map{
		"Title": "All posts",
		"Posts": page.Posts,
		"Page":  page.Page,
	})
}

// PostDetail shows a post with its approved comments.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return s.renderPostDetail(c, id, forms.Comment{}, nil)
}

// SubmitComment stores a pending comment. It stays hidden until approved.
func (s *Server) SubmitComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	form := forms.Comment{
		Content:     c.FormValue("content"),
		IsAnonymous: forms.Checkbox(c.FormValue("is_anonymous")),
	}
	if errs := form.Validate(); !errs.Valid() {
		return s.renderPostDetail(c, id, form, errs)
	}

	_, err = s.commentService.SubmitComment(c.UserContext(), service.SubmitCommentInput{
		PostID:      id,
		Author:      currentUser(c),
		Content:     form.Content,
		IsAnonymous: form.IsAnonymous,
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Fields != nil {
			errs := forms.Errors{}
			errs.Merge(appErr.Fields)
			return s.renderPostDetail(c, id, form, errs)
		}
		return err
	}
	return c.Redirect(fmt.Sprintf("/post/%d/", id), fiber.StatusFound)
}

func (s *Server) renderPostDetail(c *fiber.Ctx, id uint, form forms.Comment, errs forms.Errors) error {
	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return err
	}
	comments, err := s.commentService.ListApproved(c.UserContext(), post.ID, c.Query("page"), s.config.CommentsPerPage)
	if err != nil {
		return err
	}
	if errs == nil {
		errs = forms.Errors{}
	}
	return s.render(c, "posts/detail", fiber.Map{
		"Title":    post.Title,
		"Post":     post,
		"Comments": comments.Comments,
		"Page":     comments.Page,
		"Form":     form,
		"Errors":   errs,
	})
}
