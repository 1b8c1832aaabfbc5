package database

import "github.com/lena210296/ProjectBlog/internal/models"

// PersistentModels lists the blog tables in dependency order: users before
// the posts, comments and profiles that reference them.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.UserProfile{},
	}
}
