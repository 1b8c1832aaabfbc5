package service

import (
	"github.com/lena210296/ProjectBlog/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newPostServiceForDB(db *gorm.DB) *PostService {
	return NewPostService(repository.NewPostRepository(db), nil, nil)
}

func newUserServiceForDB(db *gorm.DB) *UserService {
	return NewUserService(repository.NewUserRepository(db)).WithBcryptCost(bcrypt.MinCost)
}
