// Command admin manages staff accounts from the command line.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/lena210296/ProjectBlog/internal/config"
	"github.com/lena210296/ProjectBlog/internal/database"
	"github.com/lena210296/ProjectBlog/internal/forms"
	"github.com/lena210296/ProjectBlog/internal/models"
	"github.com/lena210296/ProjectBlog/internal/repository"
	"github.com/lena210296/ProjectBlog/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  admin promote <username>               - Grant staff rights")
	fmt.Println("  admin demote <username>                - Revoke staff rights")
	fmt.Println("  admin list-staff                       - List staff accounts")
	fmt.Println("  admin create-staff <username> <email>  - Create a staff account (password read from stdin)")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	users := service.NewUserService(repository.NewUserRepository(db))
	ctx := context.Background()

	switch os.Args[1] {
	case "promote", "demote":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		setStaff(ctx, users, os.Args[2], os.Args[1] == "promote")

	case "list-staff":
		listStaff(ctx, users)

	case "create-staff":
		if len(os.Args) < 4 {
			usage()
			os.Exit(1)
		}
		createStaff(ctx, users, os.Args[2], os.Args[3])

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func setStaff(ctx context.Context, users *service.UserService, username string, staff bool) {
	if err := users.SetStaff(ctx, username, staff); err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			fmt.Printf("User %s not found\n", username)
			os.Exit(1)
		}
		log.Fatalf("Failed to update user: %v", err)
	}
	if staff {
		fmt.Printf("Promoted %s to staff\n", username)
	} else {
		fmt.Printf("Removed staff rights from %s\n", username)
	}
}

func listStaff(ctx context.Context, users *service.UserService) {
	staff, err := users.ListStaff(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch staff: %v", err)
	}
	if len(staff) == 0 {
		fmt.Println("No staff accounts")
		return
	}
	for _, u := range staff {
		fmt.Printf("ID: %d | Username: %s | Email: %s\n", u.ID, u.Username, u.Email)
	}
}

func createStaff(ctx context.Context, users *service.UserService, username, email string) {
	fmt.Print("Password: ")
	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && password == "" {
		log.Fatalf("Failed to read password: %v", err)
	}

	user, err := users.CreateStaff(ctx, forms.Register{
		Username:  username,
		Email:     email,
		Password1: strings.TrimRight(password, "\r\n"),
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
			for field, msgs := range appErr.Fields {
				for _, msg := range msgs {
					fmt.Printf("%s: %s\n", field, msg)
				}
			}
			os.Exit(1)
		}
		log.Fatalf("Failed to create staff account: %v", err)
	}
	fmt.Printf("Created staff account %s (ID: %d)\n", user.Username, user.ID)
}
