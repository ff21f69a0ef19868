package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/proctorguard/backend/internal/config"
	"github.com/proctorguard/backend/internal/database"
	"github.com/proctorguard/backend/internal/logger"
	"github.com/proctorguard/backend/internal/model"
	"github.com/proctorguard/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Staff User ===")

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	// Organization ID
	fmt.Print("Enter Organization ID (UUID): ")
	orgIDStr, _ := reader.ReadString('\n')
	orgID, err := uuid.Parse(strings.TrimSpace(orgIDStr))
	if err != nil {
		fmt.Println("Error: Organization ID must be a valid UUID")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 8 {
		fmt.Println("Error: Password must be at least 8 characters")
		return
	}

	// Role
	fmt.Print("Enter Role (default EXAM_COORDINATOR): ")
	roleStr, _ := reader.ReadString('\n')
	role := model.Role(strings.TrimSpace(roleStr))
	if role == "" {
		role = model.RoleExamCoordinator
	}
	if _, ok := model.RolePermissions[role]; !ok || role == model.RoleCandidate {
		fmt.Println("Error: Role must be a staff role (SUPER_ADMIN, ORG_ADMIN, EXAM_AUTHOR, EXAM_COORDINATOR, ENROLLMENT_MANAGER)")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	newUser := &model.User{
		OrganizationID: orgID,
		Email:          email,
		Name:           name,
		PasswordHash:   string(hashedPassword),
		Role:           role,
	}

	if err := userRepo.Create(ctx, newUser); err != nil {
		if repository.IsUniqueViolation(err) {
			fmt.Println("Error: A user with that email already exists")
			return
		}
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	fmt.Printf("\nSuccess! %s '%s' (%s) created with ID: %s\n", newUser.Role, newUser.Name, newUser.Email, newUser.ID)
}
