// Seeds the reference role/permission data and a bootstrap admin account.
// Safe to run repeatedly: every write is an upsert or duplicate-tolerant.
package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bazarit/marketplace-api/internal/core/domain"
	"github.com/bazarit/marketplace-api/internal/infrastructure/config"
	mongodb "github.com/bazarit/marketplace-api/internal/infrastructure/db/mongo"
	"github.com/bazarit/marketplace-api/pkg/logger"
)

var permissions = []struct{ name, description string }{
	{"manage_users", "Can manage users"},
	{"manage_shops", "Can manage shops"},
	{"add_product", "Can add products"},
	{"view_analytics", "Can view analytics"},
}

var roles = []struct {
	name        string
	description string
	permissions []string
}{
	{domain.RoleAdmin, "Platform administrator", []string{"manage_users", "manage_shops", "add_product", "view_analytics"}},
	{domain.RoleShopOwner, "Shop manager account", []string{"add_product", "view_analytics"}},
	{domain.RoleBuyer, "Customer buyer account", nil},
}

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = client.Disconnect(ctx) }()

	roleRepo := mongodb.NewRoleRepository(db)
	userRepo := mongodb.NewUserRepository(db)

	if err := roleRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}

	for _, p := range permissions {
		if _, err := roleRepo.CreatePermission(ctx, p.name, p.description); err != nil &&
			!errors.Is(err, domain.ErrPermissionExists) {
			log.Fatal().Err(err).Str("permission", p.name).Msg("seed permission failed")
		}
	}

	for _, r := range roles {
		if _, err := roleRepo.CreateRole(ctx, r.name, r.description); err != nil &&
			!errors.Is(err, domain.ErrRoleExists) {
			log.Fatal().Err(err).Str("role", r.name).Msg("seed role failed")
		}
		for _, perm := range r.permissions {
			if err := roleRepo.AttachPermission(ctx, r.name, perm); err != nil {
				log.Fatal().Err(err).Str("role", r.name).Str("permission", perm).Msg("attach permission failed")
			}
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash admin password failed")
	}

	now := time.Now().UTC()
	_, err = userRepo.Create(ctx, &domain.User{
		Name:         "Bazarit Admin",
		Phone:        "+251911000000",
		PasswordHash: string(hash),
		RoleName:     domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil && !errors.Is(err, domain.ErrUserExists) {
		log.Fatal().Err(err).Msg("seed admin user failed")
	}

	log.Info().Msg("seed complete")
}
