package main

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"neighborly/internal/config"
	"neighborly/internal/database"
	"neighborly/internal/domain"
)

// Development seed: one community with a handful of residents,
// categories and listings in various lifecycle states.
func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.Database.URL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migration failed:", err)
	}

	// Cleanup old data in FK-safe order.
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM exchange_flags")
	db.Exec("DELETE FROM exchange_transactions")
	db.Exec("DELETE FROM exchange_listing_neighborhoods")
	db.Exec("DELETE FROM exchange_listings")
	db.Exec("DELETE FROM exchange_categories")
	db.Exec("DELETE FROM users")
	db.Exec("DELETE FROM tenants")

	log.Println("Creating tenant...")
	tenant := domain.Tenant{
		ID:   uuid.NewString(),
		Slug: "riverside-commons",
		Name: "Riverside Commons",
	}
	db.Create(&tenant)

	log.Println("Creating users...")
	users := []domain.User{
		{ID: uuid.NewString(), TenantID: tenant.ID, FirstName: "Asel", LastName: "Nurlanova", Email: "asel@example.com", Role: domain.RoleResident},
		{ID: uuid.NewString(), TenantID: tenant.ID, FirstName: "Bekzat", LastName: "Omarov", Email: "bekzat@example.com", Role: domain.RoleResident},
		{ID: uuid.NewString(), TenantID: tenant.ID, FirstName: "Dina", LastName: "Sadykova", Email: "dina@example.com", Role: domain.RoleModerator},
		{ID: uuid.NewString(), TenantID: tenant.ID, FirstName: "Marat", LastName: "Aliyev", Email: "marat@example.com", Role: domain.RoleAdmin},
	}
	for i := range users {
		db.Create(&users[i])
	}

	log.Println("Creating categories...")
	categories := []domain.Category{
		{ID: uuid.NewString(), TenantID: tenant.ID, Name: "Tools", Description: "Power and hand tools"},
		{ID: uuid.NewString(), TenantID: tenant.ID, Name: "Outdoors", Description: "Camping and garden gear"},
		{ID: uuid.NewString(), TenantID: tenant.ID, Name: "Kitchen", Description: "Appliances and cookware"},
	}
	for i := range categories {
		db.Create(&categories[i])
	}

	log.Println("Creating listings...")
	now := time.Now()
	price := 5.0
	used := domain.ConditionUsed
	listings := []domain.Listing{
		{
			ID:                uuid.NewString(),
			TenantID:          tenant.ID,
			CreatedBy:         users[0].ID,
			CategoryID:        categories[0].ID,
			Title:             "Cordless drill",
			Description:       "18V drill with two batteries and a charger.",
			Status:            domain.ListingPublished,
			PricingType:       domain.PricingFree,
			Condition:         &used,
			AvailableQuantity: 1,
			VisibilityScope:   domain.VisibilityCommunity,
			PublishedAt:       &now,
		},
		{
			ID:                uuid.NewString(),
			TenantID:          tenant.ID,
			CreatedBy:         users[1].ID,
			CategoryID:        categories[1].ID,
			Title:             "Four-person tent",
			Description:       "Easy setup, waterproof. Pegs included.",
			Status:            domain.ListingPublished,
			PricingType:       domain.PricingFixed,
			Price:             &price,
			AvailableQuantity: 2,
			VisibilityScope:   domain.VisibilityCommunity,
			PublishedAt:       &now,
		},
		{
			ID:                uuid.NewString(),
			TenantID:          tenant.ID,
			CreatedBy:         users[1].ID,
			CategoryID:        categories[2].ID,
			Title:             "Stand mixer",
			Description:       "Heavy duty, great for bread dough.",
			Status:            domain.ListingDraft,
			PricingType:       domain.PricingPayWhatYouWant,
			AvailableQuantity: 1,
			VisibilityScope:   domain.VisibilityCommunity,
		},
	}
	for i := range listings {
		db.Create(&listings[i])
	}

	fmt.Printf("Seeded tenant %q with %d users, %d categories, %d listings\n",
		tenant.Slug, len(users), len(categories), len(listings))
}
