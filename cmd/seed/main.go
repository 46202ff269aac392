package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/delivery-marketplace/config"
	"github.com/oksasatya/delivery-marketplace/internal/application"
	"github.com/oksasatya/delivery-marketplace/internal/container"
	"github.com/oksasatya/delivery-marketplace/internal/domain"
	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
	"github.com/oksasatya/delivery-marketplace/internal/domain/repository"
	"github.com/oksasatya/delivery-marketplace/pkg/helpers"
)

var demoUsers = []entity.User{
	{ID: "seed_admin", Email: "admin@example.com", Name: "Demo Admin", Role: entity.RoleAdmin, Onboarded: true},
	{ID: "seed_owner", Email: "owner@example.com", Name: "Demo Owner", Role: entity.RoleOwner, Onboarded: true},
	{ID: "seed_customer", Email: "customer@example.com", Name: "Demo Customer", Role: entity.RoleCustomer, Onboarded: true},
}

var demoStore = entity.Store{
	ID:          "seed_store",
	UserID:      "seed_owner",
	Name:        "Warung Demo",
	Description: "Home cooking, delivered",
	Type:        "food",
	Address:     entity.StoreAddress{Village: "Sukamaju", Street: "Jl. Melati 5"},
	IsApproved:  true,
	IsActive:    true,
}

var demoProducts = []entity.Product{
	{ID: "seed_product_1", StoreID: "seed_store", Name: "Nasi Goreng", Description: "Fried rice with egg", Price: 25000, Stock: 50, Category: "food"},
	{ID: "seed_product_2", StoreID: "seed_store", Name: "Es Teh", Description: "Iced sweet tea", Price: 5000, Stock: 100, Category: "drink"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	store, closeStore, err := container.OpenStore(ctx, cfg, logger, true)
	if err != nil {
		log.Fatalf("document store: %v", err)
	}
	defer closeStore()
	cols := repository.NewCollections(store)
	now := time.Now().UTC()

	for i := range demoUsers {
		u := demoUsers[i]
		u.CreatedAt, u.UpdatedAt = now, now
		mustInsert(cols.Users.Insert(ctx, u.ID, &u), "user", u.ID)
	}

	st := demoStore
	st.CreatedAt, st.UpdatedAt = now, now
	mustInsert(cols.Stores.Insert(ctx, st.ID, &st), "store", st.ID)

	for i := range demoProducts {
		p := demoProducts[i]
		p.CreatedAt, p.UpdatedAt = now, now
		mustInsert(cols.Products.Insert(ctx, p.ID, &p), "product", p.ID)
	}

	customer, err := cols.Users.Get(ctx, "seed_customer")
	if err != nil {
		log.Fatalf("load customer: %v", err)
	}
	orders := application.NewOrderService(cols, nil, logger)
	o, err := orders.Create(ctx, customer, application.CreateOrderInput{
		StoreID:         demoStore.ID,
		DeliveryAddress: "Jl. Kenanga 12",
		Items: []application.LineItem{
			{ProductID: "seed_product_1", Quantity: 2},
			{ProductID: "seed_product_2", Quantity: 1},
		},
	})
	if err != nil {
		log.Fatalf("seed order: %v", err)
	}
	fmt.Printf("seeded order: id=%s number=%s total=%.0f\n", o.ID, o.OrderNumber, o.TotalAmount)

	if cfg.IdentityJWTSecret == "" {
		return
	}
	jwt := helpers.NewJWTManager(cfg.IdentityJWTSecret, cfg.IdentityJWTIssuer, cfg.IdentityTokenTTL)
	for _, u := range demoUsers {
		tok, exp, err := jwt.Generate(u.ID, u.Email, u.Name, "")
		if err != nil {
			log.Fatalf("sign token for %s: %v", u.ID, err)
		}
		fmt.Printf("token %s (%s, expires %s):\n%s\n", u.ID, u.Role, exp.Format(time.RFC3339), tok)
	}
}

// mustInsert treats an existing document as already seeded.
func mustInsert(err error, kind, id string) {
	switch {
	case err == nil:
		fmt.Printf("seeded %s: %s\n", kind, id)
	case errors.Is(err, domain.ErrConflict):
		fmt.Printf("%s %s already present\n", kind, id)
	default:
		log.Fatalf("seed %s %s: %v", kind, id, err)
	}
}
