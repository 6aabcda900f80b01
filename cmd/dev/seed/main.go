package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"travelagency/internal/authz"
	"travelagency/internal/catalog"
	"travelagency/internal/job"
	"travelagency/internal/user"
	"travelagency/pkg/config"
	"travelagency/pkg/db"
	"travelagency/pkg/retry"
)

func main() {
	var (
		email    = flag.String("customer-email", "", "seed customer email (defaults to a random @example.com address)")
		password = flag.String("customer-password", "password123", "seed customer password")
	)
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.Open(ctx, cfg, retry.FromConfig(cfg.Retry))
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Slugs and the default email carry a run tag so the tool can be re-run.
	tag := uuid.NewString()[:8]
	if *email == "" {
		*email = "customer-" + tag + "@example.com"
	}

	hash, err := user.HashPassword(*password, cfg.Auth.BcryptCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(2)
	}

	var (
		tourIDs []string
		visaIDs []string
		jobIDs  []string
		cust    *user.User
	)
	err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		for _, t := range sampleTours() {
			t.Slug = catalog.Slugify(t.Title + " " + tag)
			id, err := catalog.InsertTour(ctx, tx, t)
			if err != nil {
				return fmt.Errorf("insert tour %q: %w", t.Title, err)
			}
			tourIDs = append(tourIDs, id)
		}
		for _, v := range sampleVisas() {
			id, err := catalog.InsertVisa(ctx, tx, v)
			if err != nil {
				return fmt.Errorf("insert visa %q: %w", v.Country, err)
			}
			visaIDs = append(visaIDs, id)
		}
		for _, p := range samplePostings() {
			id, err := job.InsertPosting(ctx, tx, p)
			if err != nil {
				return fmt.Errorf("insert posting %q: %w", p.Title, err)
			}
			jobIDs = append(jobIDs, id)
		}
		var err error
		cust, err = user.Create(ctx, tx, user.CreateParams{
			Email:        *email,
			PasswordHash: hash,
			Name:         "Seed Customer",
			Role:         authz.RoleCustomer,
		})
		return err
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seed complete.\n")
	fmt.Printf("customer id=%s email=%s password=%s\n", cust.ID, cust.Email, *password)
	fmt.Printf("tours: %v\n", tourIDs)
	fmt.Printf("visas: %v\n", visaIDs)
	fmt.Printf("jobs:  %v\n", jobIDs)

	fmt.Printf("\nNext steps:\n")
	fmt.Printf("- Log in: POST http://localhost:8080/v1/auth/login\n")
	fmt.Printf("- Book:   POST http://localhost:8080/v1/bookings {\"packageKind\":\"TOUR\",\"packageId\":\"%s\",...}\n", tourIDs[0])
}

func sampleTours() []catalog.Tour {
	return []catalog.Tour{
		{
			Title:        "Everest Base Camp Trek",
			Location:     "Khumbu",
			Country:      "Nepal",
			Category:     "adventure",
			Description:  "Fourteen days through Sherpa villages to the foot of Everest.",
			DurationDays: 14,
			Price:        decimal.RequireFromString("1899.00"),
			Currency:     "USD",
			Featured:     true,
			IsActive:     true,
		},
		{
			Title:        "Maldives Island Escape",
			Location:     "North Male Atoll",
			Country:      "Maldives",
			Category:     "beach",
			Description:  "Overwater villa stay with snorkelling excursions.",
			DurationDays: 6,
			Price:        decimal.RequireFromString("2450.50"),
			Currency:     "USD",
			IsActive:     true,
		},
		{
			Title:        "Paris City Lights",
			Location:     "Paris",
			Country:      "France",
			Category:     "city",
			Description:  "Museums, river cruise and a day trip to Versailles.",
			DurationDays: 5,
			Price:        decimal.RequireFromString("1320.00"),
			Currency:     "EUR",
			IsActive:     false,
		},
	}
}

func sampleVisas() []catalog.VisaPackage {
	return []catalog.VisaPackage{
		{
			Country:        "Japan",
			VisaType:       "Tourist",
			Category:       "tourist",
			Description:    "Single entry, up to 90 days.",
			ProcessingDays: 7,
			Price:          decimal.RequireFromString("120.00"),
			Currency:       "USD",
			Requirements:   []string{"Passport valid for 6 months", "Bank statement", "Return ticket"},
			IsActive:       true,
		},
		{
			Country:        "United Kingdom",
			VisaType:       "Standard Visitor",
			Category:       "tourist",
			Description:    "Multiple entry, up to 6 months per visit.",
			ProcessingDays: 21,
			Price:          decimal.RequireFromString("185.00"),
			Currency:       "USD",
			Requirements:   []string{"Passport", "Proof of accommodation"},
			IsActive:       true,
		},
	}
}

func samplePostings() []job.Posting {
	return []job.Posting{
		{
			Title:            "Travel Consultant",
			Department:       "Sales",
			Type:             "FULL_TIME",
			Location:         "Remote",
			Description:      "Plan itineraries and look after customers before and during their trips.",
			Requirements:     []string{"2+ years in travel sales"},
			Responsibilities: []string{"Quote packages", "Handle booking changes"},
			Benefits:         []string{"Annual travel allowance"},
			Positions:        2,
			IsActive:         true,
		},
		{
			Title:       "Visa Processing Officer",
			Department:  "Operations",
			Type:        "PART_TIME",
			Location:    "Kathmandu",
			Description: "Prepare and track visa applications.",
			Positions:   1,
			IsActive:    false,
		},
	}
}
