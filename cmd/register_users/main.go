package main

import (
	"fmt"
	"os"
	"strings"

	"library-portal/configs"
	"library-portal/portal"
)

type seedUser struct {
	user     portal.User
	password string
}

func main() {
	cfg := configs.Load()

	// Clean up any existing database files so seeding starts fresh.
	fmt.Println("Cleaning up existing database files...")
	dbFiles := []string{cfg.DBPath, cfg.DBPath + "-shm", cfg.DBPath + "-wal"}
	for _, file := range dbFiles {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Could not remove %s: %v\n", file, err)
		}
	}
	fmt.Println("Database cleanup complete.")

	storage, err := portal.OpenSQLiteStorage(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating database: %v\n", err)
		os.Exit(1)
	}
	defer storage.Close()

	session := portal.NewSessionStore(storage, portal.WithLogger(portal.NopLogger()))

	seeds := []seedUser{
		{
			user: portal.User{
				Username:    "mgarcia",
				FullName:    "María García",
				Email:       "maria.garcia@example.com",
				Department:  "Biblioteconomía",
				MemberSince: "Marzo 2023",
				Avatar:      "https://placehold.co/150x150/4B5563/FFFFFF?text=MG",
			},
			password: "lectora2023",
		},
		{
			user: portal.User{
				Username:    "jperez",
				FullName:    "Juan Pérez",
				Email:       "juan.perez@example.com",
				Department:  "Historia",
				MemberSince: "Julio 2024",
				Avatar:      "https://placehold.co/150x150/4B5563/FFFFFF?text=JP",
			},
			password: "archivo1984",
		},
		{
			user: portal.User{
				Username:    "lrodriguez",
				FullName:    "Lucía Rodríguez",
				Email:       "lucia.rodriguez@example.com",
				Department:  "Ingeniería de Software",
				MemberSince: "Enero 2025",
				Avatar:      "https://placehold.co/150x150/4B5563/FFFFFF?text=LR",
			},
			password: "gopher.2025",
		},
	}

	fmt.Printf("Registering %d members...\n", len(seeds))

	successCount := 0
	errorCount := 0

	for _, seed := range seeds {
		fmt.Printf("Registering: %s (%s)... ", seed.user.FullName, seed.user.Username)
		if err := session.RegisterUser(seed.user, seed.password); err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Println("SUCCESS")
		successCount++
	}

	fmt.Printf("\nSeeding complete!\n")
	fmt.Printf("Successfully registered: %d members\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount > 0 {
		fmt.Println("\nRegistered members:")
		fmt.Printf("%-15s %-25s %-30s %s\n", "Username", "Full Name", "Email", "Department")
		fmt.Println(strings.Repeat("-", 95))
		for _, seed := range seeds {
			fmt.Printf("%-15s %-25s %-30s %s\n",
				seed.user.Username, seed.user.FullName, seed.user.Email, seed.user.Department)
		}
	}
}
