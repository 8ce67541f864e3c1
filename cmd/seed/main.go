package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/carauction/carauction-backend/config"
	"github.com/carauction/carauction-backend/internal/app/repository"
	"github.com/carauction/carauction-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

func main() {
	filePath := flag.String("file", "", "path to the seed XLSX workbook (sheets Admins and Customers)")
	assumeYes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("Usage: go run ./cmd/seed -file seed.xlsx [-yes]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	conn, err := db.Open(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close(conn)

	if err := db.Migrate(conn); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", *filePath)
	f, err := excelize.OpenFile(*filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	workbook, err := readWorkbook(f)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Admins to import: %d, customers to import: %d\n", len(workbook.Admins), len(workbook.Customers))

	if !*assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	result, err := seed(workbook, repository.NewAdminRepository(conn), repository.NewCustomerRepository(conn))
	if err != nil {
		log.Fatal("Failed to seed database:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Admins created: %d, customers created: %d, skipped existing: %d\n",
		result.Admins, result.Customers, result.Skipped)
}
