package db

import (
	"log"

	"nexussync/internal/record"
	"nexussync/internal/user"
)

// Migrate runs database migrations
func Migrate() {
	err := AppDb.AutoMigrate(
		&user.User{},
		&record.Customer{},
		&record.Deal{},
		&record.Ticket{},
		&record.Task{},
	)

	if err != nil {
		log.Fatal(err)
	}

	log.Println("Database schema migrated successfully")
}

// SeedData seeds the database with initial data (for development only)
func SeedData() {
	seedUsers()
	seedRecords()
}

func seedUsers() {
	userRepo := user.NewRepository(AppDb)
	userService := user.NewService(userRepo)

	seed := []user.User{
		{ID: "user1", Name: "John Smith", Email: "john@nexussync.dev", Password: "password123", Role: "Admin", Avatar: "👨‍💼", Color: "#4361ee"},
		{ID: "user2", Name: "Emily Johnson", Email: "emily@nexussync.dev", Password: "password123", Role: "Sales", Avatar: "👩‍💼", Color: "#f72585"},
		{ID: "user3", Name: "Michael Wong", Email: "michael@nexussync.dev", Password: "password123", Role: "Support", Avatar: "👨‍💻", Color: "#7209b7"},
	}

	for i := range seed {
		if _, err := userRepo.FindByEmail(seed[i].Email); err == nil {
			continue
		}
		if err := userService.Register(&seed[i]); err != nil {
			log.Printf("Error seeding user %s: %v", seed[i].Email, err)
		} else {
			log.Printf("Created seed user: %s", seed[i].Email)
		}
	}
}

func seedRecords() {
	var count int64
	AppDb.Model(&record.Customer{}).Count(&count)
	if count > 0 {
		return
	}

	customers := []record.Customer{
		{Name: "Acme Corporation", Industry: "Manufacturing", Status: "active", Email: "contact@acmecorp.com", Phone: "+1 (555) 123-4567", Location: "New York, USA", LastContact: "2023-04-15", Contacts: 3, Revenue: 1500000},
		{Name: "TechFlow Solutions", Industry: "Technology", Status: "active", Email: "info@techflow.io", Phone: "+1 (555) 987-6543", Location: "San Francisco, USA", LastContact: "2023-04-12", Contacts: 5, Revenue: 750000},
		{Name: "Green Energy Labs", Industry: "Energy", Status: "lead", Email: "contact@greenenergy.com", Phone: "+1 (555) 234-5678", Location: "Austin, USA", LastContact: "2023-04-10", Contacts: 2},
		{Name: "QuickServe Retail", Industry: "Retail", Status: "inactive", Email: "support@quickserve.com", Phone: "+1 (555) 876-5432", Location: "Chicago, USA", LastContact: "2023-03-28", Contacts: 1, Revenue: 350000},
		{Name: "Harmony Healthcare", Industry: "Healthcare", Status: "active", Email: "care@harmony.health", Phone: "+1 (555) 345-6789", Location: "Boston, USA", LastContact: "2023-04-14", Contacts: 4, Revenue: 2100000},
	}
	deals := []record.Deal{
		{Title: "Annual software subscription", Customer: "Acme Corporation", Value: 25000, Stage: "proposal", Probability: 60, ExpectedClose: "2023-05-10"},
		{Title: "Custom integration project", Customer: "TechFlow Solutions", Value: 15000, Stage: "negotiation", Probability: 80, ExpectedClose: "2023-05-05"},
		{Title: "Support package upgrade", Customer: "Harmony Healthcare", Value: 8000, Stage: "qualified", Probability: 40, ExpectedClose: "2023-05-20"},
		{Title: "Pilot program", Customer: "Green Energy Labs", Value: 5000, Stage: "lead", Probability: 20, ExpectedClose: "2023-06-15"},
		{Title: "Hardware renewal", Customer: "Acme Corporation", Value: 12000, Stage: "closed_won", Probability: 100, ExpectedClose: "2023-04-01"},
	}
	tickets := []record.Ticket{
		{Title: "Cannot access reporting module", Customer: "Acme Corporation", Priority: "high", Status: "open", Assignee: "John Smith"},
		{Title: "Error when processing returns", Customer: "QuickServe Retail", Priority: "critical", Status: "in_progress", Assignee: "Emily Johnson"},
		{Title: "Need help with custom exports", Customer: "Harmony Healthcare", Priority: "medium", Status: "open", Assignee: "Unassigned"},
	}
	tasks := []record.Task{
		{Title: "Follow up with Acme Corp", RelatedTo: "Acme Corporation", DueDate: "2023-04-20", Status: "pending", Priority: "high"},
		{Title: "Prepare proposal for TechFlow", RelatedTo: "TechFlow Solutions", DueDate: "2023-04-18", Status: "in_progress", Priority: "high"},
		{Title: "Review Green Energy contract", RelatedTo: "Green Energy Labs", DueDate: "2023-04-25", Status: "pending", Priority: "medium"},
	}

	if err := AppDb.Create(&customers).Error; err != nil {
		log.Printf("Error seeding customers: %v", err)
	}
	if err := AppDb.Create(&deals).Error; err != nil {
		log.Printf("Error seeding deals: %v", err)
	}
	if err := AppDb.Create(&tickets).Error; err != nil {
		log.Printf("Error seeding tickets: %v", err)
	}
	if err := AppDb.Create(&tasks).Error; err != nil {
		log.Printf("Error seeding tasks: %v", err)
	}
	log.Println("Seeded CRM records")
}
