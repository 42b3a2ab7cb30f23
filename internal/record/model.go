package record

import "time"

// Customer is a company record on the CRM dashboard.
type Customer struct {
	ID          uint64    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	Industry    string    `json:"industry"`
	Status      string    `json:"status"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Location    string    `json:"location"`
	Website     string    `json:"website"`
	Notes       string    `json:"notes"`
	Contacts    int       `json:"contacts"`
	Revenue     int64     `json:"revenue"`
	LastContact string    `json:"last_contact"`
	Followed    bool      `json:"followed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Deal is a sales opportunity.
type Deal struct {
	ID            uint64    `json:"id" gorm:"primaryKey"`
	Title         string    `json:"title"`
	Customer      string    `json:"customer"`
	Value         int64     `json:"value"`
	Stage         string    `json:"stage"`
	Probability   int       `json:"probability"`
	ExpectedClose string    `json:"expected_close"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Ticket is a support request.
type Ticket struct {
	ID          uint64    `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title"`
	Customer    string    `json:"customer"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	Assignee    string    `json:"assignee"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Task is a to-do item tied to a record.
type Task struct {
	ID        uint64    `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title"`
	RelatedTo string    `json:"related_to"`
	DueDate   string    `json:"due_date"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusTag carries the display label and color for an enum value, replacing
// ad hoc string comparison in views.
type StatusTag struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var CustomerStatusTags = map[string]StatusTag{
	"lead":     {Label: "Lead", Color: "#f59e0b"},
	"active":   {Label: "Active", Color: "#22c55e"},
	"inactive": {Label: "Inactive", Color: "#64748b"},
}

var DealStageTags = map[string]StatusTag{
	"lead":        {Label: "Lead", Color: "#94a3b8"},
	"qualified":   {Label: "Qualified", Color: "#38bdf8"},
	"proposal":    {Label: "Proposal", Color: "#818cf8"},
	"negotiation": {Label: "Negotiation", Color: "#f59e0b"},
	"closed_won":  {Label: "Closed (Won)", Color: "#22c55e"},
	"closed_lost": {Label: "Closed (Lost)", Color: "#ef4444"},
}

var TicketPriorityTags = map[string]StatusTag{
	"low":      {Label: "Low", Color: "#94a3b8"},
	"medium":   {Label: "Medium", Color: "#38bdf8"},
	"high":     {Label: "High", Color: "#f59e0b"},
	"critical": {Label: "Critical", Color: "#ef4444"},
}
