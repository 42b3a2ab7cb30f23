package record

import (
	"context"

	"gorm.io/gorm"
)

// Meta describes a page of results.
type Meta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

// Repository defines data access for CRM records.
type Repository interface {
	ListCustomers(ctx context.Context, page, pageSize int, status, query string) ([]Customer, Meta, error)
	FindCustomer(ctx context.Context, id uint64) (*Customer, error)
	CreateCustomer(ctx context.Context, customer *Customer) error
	UpdateCustomer(ctx context.Context, customer *Customer) error
	DeleteCustomer(ctx context.Context, id uint64) error

	ListDeals(ctx context.Context, page, pageSize int) ([]Deal, Meta, error)
	CreateDeal(ctx context.Context, deal *Deal) error

	ListTickets(ctx context.Context, page, pageSize int) ([]Ticket, Meta, error)
	CreateTicket(ctx context.Context, ticket *Ticket) error

	ListTasks(ctx context.Context, page, pageSize int) ([]Task, Meta, error)
	CreateTask(ctx context.Context, task *Task) error
}

type RepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new record repository
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) ListCustomers(ctx context.Context, page, pageSize int, status, query string) ([]Customer, Meta, error) {
	var customers []Customer
	var total int64

	tx := r.db.WithContext(ctx).Model(&Customer{})
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	if query != "" {
		tx = tx.Where("name ILIKE ? OR industry ILIKE ?", "%"+query+"%", "%"+query+"%")
	}

	if err := tx.Count(&total).Error; err != nil {
		return customers, Meta{}, err
	}

	offset := (page - 1) * pageSize
	err := tx.Order("name asc").
		Offset(offset).
		Limit(pageSize).
		Find(&customers).Error

	return customers, pageMeta(total, page, pageSize), err
}

func (r *RepositoryImpl) FindCustomer(ctx context.Context, id uint64) (*Customer, error) {
	var customer Customer
	err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *RepositoryImpl) CreateCustomer(ctx context.Context, customer *Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *RepositoryImpl) UpdateCustomer(ctx context.Context, customer *Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *RepositoryImpl) DeleteCustomer(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&Customer{}, "id = ?", id).Error
}

func (r *RepositoryImpl) ListDeals(ctx context.Context, page, pageSize int) ([]Deal, Meta, error) {
	var deals []Deal
	var total int64

	tx := r.db.WithContext(ctx).Model(&Deal{})
	if err := tx.Count(&total).Error; err != nil {
		return deals, Meta{}, err
	}

	err := tx.Order("id asc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&deals).Error
	return deals, pageMeta(total, page, pageSize), err
}

func (r *RepositoryImpl) CreateDeal(ctx context.Context, deal *Deal) error {
	return r.db.WithContext(ctx).Create(deal).Error
}

func (r *RepositoryImpl) ListTickets(ctx context.Context, page, pageSize int) ([]Ticket, Meta, error) {
	var tickets []Ticket
	var total int64

	tx := r.db.WithContext(ctx).Model(&Ticket{})
	if err := tx.Count(&total).Error; err != nil {
		return tickets, Meta{}, err
	}

	err := tx.Order("id asc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tickets).Error
	return tickets, pageMeta(total, page, pageSize), err
}

func (r *RepositoryImpl) CreateTicket(ctx context.Context, ticket *Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *RepositoryImpl) ListTasks(ctx context.Context, page, pageSize int) ([]Task, Meta, error) {
	var tasks []Task
	var total int64

	tx := r.db.WithContext(ctx).Model(&Task{})
	if err := tx.Count(&total).Error; err != nil {
		return tasks, Meta{}, err
	}

	err := tx.Order("due_date asc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tasks).Error
	return tasks, pageMeta(total, page, pageSize), err
}

func (r *RepositoryImpl) CreateTask(ctx context.Context, task *Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func pageMeta(total int64, page, pageSize int) Meta {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Meta{
		Total:       total,
		PerPage:     pageSize,
		TotalPage:   totalPages,
		CurrentPage: page,
	}
}
