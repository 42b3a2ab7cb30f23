package record

import (
	"context"
	defError "errors"
	"fmt"
	"time"

	"nexussync/internal/errors"
	"nexussync/redis"

	"gorm.io/gorm"
)

// Service defines CRM record business logic.
type Service interface {
	ListCustomers(ctx context.Context, page, pageSize int, status, query string) (*PaginatedCustomers, error)
	GetCustomer(ctx context.Context, id uint64) (*Customer, error)
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

type DefaultService struct {
	repository Repository
	cache      *redis.Cache
}

func NewService(repository Repository, cache *redis.Cache) Service {
	return &DefaultService{repository: repository, cache: cache}
}

type PaginatedCustomers struct {
	Data []Customer `json:"data"`
	Meta Meta       `json:"meta"`
}

const customersVersionKey = "customers:version"

func (s *DefaultService) ListCustomers(ctx context.Context, page, pageSize int, status, query string) (*PaginatedCustomers, error) {
	// Versioned cache key: bumping the version on writes invalidates every page
	v := s.cache.GetVersion(ctx, customersVersionKey)
	cacheKey := fmt.Sprintf("customers:v:%d:p:%d:ps:%d:s:%s:q:%s", v, page, pageSize, status, query)

	var result PaginatedCustomers
	found, _ := s.cache.Get(ctx, cacheKey, &result)
	if found {
		return &result, nil
	}

	customers, meta, err := s.repository.ListCustomers(ctx, page, pageSize, status, query)
	if err != nil {
		return nil, err
	}
	result = PaginatedCustomers{Data: customers, Meta: meta}
	go s.cache.Set(context.Background(), cacheKey, result, 24*time.Hour)

	return &result, nil
}

func (s *DefaultService) GetCustomer(ctx context.Context, id uint64) (*Customer, error) {
	customer, err := s.repository.FindCustomer(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Customer not found", err)
		}
		return nil, err
	}
	return customer, nil
}

func (s *DefaultService) CreateCustomer(ctx context.Context, customer *Customer) error {
	if _, ok := CustomerStatusTags[customer.Status]; !ok {
		return errors.BadRequest("Unknown customer status", nil)
	}
	if err := s.repository.CreateCustomer(ctx, customer); err != nil {
		return err
	}
	s.cache.IncrementVersion(ctx, customersVersionKey)
	return nil
}

func (s *DefaultService) UpdateCustomer(ctx context.Context, customer *Customer) error {
	if _, ok := CustomerStatusTags[customer.Status]; !ok {
		return errors.BadRequest("Unknown customer status", nil)
	}
	if _, err := s.GetCustomer(ctx, customer.ID); err != nil {
		return err
	}
	if err := s.repository.UpdateCustomer(ctx, customer); err != nil {
		return err
	}
	s.cache.IncrementVersion(ctx, customersVersionKey)
	return nil
}

func (s *DefaultService) DeleteCustomer(ctx context.Context, id uint64) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	if err := s.repository.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	s.cache.IncrementVersion(ctx, customersVersionKey)
	return nil
}

func (s *DefaultService) ListDeals(ctx context.Context, page, pageSize int) ([]Deal, Meta, error) {
	return s.repository.ListDeals(ctx, page, pageSize)
}

func (s *DefaultService) CreateDeal(ctx context.Context, deal *Deal) error {
	if _, ok := DealStageTags[deal.Stage]; !ok {
		return errors.BadRequest("Unknown deal stage", nil)
	}
	return s.repository.CreateDeal(ctx, deal)
}

func (s *DefaultService) ListTickets(ctx context.Context, page, pageSize int) ([]Ticket, Meta, error) {
	return s.repository.ListTickets(ctx, page, pageSize)
}

func (s *DefaultService) CreateTicket(ctx context.Context, ticket *Ticket) error {
	if _, ok := TicketPriorityTags[ticket.Priority]; !ok {
		return errors.BadRequest("Unknown ticket priority", nil)
	}
	return s.repository.CreateTicket(ctx, ticket)
}

func (s *DefaultService) ListTasks(ctx context.Context, page, pageSize int) ([]Task, Meta, error) {
	return s.repository.ListTasks(ctx, page, pageSize)
}

func (s *DefaultService) CreateTask(ctx context.Context, task *Task) error {
	if _, ok := TicketPriorityTags[task.Priority]; !ok {
		return errors.BadRequest("Unknown task priority", nil)
	}
	return s.repository.CreateTask(ctx, task)
}
