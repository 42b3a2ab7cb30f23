package record

import (
	"context"
	"testing"

	"nexussync/redis"

	"github.com/alicebob/miniredis/v2"
	redisLib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListCustomers(ctx context.Context, page, pageSize int, status, query string) ([]Customer, Meta, error) {
	args := m.Called(ctx, page, pageSize, status, query)
	return args.Get(0).([]Customer), args.Get(1).(Meta), args.Error(2)
}

func (m *MockRepository) FindCustomer(ctx context.Context, id uint64) (*Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Customer), args.Error(1)
}

func (m *MockRepository) CreateCustomer(ctx context.Context, customer *Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockRepository) UpdateCustomer(ctx context.Context, customer *Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockRepository) DeleteCustomer(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) ListDeals(ctx context.Context, page, pageSize int) ([]Deal, Meta, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]Deal), args.Get(1).(Meta), args.Error(2)
}

func (m *MockRepository) CreateDeal(ctx context.Context, deal *Deal) error {
	args := m.Called(ctx, deal)
	return args.Error(0)
}

func (m *MockRepository) ListTickets(ctx context.Context, page, pageSize int) ([]Ticket, Meta, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]Ticket), args.Get(1).(Meta), args.Error(2)
}

func (m *MockRepository) CreateTicket(ctx context.Context, ticket *Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockRepository) ListTasks(ctx context.Context, page, pageSize int) ([]Task, Meta, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]Task), args.Get(1).(Meta), args.Error(2)
}

func (m *MockRepository) CreateTask(ctx context.Context, task *Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func setupCache(t *testing.T) *redis.Cache {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	t.Cleanup(mr.Close)

	client := redisLib.NewClient(&redisLib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redis.NewCache(client)
}

func TestListCustomers_HitsRepositoryOnColdCache(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, setupCache(t))

	mockRepo.On("ListCustomers", mock.Anything, 1, 10, "active", "").
		Return([]Customer{{ID: 1, Name: "Acme Corporation", Status: "active"}}, Meta{Total: 1, CurrentPage: 1, PerPage: 10, TotalPage: 1}, nil).
		Once()

	result, err := service.ListCustomers(context.Background(), 1, 10, "active", "")

	assert.NoError(t, err)
	assert.Len(t, result.Data, 1)
	assert.Equal(t, "Acme Corporation", result.Data[0].Name)
	assert.Equal(t, int64(1), result.Meta.Total)
	mockRepo.AssertExpectations(t)
}

func TestGetCustomer_NotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, setupCache(t))

	mockRepo.On("FindCustomer", mock.Anything, uint64(404)).
		Return(nil, gorm.ErrRecordNotFound)

	customer, err := service.GetCustomer(context.Background(), 404)

	assert.Nil(t, customer)
	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCreateCustomer_RejectsUnknownStatus(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, setupCache(t))

	err := service.CreateCustomer(context.Background(), &Customer{Name: "Acme", Status: "vip"})

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "CreateCustomer")
}

func TestCreateCustomer_BumpsCacheVersion(t *testing.T) {
	mockRepo := new(MockRepository)
	cache := setupCache(t)
	service := NewService(mockRepo, cache)

	mockRepo.On("CreateCustomer", mock.Anything, mock.Anything).Return(nil)

	before := cache.GetVersion(context.Background(), customersVersionKey)
	err := service.CreateCustomer(context.Background(), &Customer{Name: "Acme", Status: "lead"})

	assert.NoError(t, err)
	assert.Equal(t, before+1, cache.GetVersion(context.Background(), customersVersionKey))
	mockRepo.AssertExpectations(t)
}

func TestUpdateCustomer_RequiresExisting(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, setupCache(t))

	mockRepo.On("FindCustomer", mock.Anything, uint64(7)).
		Return(nil, gorm.ErrRecordNotFound)

	err := service.UpdateCustomer(context.Background(), &Customer{ID: 7, Name: "Acme", Status: "active"})

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "UpdateCustomer")
}

func TestCreateDeal_RejectsUnknownStage(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, setupCache(t))

	err := service.CreateDeal(context.Background(), &Deal{Title: "Enterprise deal", Stage: "maybe"})

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "CreateDeal")
}

func TestCreateTicket_ValidPriority(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, setupCache(t))

	mockRepo.On("CreateTicket", mock.Anything, mock.Anything).Return(nil)

	err := service.CreateTicket(context.Background(), &Ticket{Title: "Login issue", Priority: "high"})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
