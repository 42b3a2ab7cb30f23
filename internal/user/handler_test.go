package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nexussync/internal/config"
	"nexussync/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redisLib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var miniRedis *miniredis.Miniredis

// MockService is a mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(user *User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockService) Login(email, password string) (*User, error) {
	args := m.Called(email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockService) GetUserByID(id string) (*User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockService) ListUsers() ([]SafeUser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return []SafeUser{}, args.Error(1)
	}
	return args.Get(0).([]SafeUser), args.Error(1)
}

func (m *MockService) DeactivateUser(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func setupRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	config.AppConfig.JWTSecret = "test-secret"

	// Initialize miniredis for testing if not already done
	if miniRedis == nil {
		var err error
		miniRedis, err = miniredis.Run()
		if err != nil {
			panic(err)
		}
	}

	// Set up Redis client connected to miniredis
	if redis.RedisClient == nil {
		redis.RedisClient = redisLib.NewClient(&redisLib.Options{
			Addr: miniRedis.Addr(),
		})
	}

	return router
}

func teardownRouter() {
	if miniRedis != nil {
		miniRedis.Close()
		miniRedis = nil
		redis.RedisClient = nil
	}
}

func TestRegister_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter(handler)
	defer teardownRouter()

	mockService.On("Register", mock.MatchedBy(func(user *User) bool {
		return user.Name == "John Smith" &&
			user.Email == "john@example.com" &&
			user.Password == "password123"
	})).Return(nil).Run(func(args mock.Arguments) {
		user := args.Get(0).(*User)
		user.ID = "user1"
		user.CreatedAt = time.Now()
		user.UpdatedAt = time.Now()
	})

	router.POST("/register", handler.Register)

	payload := FormRegister{
		Name:     "John Smith",
		Email:    "john@example.com",
		Password: "password123",
		Role:     "Admin",
	}
	body, _ := json.Marshal(payload)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]SafeUser
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "user1", response["user"].ID)
	assert.Equal(t, "John Smith", response["user"].Name)
	mockService.AssertExpectations(t)
}

func TestRegister_InvalidInput(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter(handler)
	defer teardownRouter()

	router.POST("/register", handler.Register)

	// Missing password
	body, _ := json.Marshal(map[string]string{
		"name":  "John Smith",
		"email": "john@example.com",
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Register")
}

func TestLogin_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter(handler)
	defer teardownRouter()

	mockService.On("Login", "john@example.com", "password123").Return(&User{
		ID:       "user1",
		Name:     "John Smith",
		Email:    "john@example.com",
		Role:     "Admin",
		IsActive: true,
	}, nil)

	router.POST("/login", handler.Login)

	body, _ := json.Marshal(FormLogin{
		Email:    "john@example.com",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		AccessToken string   `json:"access_token"`
		User        SafeUser `json:"user"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.NotEmpty(t, response.AccessToken)
	assert.Equal(t, "user1", response.User.ID)
	mockService.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter(handler)
	defer teardownRouter()

	mockService.On("Login", "john@example.com", "wrong").
		Return(nil, assert.AnError)

	router.POST("/login", handler.Login)

	body, _ := json.Marshal(FormLogin{
		Email:    "john@example.com",
		Password: "wrong",
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	mockService.AssertExpectations(t)
}

func TestGetProfile_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter(handler)
	defer teardownRouter()

	mockService.On("GetUserByID", "user1").Return(&User{
		ID:       "user1",
		Name:     "John Smith",
		Email:    "john@example.com",
		IsActive: true,
	}, nil)

	router.GET("/profile", func(c *gin.Context) {
		c.Set("user_id", "user1")
		handler.GetProfile(c)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/profile", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]SafeUser
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "John Smith", response["user"].Name)
	mockService.AssertExpectations(t)
}

func TestListUsers_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter(handler)
	defer teardownRouter()

	mockService.On("ListUsers").Return([]SafeUser{
		{ID: "user1", Name: "John Smith"},
		{ID: "user2", Name: "Emily Johnson"},
	}, nil)

	router.GET("/users", handler.ListUsers)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/users", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string][]SafeUser
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response["users"], 2)
	mockService.AssertExpectations(t)
}
