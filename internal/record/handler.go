package record

import (
	"net/http"
	"strconv"

	"nexussync/internal/errors"
	"nexussync/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for CRM records
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterValidations installs record enum validators on gin's binding engine.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("customerstatus", func(fl validator.FieldLevel) bool {
			_, ok := CustomerStatusTags[fl.Field().String()]
			return ok
		})
		_ = v.RegisterValidation("dealstage", func(fl validator.FieldLevel) bool {
			_, ok := DealStageTags[fl.Field().String()]
			return ok
		})
		_ = v.RegisterValidation("recordpriority", func(fl validator.FieldLevel) bool {
			_, ok := TicketPriorityTags[fl.Field().String()]
			return ok
		})
	}
}

// FormCustomer represents customer form data
type FormCustomer struct {
	Name        string `json:"name" binding:"required"`
	Industry    string `json:"industry" binding:"required"`
	Status      string `json:"status" binding:"required,customerstatus"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
	Location    string `json:"location"`
	Website     string `json:"website"`
	Notes       string `json:"notes"`
	LastContact string `json:"last_contact"`
}

func (h *Handler) ListCustomers(c *gin.Context) {
	page, pageSize := utils.GetPaginationParams(c)
	status := c.Query("status")
	query := c.Query("q")

	result, err := h.service.ListCustomers(c.Request.Context(), page, pageSize, status, query)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ShowCustomer(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		errors.HandleError(c, errors.BadRequest("Invalid record id", err))
		return
	}

	customer, err := h.service.GetCustomer(c.Request.Context(), id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer, "status_tag": CustomerStatusTags[customer.Status]})
}

func (h *Handler) CreateCustomer(c *gin.Context) {
	var form FormCustomer
	if err := c.ShouldBindJSON(&form); err != nil {
		errors.HandleError(c, errors.BadRequest("Invalid input", err))
		return
	}

	customer := &Customer{
		Name:        form.Name,
		Industry:    form.Industry,
		Status:      form.Status,
		Email:       form.Email,
		Phone:       form.Phone,
		Location:    form.Location,
		Website:     form.Website,
		Notes:       form.Notes,
		LastContact: form.LastContact,
	}
	if err := h.service.CreateCustomer(c.Request.Context(), customer); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		errors.HandleError(c, errors.BadRequest("Invalid record id", err))
		return
	}

	var form FormCustomer
	if err := c.ShouldBindJSON(&form); err != nil {
		errors.HandleError(c, errors.BadRequest("Invalid input", err))
		return
	}

	customer, err := h.service.GetCustomer(c.Request.Context(), id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	customer.Name = form.Name
	customer.Industry = form.Industry
	customer.Status = form.Status
	customer.Email = form.Email
	customer.Phone = form.Phone
	customer.Location = form.Location
	customer.Website = form.Website
	customer.Notes = form.Notes
	if form.LastContact != "" {
		customer.LastContact = form.LastContact
	}

	if err := h.service.UpdateCustomer(c.Request.Context(), customer); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		errors.HandleError(c, errors.BadRequest("Invalid record id", err))
		return
	}
	if err := h.service.DeleteCustomer(c.Request.Context(), id); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted"})
}

// FormDeal represents deal form data
type FormDeal struct {
	Title         string `json:"title" binding:"required"`
	Customer      string `json:"customer" binding:"required"`
	Value         int64  `json:"value" binding:"required"`
	Stage         string `json:"stage" binding:"required,dealstage"`
	Probability   int    `json:"probability" binding:"min=0,max=100"`
	ExpectedClose string `json:"expected_close"`
}

func (h *Handler) ListDeals(c *gin.Context) {
	page, pageSize := utils.GetPaginationParams(c)
	deals, meta, err := h.service.ListDeals(c.Request.Context(), page, pageSize)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": deals, "meta": meta})
}

func (h *Handler) CreateDeal(c *gin.Context) {
	var form FormDeal
	if err := c.ShouldBindJSON(&form); err != nil {
		errors.HandleError(c, errors.BadRequest("Invalid input", err))
		return
	}
	deal := &Deal{
		Title:         form.Title,
		Customer:      form.Customer,
		Value:         form.Value,
		Stage:         form.Stage,
		Probability:   form.Probability,
		ExpectedClose: form.ExpectedClose,
	}
	if err := h.service.CreateDeal(c.Request.Context(), deal); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"deal": deal})
}

// FormTicket represents ticket form data
type FormTicket struct {
	Title       string `json:"title" binding:"required"`
	Customer    string `json:"customer" binding:"required"`
	Description string `json:"description" binding:"required"`
	Priority    string `json:"priority" binding:"required,recordpriority"`
	Assignee    string `json:"assignee"`
}

func (h *Handler) ListTickets(c *gin.Context) {
	page, pageSize := utils.GetPaginationParams(c)
	tickets, meta, err := h.service.ListTickets(c.Request.Context(), page, pageSize)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tickets, "meta": meta})
}

func (h *Handler) CreateTicket(c *gin.Context) {
	var form FormTicket
	if err := c.ShouldBindJSON(&form); err != nil {
		errors.HandleError(c, errors.BadRequest("Invalid input", err))
		return
	}
	ticket := &Ticket{
		Title:       form.Title,
		Customer:    form.Customer,
		Description: form.Description,
		Priority:    form.Priority,
		Assignee:    form.Assignee,
		Status:      "open",
	}
	if err := h.service.CreateTicket(c.Request.Context(), ticket); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ticket": ticket})
}

// FormTask represents task form data
type FormTask struct {
	Title     string `json:"title" binding:"required"`
	RelatedTo string `json:"related_to"`
	DueDate   string `json:"due_date" binding:"required"`
	Priority  string `json:"priority" binding:"required,recordpriority"`
}

func (h *Handler) ListTasks(c *gin.Context) {
	page, pageSize := utils.GetPaginationParams(c)
	tasks, meta, err := h.service.ListTasks(c.Request.Context(), page, pageSize)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tasks, "meta": meta})
}

func (h *Handler) CreateTask(c *gin.Context) {
	var form FormTask
	if err := c.ShouldBindJSON(&form); err != nil {
		errors.HandleError(c, errors.BadRequest("Invalid input", err))
		return
	}
	task := &Task{
		Title:     form.Title,
		RelatedTo: form.RelatedTo,
		DueDate:   form.DueDate,
		Priority:  form.Priority,
		Status:    "pending",
	}
	if err := h.service.CreateTask(c.Request.Context(), task); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func parseID(c *gin.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
