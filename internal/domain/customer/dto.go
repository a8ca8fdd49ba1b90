// internal/domain/customer/dto.go
package customer

type RegisterCustomerRequest struct {
	FullName       string                 `json:"full_name" binding:"required,max=255"`
	PhoneNumber    string                 `json:"phone_number" binding:"required,max=20"`
	AltPhoneNumber string                 `json:"alt_phone_number" binding:"max=20"`
	Email          string                 `json:"email" binding:"omitempty,email,max=255"`
	Address        string                 `json:"address" binding:"required,max=500"`
	Estate         string                 `json:"estate" binding:"max=255"`
	Latitude       *float64               `json:"latitude"`
	Longitude      *float64               `json:"longitude"`
	Notes          string                 `json:"notes"`
	Tags           []string               `json:"tags"`
	Metadata       map[string]interface{} `json:"metadata"`
}

type UpdateCustomerRequest struct {
	FullName       *string                `json:"full_name" binding:"omitempty,max=255"`
	PhoneNumber    *string                `json:"phone_number" binding:"omitempty,max=20"`
	AltPhoneNumber *string                `json:"alt_phone_number" binding:"omitempty,max=20"`
	Email          *string                `json:"email" binding:"omitempty,email,max=255"`
	Address        *string                `json:"address" binding:"omitempty,max=500"`
	Estate         *string                `json:"estate" binding:"omitempty,max=255"`
	Latitude       *float64               `json:"latitude"`
	Longitude      *float64               `json:"longitude"`
	Notes          *string                `json:"notes"`
	Tags           []string               `json:"tags"`
	Metadata       map[string]interface{} `json:"metadata"`
}

type CustomerListFilters struct {
	Status             string `form:"status" binding:"omitempty,oneof=active inactive suspended"`
	RegistrationStatus string `form:"registration_status" binding:"omitempty,oneof=pending approved rejected"`
	RegistrationPaid   *bool  `form:"registration_paid"`
	RouteID            *int64 `form:"route_id"`
	Search             string `form:"search"` // name, phone, customer number
	Page               int    `form:"page"`
	PageSize           int    `form:"page_size" binding:"omitempty,max=100"`
	SortBy             string `form:"sort_by"` // created_at, full_name, customer_number
	SortOrder          string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

type CustomerListResponse struct {
	Customers  []Customer `json:"customers"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}
