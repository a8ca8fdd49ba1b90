// internal/domain/fleet/dto.go
package fleet

type CreateDriverRequest struct {
	FullName      string `json:"full_name" binding:"required,max=255"`
	PhoneNumber   string `json:"phone_number" binding:"required,max=20"`
	Email         string `json:"email" binding:"omitempty,email,max=255"`
	LicenceNumber string `json:"licence_number" binding:"required,max=50"`
	LicenceExpiry string `json:"licence_expiry" binding:"required"` // YYYY-MM-DD
}

type UpdateDriverRequest struct {
	FullName      *string `json:"full_name" binding:"omitempty,max=255"`
	PhoneNumber   *string `json:"phone_number" binding:"omitempty,max=20"`
	Email         *string `json:"email" binding:"omitempty,email,max=255"`
	LicenceNumber *string `json:"licence_number" binding:"omitempty,max=50"`
	LicenceExpiry *string `json:"licence_expiry"`
	Status        *string `json:"status" binding:"omitempty,oneof=active on_leave inactive"`
}

type CreateVehicleRequest struct {
	RegistrationPlate string `json:"registration_plate" binding:"required,max=20"`
	Make              string `json:"make" binding:"required,max=100"`
	Model             string `json:"model" binding:"required,max=100"`
	VehicleType       string `json:"vehicle_type" binding:"required,oneof=truck pickup tricycle"`
	CapacityKg        int    `json:"capacity_kg" binding:"required,min=1"`
}

type ScheduleMaintenanceRequest struct {
	Description  string `json:"description" binding:"required,max=500"`
	ScheduledFor string `json:"scheduled_for" binding:"required"` // YYYY-MM-DD
}

type CompleteMaintenanceRequest struct {
	Cost string `json:"cost"`
}
