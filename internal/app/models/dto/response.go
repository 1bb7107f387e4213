package dto

// DeleteConfirmation is the body returned after a record is removed
const DeleteConfirmation = "Student has been deleted..."

// HealthResponse is returned by the liveness probe
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
