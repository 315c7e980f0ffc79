package domain

// ErrorResponse is the standardized error body for API responses.
type ErrorResponse struct {
	Code     int               `json:"code" example:"400"`
	Category string            `json:"category" example:"VALIDATION_ERROR"`
	Message  string            `json:"message" example:"price must be greater than zero"`
	Fields   map[string]string `json:"fields,omitempty"`
}
