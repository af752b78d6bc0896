// Package dto provides request and response types shared by the catalog
// API handlers. huma uses them to generate OpenAPI documentation and to
// validate requests.
package dto

// IDParam is a path parameter for resource IDs.
type IDParam struct {
	ID int64 `path:"id" minimum:"1" doc:"Resource identifier"`
}

// MessageResponse is a simple success message response.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}
