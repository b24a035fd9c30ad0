package api

// PredictRequest carries advertisement fields for direct scoring.
type PredictRequest struct {
	SellerID         int64  `json:"seller_id"            validate:"min=0"`
	IsVerifiedSeller bool   `json:"is_verified_seller"`
	ItemID           int64  `json:"item_id"              validate:"min=0"`
	Name             string `json:"name"                 validate:"required"`
	Description      string `json:"description"`
	Category         int    `json:"category"             validate:"min=0"`
	ImagesQty        int    `json:"images_qty"           validate:"min=0"`
}

// PredictionResponse is the moderation verdict returned by the synchronous
// scoring endpoints.
type PredictionResponse struct {
	IsViolation bool    `json:"is_violation"`
	Probability float64 `json:"probability"`
}

// AsyncPredictResponse acknowledges an accepted asynchronous moderation
// request.
type AsyncPredictResponse struct {
	TaskID  int64  `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ModerationResultResponse describes a moderation task in its current
// state. Verdict fields are null until the task completes.
type ModerationResultResponse struct {
	TaskID      int64    `json:"task_id"`
	Status      string   `json:"status"`
	IsViolation *bool    `json:"is_violation"`
	Probability *float64 `json:"probability"`
	ErrorMsg    *string  `json:"error_message,omitempty"`
}

// CloseResponse acknowledges a closed advertisement.
type CloseResponse struct {
	Message string `json:"message"`
}
