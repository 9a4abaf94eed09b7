package errors

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string         `json:"code"`
	Display string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    CodeOf(err),
			Display: DisplayMessage(err),
			Details: ReportableDetails(err),
		},
	}
}
