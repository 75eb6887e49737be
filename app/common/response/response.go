package response

type Response struct {
	StatusCode int    `json:"code"`
	StatusMsg  string `json:"msg"`
}

// ErrorBody is the shape payment providers and the storefront expect from the payment routes.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func NewResponse(statusCode int, statusMsg string) Response {
	return Response{
		StatusCode: statusCode,
		StatusMsg:  statusMsg,
	}
}

func NewErrorBody(msg string, details string) ErrorBody {
	return ErrorBody{
		Error:   msg,
		Details: details,
	}
}
