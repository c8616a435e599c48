package handler

type navigationRequest struct {
	URL string `json:"url" validate:"required"`
}

type loadErrorRequest struct {
	StatusCode  int    `json:"status_code"`
	URL         string `json:"url"         validate:"required"`
	Description string `json:"description"`
}

// messageRequest carries the raw string the injected script posted.
type messageRequest struct {
	Data string `json:"data" validate:"required"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}
