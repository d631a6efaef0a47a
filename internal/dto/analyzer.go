package dto

// Wire types for the upstream analysis service. One message list per user,
// encoded the way the backend's /analyze endpoints expect it.

type AnalyzeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AnalyzeRequest struct {
	Messages  []AnalyzeMessage `json:"messages"`
	APIKey    string           `json:"api_key"`
	ModelType string           `json:"model_type"`
}

type AnalyzeResponse struct {
	Success        bool    `json:"success"`
	Answer         string  `json:"answer"`
	ProcessingTime float64 `json:"processing_time"`
	Error          string  `json:"error,omitempty"`
}

type BatchAnalyzeItem struct {
	RequestID string           `json:"request_id"`
	Messages  []AnalyzeMessage `json:"messages"`
	APIKey    string           `json:"api_key"`
	ModelType string           `json:"model_type"`
}

type BatchAnalyzeRequest struct {
	Requests []BatchAnalyzeItem `json:"requests"`
}

type BatchSuccessItem struct {
	RequestID      string  `json:"request_id"`
	Answer         string  `json:"answer"`
	ProcessingTime float64 `json:"processing_time"`
}

type BatchFailedItem struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}

type BatchResults struct {
	Successful []BatchSuccessItem `json:"successful"`
	Failed     []BatchFailedItem  `json:"failed"`
}

type BatchSummary struct {
	SuccessfulCount     int     `json:"successful_count"`
	FailedCount         int     `json:"failed_count"`
	TotalProcessingTime float64 `json:"total_processing_time"`
}

type BatchAnalyzeResponse struct {
	Success bool         `json:"success"`
	Results BatchResults `json:"results"`
	Summary BatchSummary `json:"summary"`
}
