package gateway

import (
	"os"
)

// DataFileUser is the caller identity block of a data-file request.
type DataFileUser struct {
	Token       string                 `json:"token"`
	Credentials map[string]string      `json:"credentials,omitempty"`
	Params      map[string]interface{} `json:"params,omitempty"`
}

// DataFileRequest asks the out-of-process service for a data file. The
// result arrives asynchronously on CallbackURL, encrypted to PublicKey.
type DataFileRequest struct {
	ID          string       `json:"id"`
	User        DataFileUser `json:"user"`
	PublicKey   string       `json:"public_key"`
	DateFrom    string       `json:"date_from"`
	DateTo      string       `json:"date_to"`
	Provider    string       `json:"provider"`
	SchemeName  string       `json:"scheme_name"`
	SchemeType  string       `json:"scheme_type"`
	Files       []string     `json:"files,omitempty"`
	CallbackURL string       `json:"callbackURL"`
}

// DataFileResponse is the callback payload. Delivery is at-least-once;
// handlers key on ID and treat replays as no-ops.
type DataFileResponse struct {
	ID           string                   `json:"id"`
	User         DataFileUser             `json:"user"`
	Data         []map[string]interface{} `json:"data"`
	ErrorStatus  *int32                   `json:"error_status"`
	ErrorMessage *string                  `json:"error_message"`
}

// DataFileService is the narrow capability the procedure engine calls.
type DataFileService interface {
	Request(request *DataFileRequest) error
}

// HTTPDataFileService posts requests to the configured service URL.
type HTTPDataFileService struct {
	BaseURL string
}

func NewDataFileService() *HTTPDataFileService {
	return &HTTPDataFileService{BaseURL: os.Getenv("DATA_FILE_SERVICE_URL")}
}

func (s *HTTPDataFileService) Request(request *DataFileRequest) error {
	return postJSON(s.BaseURL+"/api/v1/data-file/request", request, nil)
}
