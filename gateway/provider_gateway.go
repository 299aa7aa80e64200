package gateway

import (
	"os"

	"github.com/finastack/folio/types"
)

// ProviderItem names one reference to price and the raw fields wanted
// for it.
type ProviderItem struct {
	Reference  string   `json:"reference"`
	Parameters string   `json:"parameters"`
	Fields     []string `json:"fields"`
}

// ProviderRequest is the per-provider pricing bundle.
type ProviderRequest struct {
	Procedure uint64         `json:"procedure"`
	Items     []ProviderItem `json:"items"`
	DateFrom  string         `json:"date_from"`
	DateTo    string         `json:"date_to"`
}

type ProviderValue struct {
	Date      string   `json:"date"`
	Value     *float64 `json:"value"`
	ErrorText *string  `json:"error_text"`
}

type ProviderField struct {
	Code   string          `json:"code"`
	Values []ProviderValue `json:"values"`
}

type ProviderItemResult struct {
	Reference  string          `json:"reference"`
	Parameters string          `json:"parameters"`
	Fields     []ProviderField `json:"fields"`
}

type ProviderResponse struct {
	Items []ProviderItemResult `json:"items"`
}

// ProviderCaller is the capability interface the pricing procedure
// depends on; tests substitute an in-memory caller.
type ProviderCaller interface {
	Fetch(provider types.PricingProvider, request *ProviderRequest) (*ProviderResponse, error)
}

// HTTPProviderGateway talks to the deployed per-provider endpoints
// under one base URL.
type HTTPProviderGateway struct {
	BaseURL string
}

func NewProviderGateway() *HTTPProviderGateway {
	return &HTTPProviderGateway{BaseURL: os.Getenv("PROVIDER_GATEWAY_URL")}
}

func (g *HTTPProviderGateway) Fetch(provider types.PricingProvider, request *ProviderRequest) (*ProviderResponse, error) {
	response := &ProviderResponse{}
	if err := postJSON(g.BaseURL+"/api/v1/providers/"+provider+"/prices", request, response); err != nil {
		return nil, err
	}
	return response, nil
}
