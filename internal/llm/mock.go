package llm

import "context"

// MockProvider permite tests sin llamar a un LLM real.
type MockProvider struct {
	ProviderName string
	Response     *Response
	Err          error
	Calls        int
}

func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}
