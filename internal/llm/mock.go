package llm

import "context"

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response  string
	Err       error
	Calls     int
	LastParts []Part
}

func (m *MockClient) GenerateContent(_ context.Context, parts []Part) (string, error) {
	m.Calls++
	m.LastParts = parts
	return m.Response, m.Err
}
