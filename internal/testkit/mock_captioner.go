package testkit

import (
	"github.com/stretchr/testify/mock"

	"goshape/domain/caption"
	"goshape/domain/core"
	"goshape/domain/predication"
	"goshape/domain/world"
	"goshape/ports"
)

// MockCaptioner is a testify mock of ports.WorldCaptioner
type MockCaptioner struct {
	mock.Mock
}

func (m *MockCaptioner) SetRealizer(realizer ports.RealizerPort) error {
	args := m.Called(realizer)
	return args.Error(0)
}

func (m *MockCaptioner) Sample(mode core.Mode, p *predication.Predication) bool {
	args := m.Called(mode, p)
	return args.Bool(0)
}

func (m *MockCaptioner) Caption(p *predication.Predication, w *world.World) caption.Caption {
	args := m.Called(p, w)
	if c, ok := args.Get(0).(caption.Caption); ok {
		return c
	}
	return nil
}

func (m *MockCaptioner) Corrupt(c caption.Caption, p *predication.Predication, w *world.World) bool {
	args := m.Called(c, p, w)
	return args.Bool(0)
}

func (m *MockCaptioner) Describe() map[string]interface{} {
	args := m.Called()
	if d, ok := args.Get(0).(map[string]interface{}); ok {
		return d
	}
	return nil
}

func (m *MockCaptioner) GrammarSize() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockCaptioner) GrammarSymbols() map[string]struct{} {
	args := m.Called()
	if s, ok := args.Get(0).(map[string]struct{}); ok {
		return s
	}
	return nil
}

// Symbols builds a symbol set
func Symbols(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

var _ ports.WorldCaptioner = (*MockCaptioner)(nil)
