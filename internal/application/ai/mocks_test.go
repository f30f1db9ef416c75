package ai

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// --- mocks ---

type mockTextModel struct{ mock.Mock }

func (m *mockTextModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type mockImageModel struct{ mock.Mock }

func (m *mockImageModel) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	args := m.Called(ctx, prompt)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type savedFile struct {
	name string
	data string
}

// fakeMedia records saves and fails names listed in failOn.
type fakeMedia struct {
	saved  []savedFile
	failOn map[string]error
}

func (f *fakeMedia) Save(_ context.Context, name string, r io.Reader) (string, error) {
	for prefix, err := range f.failOn {
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			return "", err
		}
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.saved = append(f.saved, savedFile{name: name, data: string(b)})
	return "/uploads/" + name, nil
}
