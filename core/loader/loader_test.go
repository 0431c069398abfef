package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockFeature struct {
	mock.Mock
}

func (m *mockFeature) Name() string {
	return m.Called().String(0)
}

func (m *mockFeature) IsEnabled() bool {
	return m.Called().Bool(0)
}

func (m *mockFeature) Load(app fiber.Router) error {
	return m.Called(app).Error(0)
}

func TestManager_LoadAll(t *testing.T) {
	app := fiber.New()

	t.Run("SkipsDisabled", func(t *testing.T) {
		enabled := new(mockFeature)
		enabled.On("Name").Return("users")
		enabled.On("IsEnabled").Return(true)
		enabled.On("Load", mock.Anything).Return(nil).Once()

		disabled := new(mockFeature)
		disabled.On("Name").Return("integrity")
		disabled.On("IsEnabled").Return(false)

		m := NewManager(nil)
		m.Register(enabled)
		m.Register(disabled)

		assert.NoError(t, m.LoadAll(app))
		assert.Len(t, m.Features(), 2)
		enabled.AssertExpectations(t)
		disabled.AssertNotCalled(t, "Load", mock.Anything)
	})

	t.Run("PropagatesFailure", func(t *testing.T) {
		failing := new(mockFeature)
		failing.On("Name").Return("uploadedfiles")
		failing.On("IsEnabled").Return(true)
		failing.On("Load", mock.Anything).Return(errors.New("boom"))

		m := NewManager(nil)
		m.Register(failing)

		err := m.LoadAll(app)
		assert.ErrorContains(t, err, "uploadedfiles")
	})
}
