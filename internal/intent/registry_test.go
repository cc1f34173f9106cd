package intent_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnestate/chatbot-platform/internal/intent"
	"github.com/vnestate/chatbot-platform/internal/model"
)

// fakeHandler is a canned intent handler for tests.
type fakeHandler struct {
	name     string
	keywords []string
	response *intent.Response
	err      error
}

func (f *fakeHandler) Name() string       { return f.name }
func (f *fakeHandler) Keywords() []string { return f.keywords }

func (f *fakeHandler) Handle(_ context.Context, _ string, _ *model.Session) (*intent.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func TestRegistryResolve(t *testing.T) {
	r := intent.NewRegistry()
	require.NoError(t, r.Register(&fakeHandler{name: "general_chat"}))
	require.NoError(t, r.Register(&fakeHandler{name: "generate_image"}))

	h, err := r.Resolve("generate_image")
	require.NoError(t, err)
	assert.Equal(t, "generate_image", h.Name())

	_, err = r.Resolve("summarize")
	require.Error(t, err)
	assert.ErrorIs(t, err, intent.ErrUnknownIntent)
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	r := intent.NewRegistry()
	require.NoError(t, r.Register(&fakeHandler{name: "general_chat"}))

	err := r.Register(&fakeHandler{name: "general_chat"})
	require.Error(t, err)
}

func TestRegistryNamesPreserveRegistrationOrder(t *testing.T) {
	r := intent.NewRegistry()
	for _, name := range []string{"general_chat", "generate_image", "generate_audio", "estate_query"} {
		require.NoError(t, r.Register(&fakeHandler{name: name}))
	}

	assert.Equal(t,
		[]string{"general_chat", "generate_image", "generate_audio", "estate_query"},
		r.Names(),
	)
}
