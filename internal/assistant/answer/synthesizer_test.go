// internal/assistant/answer/synthesizer_test.go
package answer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-assistant/internal/common/errors"
	"crm-assistant/internal/common/logger"
)

type fakeCompletion struct {
	lastSystem      string
	lastUser        string
	lastTemperature float64
	reply           string
	err             error
}

func (f *fakeCompletion) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	f.lastSystem = system
	f.lastUser = user
	f.lastTemperature = temperature
	return f.reply, f.err
}

func newTestSynthesizer(fake *fakeCompletion) *Synthesizer {
	return NewSynthesizer(fake, 0.2, 0.7, logger.NewNoOpLogger())
}

func TestSynthesizeDataModeUsesLowTemperature(t *testing.T) {
	fake := &fakeCompletion{reply: "Ada 4 deal di tahap negotiation."}
	s := newTestSynthesizer(fake)

	got, err := s.Synthesize(context.Background(), "berapa deal negotiation?", `{"count":4}`, ModeData, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Ada 4 deal di tahap negotiation.", got)
	assert.Equal(t, 0.2, fake.lastTemperature)
	assert.Contains(t, fake.lastUser, `{"count":4}`)
	assert.Contains(t, fake.lastUser, "berapa deal negotiation?")
}

func TestSynthesizeChatModeUsesHighTemperature(t *testing.T) {
	fake := &fakeCompletion{reply: "Halo! Ada yang bisa saya bantu?"}
	s := newTestSynthesizer(fake)

	_, err := s.Synthesize(context.Background(), "halo", "", ModeGreeting, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0.7, fake.lastTemperature)
	assert.Equal(t, "halo", fake.lastUser)
}

func TestSynthesizeModeSelectsSystemPrompt(t *testing.T) {
	fake := &fakeCompletion{reply: "ok"}
	s := newTestSynthesizer(fake)
	ctx := context.Background()

	_, err := s.Synthesize(ctx, "q", "", ModeGreeting, Options{})
	require.NoError(t, err)
	greeting := fake.lastSystem

	_, err = s.Synthesize(ctx, "q", "ctx", ModeData, Options{})
	require.NoError(t, err)
	data := fake.lastSystem

	assert.NotEqual(t, greeting, data)
}

func TestSynthesizeOptionsOverride(t *testing.T) {
	fake := &fakeCompletion{reply: "ok"}
	s := newTestSynthesizer(fake)

	temp := 0.5
	_, err := s.Synthesize(context.Background(), "q", "", ModeChat, Options{
		CustomPrompt: "instruksi khusus",
		Temperature:  &temp,
	})
	require.NoError(t, err)
	assert.Equal(t, "instruksi khusus", fake.lastSystem)
	assert.Equal(t, 0.5, fake.lastTemperature)
}

func TestSynthesizeWrapsCompletionError(t *testing.T) {
	fake := &fakeCompletion{err: assert.AnError}
	s := newTestSynthesizer(fake)

	_, err := s.Synthesize(context.Background(), "q", "", ModeChat, Options{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeLLMCompletionFailed, errors.CodeOf(err))
}
