// internal/assistant/answer/synthesizer.go
package answer

import (
	"context"
	"fmt"
	"strings"

	"crm-assistant/internal/common/errors"
	"crm-assistant/internal/common/llm"
	"crm-assistant/internal/common/logger"
)

// Mode selects the system instruction and temperature for a completion.
type Mode string

const (
	ModeGreeting Mode = "greeting"
	ModeGeneral  Mode = "general"
	ModeChat     Mode = "chat"
	ModeData     Mode = "data"
)

const (
	promptGreeting = "Kamu adalah asisten CRM yang ramah. Balas sapaan pengguna dengan hangat dan singkat dalam bahasa Indonesia, lalu tawarkan bantuan seputar data CRM."

	promptGeneral = "Kamu adalah asisten CRM. Jelaskan secara singkat dalam bahasa Indonesia apa saja yang bisa kamu bantu: mencari data pelanggan, deal, produk, tiket, invoice, dan menjawab pertanyaan seputar bisnis."

	promptChat = "Kamu adalah asisten CRM yang ramah dan membantu. Jawab pertanyaan pengguna dalam bahasa Indonesia secara natural dan singkat. Jika pertanyaan di luar konteks CRM, jawab seadanya dengan sopan."

	promptData = "Kamu adalah asisten CRM. Jawab pertanyaan pengguna HANYA berdasarkan data yang diberikan dalam konteks. Jawab dalam bahasa Indonesia, ringkas dan jelas. Jika data tidak cukup untuk menjawab, katakan bahwa datanya tidak tersedia. Jangan mengarang informasi."
)

// Options tune a single synthesis call.
type Options struct {
	CustomPrompt string
	Temperature  *float64
}

// Synthesizer turns retrieved context into a natural-language answer.
type Synthesizer struct {
	client   llm.CompletionClient
	dataTemp float64
	chatTemp float64
	logger   logger.Logger
}

func NewSynthesizer(client llm.CompletionClient, dataTemp, chatTemp float64, log logger.Logger) *Synthesizer {
	return &Synthesizer{
		client:   client,
		dataTemp: dataTemp,
		chatTemp: chatTemp,
		logger:   log.With(map[string]interface{}{"component": "answer-synthesizer"}),
	}
}

// Synthesize requests a completion for the question, grounded on context when
// the mode is data. The context string is expected to be pre-shrunk.
func (s *Synthesizer) Synthesize(ctx context.Context, question, contextBlock string, mode Mode, opts Options) (string, error) {
	system := s.systemPrompt(mode)
	if opts.CustomPrompt != "" {
		system = opts.CustomPrompt
	}

	temperature := s.chatTemp
	if mode == ModeData {
		temperature = s.dataTemp
	}
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}

	user := question
	if contextBlock != "" {
		user = fmt.Sprintf("Konteks data:\n%s\n\nPertanyaan: %s", strings.TrimSpace(contextBlock), question)
	}

	text, err := s.client.Complete(ctx, system, user, temperature)
	if err != nil {
		return "", errors.NewLLMCompletionError(err)
	}
	return text, nil
}

func (s *Synthesizer) systemPrompt(mode Mode) string {
	switch mode {
	case ModeGreeting:
		return promptGreeting
	case ModeGeneral:
		return promptGeneral
	case ModeData:
		return promptData
	}
	return promptChat
}
