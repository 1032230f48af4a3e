package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// TranslationResult carries the translated text plus the detected source
// language.
type TranslationResult struct {
	TranslatedText string `json:"translated_text"`
	SourceLanguage string `json:"source_language"`
}

// TranslateService translates chat messages. Supported target languages are
// English, Sinhala and Tamil.
type TranslateService interface {
	Translate(ctx context.Context, text, targetLanguage string) (*TranslationResult, error)
}

type openAITranslateService struct {
	client *openai.Client
	model  string
}

func NewOpenAITranslateService(apiKey string) TranslateService {
	return &openAITranslateService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
	}
}

var supportedLanguages = map[string]bool{
	"en": true, // English
	"si": true, // Sinhala
	"ta": true, // Tamil
}

func (s *openAITranslateService) Translate(ctx context.Context, text, targetLanguage string) (*TranslationResult, error) {
	target := strings.ToLower(targetLanguage)
	if !supportedLanguages[target] {
		return nil, fmt.Errorf("unsupported target language: %s", targetLanguage)
	}

	prompt := fmt.Sprintf(
		"Translate the following message to %s. Respond with JSON only: "+
			`{"translated_text": "...", "source_language": "<ISO 639-1 code>"}`,
		target)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("translation request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("translation returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var result TranslationResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &result); err != nil {
		// Model answered in plain text; still usable as the translation.
		return &TranslationResult{TranslatedText: content}, nil
	}

	return &result, nil
}
