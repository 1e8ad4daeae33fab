package recommend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sashabaranov/go-openai"

	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/shared"
)

const (
	defaultModel = "gpt-4o-mini"

	songsSystemPrompt = "You are a music recommendation expert. Provide a list of 10 songs that match the user's mood " +
		"and optional genre preference. Return ONLY a JSON array with objects having 'title' and 'artist' properties."

	genresSystemPrompt = "You are a music genre expert with deep knowledge of music theory, genres, and artists. " +
		"Analyze the user's listening history and recommend 3-5 music genres that match their listening pattern, " +
		"suit their current mood and are diverse enough to give varied recommendations. " +
		"Return ONLY a JSON array of strings representing genre names. Do not include any other text."
)

// OpenAIOptions configures an [OpenAIProvider].
type OpenAIOptions struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout bounds each completion request. Defaults to 30 seconds.
	Timeout time.Duration
	Logger  *log.Logger
}

// OpenAIProvider asks a chat-completion model for recommendations.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	logger *log.Logger
}

// NewOpenAIProvider creates a provider from opts. The API key is required.
func NewOpenAIProvider(opts OpenAIOptions) (*OpenAIProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: missing OpenAI API key", shared.ErrMissingCredentials)
	}

	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	config.HTTPClient = &http.Client{Timeout: timeout}

	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger,
	}, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Recommend implements [Provider].
func (p *OpenAIProvider) Recommend(ctx context.Context, req Request) ([]models.Song, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Recommend 10 songs for the mood: %s", req.Mood)
	if req.Genre != "" {
		fmt.Fprintf(&b, " and genre: %s", req.Genre)
	}
	b.WriteString(". The songs should genuinely reflect this mood")
	if req.Genre != "" {
		b.WriteString(" and genre")
	}
	b.WriteString(". Only respond with a JSON array.")

	p.logger.Info("requesting recommendations", "mood", req.Mood, "genre", req.Genre, "model", p.model)

	content, err := p.complete(ctx, songsSystemPrompt, b.String(), 1000)
	if err != nil {
		return nil, err
	}

	songs, err := ParseSongs(content)
	if err != nil {
		p.logger.Debug("unparseable recommendation reply", "content", content)
		return nil, err
	}
	return songs, nil
}

// SuggestGenres implements [GenreSuggester]. history must not be empty.
func (p *OpenAIProvider) SuggestGenres(ctx context.Context, history []models.Song, mood string) ([]string, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: listening history is required", shared.ErrInvalidInput)
	}

	var b strings.Builder
	b.WriteString("Based on these songs from my listening history:\n")
	for _, s := range history {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	if mood != "" {
		fmt.Fprintf(&b, "\nAnd my current mood: %s\n", mood)
	}
	b.WriteString("\nRecommend 3-5 music genres that would match my taste and mood. Only respond with a JSON array of genre strings.")

	content, err := p.complete(ctx, genresSystemPrompt, b.String(), 150)
	if err != nil {
		return nil, err
	}
	return ParseGenres(content)
}

func (p *OpenAIProvider) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", shared.ErrServiceUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", shared.ErrUnparseable)
	}
	return resp.Choices[0].Message.Content, nil
}
