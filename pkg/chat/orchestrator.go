package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"NutriGuide/models"
	"NutriGuide/pkg/services"
	"NutriGuide/store"
)

// historyWindow limits how many stored exchanges are replayed as model
// context on each request.
const historyWindow = 10

// Generator is the slice of the Gemini client the chat flow needs.
type Generator interface {
	Generate(ctx context.Context, req services.GenerateRequest) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Searcher is the slice of the knowledge service the chat flow needs.
type Searcher interface {
	Enabled() bool
	Search(ctx context.Context, query string) ([]services.Snippet, error)
}

// Orchestrator runs one chat turn end to end: context assembly, model
// call, output parsing, persistence, and background title generation.
type Orchestrator struct {
	store      *store.Store
	generator  Generator
	searcher   Searcher
	classifier *Classifier
	log        *zap.Logger

	now     func() time.Time
	titling sync.WaitGroup
}

func NewOrchestrator(st *store.Store, gen Generator, search Searcher, cls *Classifier, log *zap.Logger) *Orchestrator {
	if cls == nil {
		cls = DefaultClassifier()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		store:      st,
		generator:  gen,
		searcher:   search,
		classifier: cls,
		log:        log,
		now:        time.Now,
	}
}

// Reply is what one successful chat turn hands back to the transport
// layer.
type Reply struct {
	ConversationID uint               `json:"conversation_id"`
	Response       string             `json:"response"`
	Snippets       []services.Snippet `json:"snippets,omitempty"`
}

// SendMessage processes one user message. conversationID zero means a
// new conversation is created. The answer is persisted only after the
// model produced a complete reply; a generation failure leaves no trace
// in the conversation.
func (o *Orchestrator) SendMessage(ctx context.Context, userID uint, username string, conversationID uint, message string, admin bool) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, store.ErrEmptyMessage
	}

	var (
		history []models.Message
		summary string
	)
	if conversationID != 0 {
		conv, err := o.store.GetConversation(ctx, conversationID, userID, admin)
		if err != nil {
			return nil, err
		}
		summary = conv.Summary
		history, err = o.store.Messages(ctx, conversationID, userID, admin)
		if err != nil {
			return nil, err
		}
	}

	var snippets []services.Snippet
	if o.searcher != nil && o.searcher.Enabled() && o.classifier.IsNutritionQuery(message) {
		var err error
		snippets, err = o.searcher.Search(ctx, message)
		if err != nil {
			// An answer without references beats no answer.
			o.log.Warn("knowledge search failed", zap.Error(err))
			snippets = nil
		}
	}

	raw, err := o.generator.Generate(ctx, o.buildRequest(username, summary, history, snippets, message))
	if err != nil {
		o.log.Error("chat generation failed",
			zap.Uint("user_id", userID),
			zap.Uint("conversation_id", conversationID),
			zap.Error(err))
		return nil, err
	}

	parsed := ParseModelOutput(raw)
	if strings.TrimSpace(parsed.Response) == "" {
		return nil, services.ErrGenerationFailed
	}
	if !parsed.SummaryFound {
		parsed.Summary = FallbackSummary(message)
	}

	conv, count, err := o.store.AppendMessage(ctx, conversationID, userID, message, parsed.Response, raw, admin)
	if err != nil {
		return nil, err
	}
	if err := o.store.SetSummary(ctx, conv.ID, parsed.Summary); err != nil {
		o.log.Warn("summary update failed", zap.Uint("conversation_id", conv.ID), zap.Error(err))
	}

	if count <= 2 && !conv.TitleGenerated {
		o.titling.Add(1)
		go func() {
			defer o.titling.Done()
			o.generateTitle(conv.ID, userID, message, admin)
		}()
	}

	return &Reply{ConversationID: conv.ID, Response: parsed.Response, Snippets: snippets}, nil
}

func (o *Orchestrator) buildRequest(username, summary string, history []models.Message, snippets []services.Snippet, message string) services.GenerateRequest {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	contents := make([]services.Content, 0, len(history)*2+1)
	for _, m := range history {
		contents = append(contents,
			services.Content{Role: "user", Text: m.UserMessage},
			services.Content{Role: "model", Text: m.BotMessage},
		)
	}

	prompt := SummaryRequestPrompt(message, summary)
	if block := SnippetBlock(snippets); block != "" {
		prompt = block + "\n\n" + prompt
	}
	contents = append(contents, services.Content{Role: "user", Text: prompt})

	return services.GenerateRequest{
		System:          SystemInstruction(username, len(history) == 0, summary),
		Contents:        contents,
		Temperature:     0.6,
		MaxOutputTokens: 2048,
	}
}

// generateTitle runs after the reply is already delivered; it must not
// block the request and gets its own deadline. The conversation is
// marked titled even when generation fails so the attempt is never
// repeated.
func (o *Orchestrator) generateTitle(conversationID, userID uint, firstMessage string, admin bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	title := ""
	if suggestion, err := o.generator.GenerateText(ctx, TitlePrompt(firstMessage)); err == nil {
		title = CleanTitle(suggestion)
	} else {
		o.log.Warn("title generation failed", zap.Uint("conversation_id", conversationID), zap.Error(err))
	}
	if title == "" {
		title = DefaultTitle(o.now())
	}

	if err := o.store.RenameConversation(ctx, conversationID, userID, title, admin); err != nil && !errors.Is(err, store.ErrNotFound) {
		o.log.Warn("title rename failed", zap.Uint("conversation_id", conversationID), zap.Error(err))
	}
	if err := o.store.MarkTitled(ctx, conversationID); err != nil && !errors.Is(err, store.ErrNotFound) {
		o.log.Warn("title mark failed", zap.Uint("conversation_id", conversationID), zap.Error(err))
	}
}
