package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"NutriGuide/models"
	"NutriGuide/pkg/services"
	"NutriGuide/store"
)

type fakeGenerator struct {
	reply      string
	err        error
	titleReply string
	titleErr   error

	lastRequest services.GenerateRequest
	calls       int
}

func (f *fakeGenerator) Generate(_ context.Context, req services.GenerateRequest) (string, error) {
	f.lastRequest = req
	f.calls++
	return f.reply, f.err
}

func (f *fakeGenerator) GenerateText(_ context.Context, _ string) (string, error) {
	return f.titleReply, f.titleErr
}

type fakeSearcher struct {
	snippets []services.Snippet
	err      error
	queries  []string
}

func (f *fakeSearcher) Enabled() bool { return true }

func (f *fakeSearcher) Search(_ context.Context, query string) ([]services.Snippet, error) {
	f.queries = append(f.queries, query)
	return f.snippets, f.err
}

func newTestOrchestrator(t *testing.T, gen Generator, search Searcher) (*Orchestrator, *store.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Conversation{}, &models.Message{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	st := store.New(db, nil)
	return NewOrchestrator(st, gen, search, nil, nil), st
}

func seedUser(t *testing.T, st *store.Store) *models.User {
	t.Helper()
	u, err := st.CreateUser(context.Background(), "mira", "secret1", false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestSendMessageCreatesConversationAndPersistsPair(t *testing.T) {
	gen := &fakeGenerator{
		reply:      "RESPONSE: Lentils and spinach are rich in iron.\nSUMMARY: Asked about iron sources.",
		titleReply: "Iron Rich Foods",
	}
	o, st := newTestOrchestrator(t, gen, nil)
	u := seedUser(t, st)

	reply, err := o.SendMessage(context.Background(), u.ID, u.Username, 0, "What food is high in iron?", false)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.ConversationID == 0 {
		t.Fatalf("expected a new conversation id")
	}
	if reply.Response != "Lentils and spinach are rich in iron." {
		t.Fatalf("unexpected response: %q", reply.Response)
	}

	msgs, err := st.Messages(context.Background(), reply.ConversationID, u.ID, false)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 stored pair, got %d", len(msgs))
	}
	if msgs[0].UserMessage != "What food is high in iron?" || msgs[0].BotMessage != reply.Response {
		t.Fatalf("stored pair mismatch: %+v", msgs[0])
	}
	if msgs[0].RawModelOutput != gen.reply {
		t.Fatalf("raw output not preserved")
	}

	conv, err := st.GetConversation(context.Background(), reply.ConversationID, u.ID, false)
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if conv.Summary != "Asked about iron sources." {
		t.Fatalf("summary not persisted: %q", conv.Summary)
	}
}

func TestSendMessageGenerationFailureLeavesNothing(t *testing.T) {
	gen := &fakeGenerator{err: services.ErrGenerationFailed}
	o, st := newTestOrchestrator(t, gen, nil)
	u := seedUser(t, st)

	_, err := o.SendMessage(context.Background(), u.ID, u.Username, 0, "what about zinc?", false)
	if !errors.Is(err, services.ErrGenerationFailed) {
		t.Fatalf("expected generation failure, got %v", err)
	}

	convs, err := st.ListConversations(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(convs) != 0 {
		t.Fatalf("failed generation must not create a conversation, got %d", len(convs))
	}
}

func TestSendMessageRejectsBlankInput(t *testing.T) {
	o, st := newTestOrchestrator(t, &fakeGenerator{reply: "hi"}, nil)
	u := seedUser(t, st)

	if _, err := o.SendMessage(context.Background(), u.ID, u.Username, 0, "   ", false); !errors.Is(err, store.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestSendMessageUsesKnowledgeForNutritionQueries(t *testing.T) {
	search := &fakeSearcher{snippets: []services.Snippet{{Title: "Iron", Text: "Iron facts.", Score: 0.9}}}
	gen := &fakeGenerator{reply: "RESPONSE: See [1].\nSUMMARY: Iron sources.", titleReply: "Iron"}
	o, st := newTestOrchestrator(t, gen, search)
	u := seedUser(t, st)

	reply, err := o.SendMessage(context.Background(), u.ID, u.Username, 0, "What food is high in iron?", false)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(search.queries) != 1 {
		t.Fatalf("expected 1 knowledge search, got %d", len(search.queries))
	}
	if len(reply.Snippets) != 1 {
		t.Fatalf("snippets should be returned to the caller")
	}

	last := gen.lastRequest.Contents[len(gen.lastRequest.Contents)-1].Text
	if !strings.Contains(last, "Iron facts.") || !strings.Contains(last, "[1]") {
		t.Fatalf("prompt missing snippet block: %q", last)
	}
}

func TestSendMessageSkipsKnowledgeForOffTopic(t *testing.T) {
	search := &fakeSearcher{}
	gen := &fakeGenerator{reply: "RESPONSE: I focus on nutrition.\nSUMMARY: Off topic.", titleReply: "Off Topic"}
	o, st := newTestOrchestrator(t, gen, search)
	u := seedUser(t, st)

	if _, err := o.SendMessage(context.Background(), u.ID, u.Username, 0, "who won the sports game", false); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(search.queries) != 0 {
		t.Fatalf("off-topic query must not hit the knowledge base")
	}
}

func TestSendMessageSearchFailureIsNonFatal(t *testing.T) {
	search := &fakeSearcher{err: errors.New("qdrant down")}
	gen := &fakeGenerator{reply: "RESPONSE: Answer anyway.\nSUMMARY: S.", titleReply: "T"}
	o, st := newTestOrchestrator(t, gen, search)
	u := seedUser(t, st)

	reply, err := o.SendMessage(context.Background(), u.ID, u.Username, 0, "best protein sources", false)
	if err != nil {
		t.Fatalf("send should succeed without knowledge: %v", err)
	}
	if len(reply.Snippets) != 0 {
		t.Fatalf("no snippets expected")
	}
}

func TestSendMessageGeneratesTitleOnce(t *testing.T) {
	gen := &fakeGenerator{
		reply:      "RESPONSE: Plenty of beans.\nSUMMARY: Protein talk.",
		titleReply: `"Title: plant protein basics"`,
	}
	o, st := newTestOrchestrator(t, gen, nil)
	u := seedUser(t, st)

	reply, err := o.SendMessage(context.Background(), u.ID, u.Username, 0, "best plant protein?", false)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	o.titling.Wait()

	conv, err := st.GetConversation(context.Background(), reply.ConversationID, u.ID, false)
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if conv.Title != "Plant Protein Basics" {
		t.Fatalf("unexpected title: %q", conv.Title)
	}
	if !conv.TitleGenerated {
		t.Fatalf("conversation should be marked titled")
	}

	// Later turns must not rename again.
	gen.titleReply = "Different Title"
	for i := 0; i < 3; i++ {
		if _, err := o.SendMessage(context.Background(), u.ID, u.Username, reply.ConversationID, "and lentils?", false); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	o.titling.Wait()

	conv, err = st.GetConversation(context.Background(), reply.ConversationID, u.ID, false)
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if conv.Title != "Plant Protein Basics" {
		t.Fatalf("title regenerated: %q", conv.Title)
	}
}

func TestSendMessageTitleFallbackOnGenerationError(t *testing.T) {
	gen := &fakeGenerator{
		reply:    "RESPONSE: Fiber helps digestion.\nSUMMARY: Fiber.",
		titleErr: errors.New("model down"),
	}
	o, st := newTestOrchestrator(t, gen, nil)
	u := seedUser(t, st)

	reply, err := o.SendMessage(context.Background(), u.ID, u.Username, 0, "why is fiber important?", false)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	o.titling.Wait()

	conv, err := st.GetConversation(context.Background(), reply.ConversationID, u.ID, false)
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if !strings.HasPrefix(conv.Title, "New Chat ") {
		t.Fatalf("expected timestamped fallback title, got %q", conv.Title)
	}
	if !conv.TitleGenerated {
		t.Fatalf("failed attempt must still mark the conversation titled")
	}
}

func TestSendMessageMissingSummaryUsesFallback(t *testing.T) {
	gen := &fakeGenerator{reply: "Plain answer with no markers at all.", titleReply: "T"}
	o, st := newTestOrchestrator(t, gen, nil)
	u := seedUser(t, st)

	reply, err := o.SendMessage(context.Background(), u.ID, u.Username, 0, "how much water should I drink daily", false)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	o.titling.Wait()

	conv, err := st.GetConversation(context.Background(), reply.ConversationID, u.ID, false)
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if conv.Summary != "Conversation about how much water should I..." {
		t.Fatalf("unexpected fallback summary: %q", conv.Summary)
	}
}

func TestSendMessageFirstInteractionSystemPrompt(t *testing.T) {
	gen := &fakeGenerator{reply: "RESPONSE: Hello Mira.\nSUMMARY: Greeting.", titleReply: "T"}
	o, st := newTestOrchestrator(t, gen, nil)
	u := seedUser(t, st)

	reply, err := o.SendMessage(context.Background(), u.ID, u.Username, 0, "hi, what should I eat today?", false)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(gen.lastRequest.System, "first interaction") {
		t.Fatalf("first turn should use the greeting instruction: %q", gen.lastRequest.System)
	}

	if _, err := o.SendMessage(context.Background(), u.ID, u.Username, reply.ConversationID, "something light please", false); err != nil {
		t.Fatalf("second send: %v", err)
	}
	if strings.Contains(gen.lastRequest.System, "first interaction") {
		t.Fatalf("later turns must not greet again")
	}
	if !strings.Contains(gen.lastRequest.System, "Greeting.") {
		t.Fatalf("later turns should carry the summary: %q", gen.lastRequest.System)
	}
	o.titling.Wait()
}
