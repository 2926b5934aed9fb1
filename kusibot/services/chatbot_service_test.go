package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/didierrc/KusiBot/kusibot/chatbot"
	"github.com/didierrc/KusiBot/kusibot/sources/psql"
	"github.com/didierrc/KusiBot/kusibot/sources/psql/dao"
	"github.com/didierrc/KusiBot/kusibot/sources/psql/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := psql.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user, err := dao.NewUserDAO(db).CreateUser(context.Background(), "marta", "marta@example.com", "hash", false)
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}

type fakeResponder struct {
	response chatbot.BotResponse
	err      error
	inputs   []string
}

func (f *fakeResponder) GenerateBotResponse(ctx context.Context, userInput string, userID, convID uint) (chatbot.BotResponse, error) {
	f.inputs = append(f.inputs, userInput)
	return f.response, f.err
}

func TestCreateOrGetConversationGreetsOnce(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createTestUser(t, db)
	svc := NewChatbotService(dao.NewConversationDAO(db), &fakeResponder{})

	views, err := svc.CreateOrGetConversation(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 {
		t.Fatalf("fresh conversation should hold the greeting only, got %d messages", len(views))
	}
	if views[0].Text != StartConversationMsg || views[0].IsUser {
		t.Errorf("greeting = %+v", views[0])
	}

	// a second call reuses the conversation instead of greeting again
	views, err = svc.CreateOrGetConversation(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 {
		t.Errorf("second bootstrap should not add a greeting, got %d messages", len(views))
	}
}

func TestGetResponsePersistsBothSides(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	convDAO := dao.NewConversationDAO(db)
	user := createTestUser(t, db)

	intent := "Normal"
	responder := &fakeResponder{response: chatbot.BotResponse{
		IntentDetected: &intent,
		AgentResponse:  "I'm here for you.",
		AgentType:      chatbot.AgentTypeConversation,
	}}
	svc := NewChatbotService(convDAO, responder)

	if _, err := svc.CreateOrGetConversation(ctx, user.ID); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)

	got, err := svc.GetResponse(ctx, "hi there", user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != "I'm here for you." {
		t.Errorf("response = %q", got)
	}
	if len(responder.inputs) != 1 || responder.inputs[0] != "hi there" {
		t.Errorf("responder saw %v", responder.inputs)
	}

	conv, err := convDAO.GetActiveConversationByUserID(ctx, user.ID)
	if err != nil || conv == nil {
		t.Fatal(err)
	}
	msgs, err := convDAO.GetMessagesByConversationID(ctx, conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected greeting + user + bot, got %d messages", len(msgs))
	}
	userMsg, botMsg := msgs[1], msgs[2]
	if !userMsg.IsUser || userMsg.Text != "hi there" {
		t.Errorf("user message = %+v", userMsg)
	}
	if userMsg.Intent == nil || *userMsg.Intent != "Normal" {
		t.Errorf("user message should record the detected intent: %+v", userMsg)
	}
	if botMsg.IsUser || botMsg.Text != "I'm here for you." {
		t.Errorf("bot message = %+v", botMsg)
	}
	if botMsg.AgentType == nil || *botMsg.AgentType != chatbot.AgentTypeConversation {
		t.Errorf("bot message should record the agent type: %+v", botMsg)
	}
}

func TestGetResponseWithoutConversation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createTestUser(t, db)
	responder := &fakeResponder{}
	svc := NewChatbotService(dao.NewConversationDAO(db), responder)

	got, err := svc.GetResponse(ctx, "hello", user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != NoConversationMsg {
		t.Errorf("response = %q, want %q", got, NoConversationMsg)
	}
	if len(responder.inputs) != 0 {
		t.Error("responder should not run without a conversation")
	}
}

func TestGetResponsePropagatesResponderError(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	convDAO := dao.NewConversationDAO(db)
	user := createTestUser(t, db)
	boom := errors.New("routing failed")
	svc := NewChatbotService(convDAO, &fakeResponder{err: boom})

	if _, err := svc.CreateOrGetConversation(ctx, user.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetResponse(ctx, "hi", user.ID); !errors.Is(err, boom) {
		t.Fatalf("expected responder error, got %v", err)
	}

	// the failed turn leaves no partial messages behind
	conv, _ := convDAO.GetActiveConversationByUserID(ctx, user.ID)
	msgs, _ := convDAO.GetMessagesByConversationID(ctx, conv.ID)
	if len(msgs) != 1 {
		t.Errorf("failed turn should persist nothing, got %d messages", len(msgs))
	}
}

func TestEndConversation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createTestUser(t, db)
	svc := NewChatbotService(dao.NewConversationDAO(db), &fakeResponder{})

	ended, err := svc.EndConversation(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ended {
		t.Error("nothing to end yet")
	}

	if _, err := svc.CreateOrGetConversation(ctx, user.ID); err != nil {
		t.Fatal(err)
	}
	ended, err = svc.EndConversation(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !ended {
		t.Error("active conversation should be ended")
	}
	ended, err = svc.EndConversation(ctx, user.ID)
	if err != nil || ended {
		t.Errorf("double end = %v, %v", ended, err)
	}
}
