package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"teamboard/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:svc_" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Workspace{}, &models.Board{}, &models.List{},
		&models.Card{}, &models.Task{}, &models.Tag{},
		&models.CardComment{}, &models.CardAttachment{},
		&models.Notification{}, &models.CalendarEvent{}, &models.AuditLog{},
		&models.AutomationRule{}, &models.AutomationTrigger{}, &models.AutomationAction{}, &models.AutomationRun{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

// boardFixture seeds one workspace/board/list/card plus a user.
type boardFixture struct {
	ws    models.Workspace
	board models.Board
	list  models.List
	card  models.Card
	user  models.User
}

func seedBoard(t *testing.T, db *gorm.DB) boardFixture {
	t.Helper()
	user := models.User{Username: "alice", Email: "alice@example.com", Name: "Alice"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	ws := models.Workspace{Name: "Acme", OwnerID: user.ID}
	if err := db.Create(&ws).Error; err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	board := models.Board{WorkspaceID: ws.ID, Title: "Launch"}
	if err := db.Create(&board).Error; err != nil {
		t.Fatalf("create board: %v", err)
	}
	list := models.List{BoardID: board.ID, Title: "To Do", Position: 0}
	if err := db.Create(&list).Error; err != nil {
		t.Fatalf("create list: %v", err)
	}
	card := models.Card{ListID: list.ID, Title: "Ship it", Priority: "medium"}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("create card: %v", err)
	}
	return boardFixture{ws: ws, board: board, list: list, card: card, user: user}
}

// makeRule inserts a rule with its trigger and actions, bypassing the write
// validation so tests can plant arbitrary documents.
func makeRule(t *testing.T, db *gorm.DB, wsID string, boardID *string, trigger models.TriggerType, conditions string, actions ...models.AutomationAction) models.AutomationRule {
	t.Helper()
	rule := models.AutomationRule{
		WorkspaceID: wsID,
		BoardID:     boardID,
		Name:        fmt.Sprintf("rule-%s", trigger),
		Active:      true,
		Trigger:     &models.AutomationTrigger{Type: trigger, Conditions: conditions},
		Actions:     actions,
	}
	if err := db.Create(&rule).Error; err != nil {
		t.Fatalf("create rule: %v", err)
	}
	return rule
}

type sentMail struct {
	To      string
	Subject string
	Content string
}

type recordingMailer struct {
	sent []sentMail
	err  error
}

func (m *recordingMailer) SendBeautifulEmail(to, subject, htmlContent string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Content: htmlContent})
	return nil
}

func runsOf(t *testing.T, db *gorm.DB, ruleID string) []models.AutomationRun {
	t.Helper()
	var runs []models.AutomationRun
	if err := db.Where("rule_id = ?", ruleID).Find(&runs).Error; err != nil {
		t.Fatalf("load runs: %v", err)
	}
	return runs
}

func TestProcessAutomations_EmptyConditionsAlwaysMatch(t *testing.T) {
	db := newServiceTestDB(t)
	fx := seedBoard(t, db)
	svc := NewAutomationService(db, logrus.New(), nil, nil)

	rule := makeRule(t, db, fx.ws.ID, &fx.board.ID, models.TriggerCardCreated, "{}")

	svc.ProcessAutomations(context.Background(), models.TriggerCardCreated,
		EventContext{"cardId": fx.card.ID}, fx.ws.ID, fx.board.ID)

	runs := runsOf(t, db, rule.ID)
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Status != "success" {
		t.Errorf("expected success run, got %s", runs[0].Status)
	}
	if runs[0].CardID != fx.card.ID {
		t.Errorf("run card id = %s, want %s", runs[0].CardID, fx.card.ID)
	}
	if runs[0].Trigger != models.TriggerCardCreated {
		t.Errorf("run trigger = %s", runs[0].Trigger)
	}
}

func TestProcessAutomations_InactiveRuleNeverRuns(t *testing.T) {
	db := newServiceTestDB(t)
	fx := seedBoard(t, db)
	svc := NewAutomationService(db, logrus.New(), nil, nil)

	rule := makeRule(t, db, fx.ws.ID, nil, models.TriggerCardCreated, "")
	if err := db.Model(&models.AutomationRule{}).Where("id = ?", rule.ID).Update("active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	svc.ProcessAutomations(context.Background(), models.TriggerCardCreated,
		EventContext{"cardId": fx.card.ID}, fx.ws.ID, fx.board.ID)

	if runs := runsOf(t, db, rule.ID); len(runs) != 0 {
		t.Fatalf("inactive rule ran: %d runs", len(runs))
	}
}

func TestProcessAutomations_BoardScoping(t *testing.T) {
	db := newServiceTestDB(t)
	fx := seedBoard(t, db)
	svc := NewAutomationService(db, logrus.New(), nil, nil)

	otherBoard := models.Board{WorkspaceID: fx.ws.ID, Title: "Other"}
	if err := db.Create(&otherBoard).Error; err != nil {
		t.Fatalf("create board: %v", err)
	}

	scoped := makeRule(t, db, fx.ws.ID, &otherBoard.ID, models.TriggerCardMoved, "")
	wide := makeRule(t, db, fx.ws.ID, nil, models.TriggerCardMoved, "")

	// Dispatch on fx.board: the rule scoped to otherBoard must not fire,
	// the workspace-wide rule must.
	svc.ProcessAutomations(context.Background(), models.TriggerCardMoved,
		EventContext{"cardId": fx.card.ID}, fx.ws.ID, fx.board.ID)

	if runs := runsOf(t, db, scoped.ID); len(runs) != 0 {
		t.Errorf("board-scoped rule fired on wrong board: %d runs", len(runs))
	}
	if runs := runsOf(t, db, wide.ID); len(runs) != 1 {
		t.Errorf("workspace-wide rule runs = %d, want 1", len(runs))
	}

	// Dispatch without a board: only workspace-wide rules are considered.
	svc.ProcessAutomations(context.Background(), models.TriggerCardMoved,
		EventContext{"cardId": fx.card.ID}, fx.ws.ID, "")

	if runs := runsOf(t, db, scoped.ID); len(runs) != 0 {
		t.Errorf("board-scoped rule fired on boardless dispatch")
	}
	if runs := runsOf(t, db, wide.ID); len(runs) != 2 {
		t.Errorf("workspace-wide rule runs = %d, want 2", len(runs))
	}
}

func TestProcessAutomations_OtherWorkspaceUntouched(t *testing.T) {
	db := newServiceTestDB(t)
	fx := seedBoard(t, db)
	svc := NewAutomationService(db, logrus.New(), nil, nil)

	otherWs := models.Workspace{Name: "Rivals"}
	if err := db.Create(&otherWs).Error; err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	foreign := makeRule(t, db, otherWs.ID, nil, models.TriggerCardCreated, "")

	svc.ProcessAutomations(context.Background(), models.TriggerCardCreated,
		EventContext{"cardId": fx.card.ID}, fx.ws.ID, fx.board.ID)

	if runs := runsOf(t, db, foreign.ID); len(runs) != 0 {
		t.Fatalf("rule of another workspace fired")
	}
}

func TestProcessAutomations_ConditionOperators(t *testing.T) {
	tests := []struct {
		name       string
		conditions string
		evt        EventContext
		wantFire   bool
	}{
		{
			name:       "bare value equals",
			conditions: `{"priority": "high"}`,
			evt:        EventContext{"priority": "high"},
			wantFire:   true,
		},
		{
			name:       "bare value mismatch",
			conditions: `{"priority": "high"}`,
			evt:        EventContext{"priority": "low"},
			wantFire:   false,
		},
		{
			name:       "explicit equals numeric",
			conditions: `{"daysBeforeDue": {"operator": "equals", "value": 2}}`,
			evt:        EventContext{"daysBeforeDue": 2},
			wantFire:   true,
		},
		{
			name:       "equals numeric mismatch",
			conditions: `{"daysBeforeDue": {"operator": "equals", "value": 2}}`,
			evt:        EventContext{"daysBeforeDue": 3},
			wantFire:   false,
		},
		{
			name:       "contains substring",
			conditions: `{"title": {"operator": "contains", "value": "bug"}}`,
			evt:        EventContext{"title": "fix login bug"},
			wantFire:   true,
		},
		{
			name:       "contains on non-container",
			conditions: `{"count": {"operator": "contains", "value": 1}}`,
			evt:        EventContext{"count": 12},
			wantFire:   false,
		},
		{
			name:       "greaterThan",
			conditions: `{"taskCount": {"operator": "greaterThan", "value": 3}}`,
			evt:        EventContext{"taskCount": 5},
			wantFire:   true,
		},
		{
			name:       "lessThan no match on equal",
			conditions: `{"taskCount": {"operator": "lessThan", "value": 3}}`,
			evt:        EventContext{"taskCount": 3},
			wantFire:   false,
		},
		{
			name:       "missing field never matches",
			conditions: `{"priority": "high"}`,
			evt:        EventContext{},
			wantFire:   false,
		},
		{
			name:       "all conditions must hold",
			conditions: `{"priority": "high", "listTitle": "Done"}`,
			evt:        EventContext{"priority": "high", "listTitle": "To Do"},
			wantFire:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newServiceTestDB(t)
			fx := seedBoard(t, db)
			svc := NewAutomationService(db, logrus.New(), nil, nil)
			rule := makeRule(t, db, fx.ws.ID, nil, models.TriggerCardUpdated, tt.conditions)

			evt := tt.evt
			evt["cardId"] = fx.card.ID
			svc.ProcessAutomations(context.Background(), models.TriggerCardUpdated, evt, fx.ws.ID, fx.board.ID)

			runs := runsOf(t, db, rule.ID)
			if tt.wantFire && len(runs) != 1 {
				t.Fatalf("expected rule to fire, got %d runs", len(runs))
			}
			if !tt.wantFire && len(runs) != 0 {
				t.Fatalf("expected rule not to fire, got %d runs", len(runs))
			}
		})
	}
}

func TestProcessAutomations_MalformedConditionsSkipRule(t *testing.T) {
	db := newServiceTestDB(t)
	fx := seedBoard(t, db)
	svc := NewAutomationService(db, logrus.New(), nil, nil)

	broken := makeRule(t, db, fx.ws.ID, nil, models.TriggerCardCreated, `{not json`)
	healthy := makeRule(t, db, fx.ws.ID, nil, models.TriggerCardCreated, "{}")

	svc.ProcessAutomations(context.Background(), models.TriggerCardCreated,
		EventContext{"cardId": fx.card.ID}, fx.ws.ID, fx.board.ID)

	if runs := runsOf(t, db, broken.ID); len(runs) != 0 {
		t.Errorf("rule with malformed conditions fired")
	}
	if runs := runsOf(t, db, healthy.ID); len(runs) != 1 {
		t.Errorf("healthy rule runs = %d, want 1", len(runs))
	}
}

func TestProcessAutomations_MissingBoardDropsDispatch(t *testing.T) {
	db := newServiceTestDB(t)
	fx := seedBoard(t, db)
	svc := NewAutomationService(db, logrus.New(), nil, nil)

	rule := makeRule(t, db, fx.ws.ID, nil, models.TriggerCardCreated, "")

	svc.ProcessAutomations(context.Background(), models.TriggerCardCreated,
		EventContext{"cardId": fx.card.ID}, fx.ws.ID, "no-such-board")

	if runs := runsOf(t, db, rule.ID); len(runs) != 0 {
		t.Fatalf("dispatch against missing board executed rules")
	}
}

func TestProcessAutomations_OrderedActionsLastWriteWins(t *testing.T) {
	db := newServiceTestDB(t)
	fx := seedBoard(t, db)
	svc := NewAutomationService(db, logrus.New(), nil, nil)

	rule := makeRule(t, db, fx.ws.ID, nil, models.TriggerCardCreated, "",
		models.AutomationAction{Type: models.ActionUpdateCardPriority, Order: 1, Config: `{"priority": "low"}`},
		models.AutomationAction{Type: models.ActionUpdateCardPriority, Order: 0, Config: `{"priority": "high"}`},
	)

	svc.ProcessAutomations(context.Background(), models.TriggerCardCreated,
		EventContext{"cardId": fx.card.ID}, fx.ws.ID, fx.board.ID)

	var card models.Card
	if err := db.First(&card, "id = ?", fx.card.ID).Error; err != nil {
		t.Fatalf("reload card: %v", err)
	}
	// Actions run by ascending order, so the order-1 action writes last.
	if card.Priority != "low" {
		t.Errorf("priority = %s, want low (last action wins)", card.Priority)
	}
	runs := runsOf(t, db, rule.ID)
	if len(runs) != 1 || runs[0].Status != "success" {
		t.Errorf("unexpected runs: %+v", runs)
	}
}

func TestProcessAutomations_ActionFailureDoesNotBlockFollowers(t *testing.T) {
	db := newServiceTestDB(t)
	fx := seedBoard(t, db)
	svc := NewAutomationService(db, logrus.New(), nil, nil)

	rule := makeRule(t, db, fx.ws.ID, nil, models.TriggerCardCreated, "",
		models.AutomationAction{Type: models.ActionUpdateCardStatus, Order: 0, Config: `{"listId": "missing-list"}`},
		models.AutomationAction{Type: models.ActionSendNotification, Order: 1,
			Config: fmt.Sprintf(`{"userId": %q, "message": "heads up"}`, fx.user.ID)},
	)

	svc.ProcessAutomations(context.Background(), models.TriggerCardCreated,
		EventContext{"cardId": fx.card.ID}, fx.ws.ID, fx.board.ID)

	var notifications []models.Notification
	if err := db.Where("user_id = ?", fx.user.ID).Find(&notifications).Error; err != nil {
		t.Fatalf("load notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("notification after failed predecessor: got %d, want 1", len(notifications))
	}
	if notifications[0].WorkspaceID != fx.ws.ID {
		t.Errorf("notification workspace = %s, want %s", notifications[0].WorkspaceID, fx.ws.ID)
	}

	runs := runsOf(t, db, rule.ID)
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	if runs[0].Status != "partial" {
		t.Errorf("run status = %s, want partial", runs[0].Status)
	}
	if runs[0].Message == "" {
		t.Error("partial run should carry failure details")
	}
}

func TestProcessAutomations_AllActionsFailedStatus(t *testing.T) {
	db := newServiceTestDB(t)
	fx := seedBoard(t, db)
	svc := NewAutomationService(db, logrus.New(), nil, nil)

	rule := makeRule(t, db, fx.ws.ID, nil, models.TriggerCardCreated, "",
		models.AutomationAction{Type: models.ActionUpdateCardStatus, Order: 0, Config: `{"listId": "missing-list"}`},
		models.AutomationAction{Type: models.ActionAssignUser, Order: 1, Config: `{}`},
	)

	svc.ProcessAutomations(context.Background(), models.TriggerCardCreated,
		EventContext{"cardId": fx.card.ID}, fx.ws.ID, fx.board.ID)

	runs := runsOf(t, db, rule.ID)
	if len(runs) != 1 || runs[0].Status != "failed" {
		t.Fatalf("runs = %+v, want one failed run", runs)
	}
}

func TestProcessAutomations_FailingRuleDoesNotBlockOthers(t *testing.T) {
	db := newServiceTestDB(t)
	fx := seedBoard(t, db)
	audit := NewAuditService(db, logrus.New())
	svc := NewAutomationService(db, logrus.New(), nil, audit)

	failing := makeRule(t, db, fx.ws.ID, nil, models.TriggerCardCreated, "",
		models.AutomationAction{Type: models.ActionUpdateCardStatus, Order: 0, Config: `{"listId": "missing-list"}`},
	)
	logging := makeRule(t, db, fx.ws.ID, nil, models.TriggerCardCreated, "",
		models.AutomationAction{Type: models.ActionCreateAuditLog, Order: 0,
			Config: `{"action": "AUTO_FLAG", "entityType": "CARD", "logMessage": "flagged by rule"}`},
	)

	svc.ProcessAutomations(context.Background(), models.TriggerCardCreated,
		EventContext{"cardId": fx.card.ID}, fx.ws.ID, fx.board.ID)

	if runs := runsOf(t, db, failing.ID); len(runs) != 1 || runs[0].Status != "failed" {
		t.Errorf("failing rule runs = %+v", runs)
	}
	if runs := runsOf(t, db, logging.ID); len(runs) != 1 || runs[0].Status != "success" {
		t.Errorf("logging rule runs = %+v", runs)
	}

	var logs []models.AuditLog
	if err := db.Where("workspace_id = ?", fx.ws.ID).Find(&logs).Error; err != nil {
		t.Fatalf("load audit logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("audit logs = %d, want 1", len(logs))
	}
	if logs[0].Action != "AUTO_FLAG" || logs[0].EntityID != fx.card.ID {
		t.Errorf("unexpected audit log: %+v", logs[0])
	}
}

func TestProcessAutomations_UnknownActionTypeIsNoOp(t *testing.T) {
	db := newServiceTestDB(t)
	fx := seedBoard(t, db)
	svc := NewAutomationService(db, logrus.New(), nil, nil)

	rule := makeRule(t, db, fx.ws.ID, nil, models.TriggerCardCreated, "",
		models.AutomationAction{Type: "LAUNCH_ROCKET", Order: 0, Config: `{}`},
	)

	svc.ProcessAutomations(context.Background(), models.TriggerCardCreated,
		EventContext{"cardId": fx.card.ID}, fx.ws.ID, fx.board.ID)

	runs := runsOf(t, db, rule.ID)
	if len(runs) != 1 || runs[0].Status != "success" {
		t.Fatalf("unknown action should no-op, runs = %+v", runs)
	}
}

func TestProcessAutomations_SendEmail(t *testing.T) {
	db := newServiceTestDB(t)
	fx := seedBoard(t, db)
	mailer := &recordingMailer{}
	svc := NewAutomationService(db, logrus.New(), mailer, nil)

	rule := makeRule(t, db, fx.ws.ID, nil, models.TriggerCardCreated, "",
		models.AutomationAction{Type: models.ActionSendEmail, Order: 0,
			Config: fmt.Sprintf(`{"userId": %q}`, fx.user.ID)},
	)

	svc.ProcessAutomations(context.Background(), models.TriggerCardCreated,
		EventContext{"cardId": fx.card.ID, "title": "Ship it", "listTitle": "To Do"}, fx.ws.ID, fx.board.ID)

	if len(mailer.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(mailer.sent))
	}
	if mailer.sent[0].To != fx.user.Email {
		t.Errorf("recipient = %s, want %s", mailer.sent[0].To, fx.user.Email)
	}
	if mailer.sent[0].Subject != "New card on Launch" {
		t.Errorf("subject = %q", mailer.sent[0].Subject)
	}
	if runs := runsOf(t, db, rule.ID); len(runs) != 1 || runs[0].Status != "success" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestProcessAutomations_SendEmailSkipsUserWithoutAddress(t *testing.T) {
	db := newServiceTestDB(t)
	fx := seedBoard(t, db)
	mailer := &recordingMailer{}
	svc := NewAutomationService(db, logrus.New(), mailer, nil)

	noMail := models.User{Username: "bob", Name: "Bob"} // no email on file
	if err := db.Create(&noMail).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	rule := makeRule(t, db, fx.ws.ID, nil, models.TriggerCardCreated, "",
		models.AutomationAction{Type: models.ActionSendEmail, Order: 0,
			Config: fmt.Sprintf(`{"userId": %q}`, noMail.ID)},
	)

	svc.ProcessAutomations(context.Background(), models.TriggerCardCreated,
		EventContext{"cardId": fx.card.ID}, fx.ws.ID, fx.board.ID)

	if len(mailer.sent) != 0 {
		t.Fatalf("mailer called for user without email")
	}
	// Skipping an address-less user is not an action failure.
	if runs := runsOf(t, db, rule.ID); len(runs) != 1 || runs[0].Status != "success" {
		t.Fatalf("runs = %+v, want one success run", runs)
	}
}

func TestProcessAutomations_CreateTasksAddTagCalendarEvent(t *testing.T) {
	db := newServiceTestDB(t)
	fx := seedBoard(t, db)
	svc := NewAutomationService(db, logrus.New(), nil, nil)

	tag := models.Tag{WorkspaceID: fx.ws.ID, Name: "automated", Color: "#00aa00"}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("create tag: %v", err)
	}

	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	rule := makeRule(t, db, fx.ws.ID, nil, models.TriggerCardCreated, "",
		models.AutomationAction{Type: models.ActionCreateTasks, Order: 0,
			Config: `{"tasks": [{"title": "Review", "order": 0}, {"title": "Deploy", "order": 1}]}`},
		models.AutomationAction{Type: models.ActionAddTag, Order: 1,
			Config: fmt.Sprintf(`{"tagId": %q}`, tag.ID)},
		models.AutomationAction{Type: models.ActionCreateCalendarEvent, Order: 2,
			Config: fmt.Sprintf(`{"title": "Kickoff", "userId": %q, "startDate": %q, "endDate": %q}`,
				fx.user.ID, start.Format(time.RFC3339), end.Format(time.RFC3339))},
	)

	svc.ProcessAutomations(context.Background(), models.TriggerCardCreated,
		EventContext{"cardId": fx.card.ID}, fx.ws.ID, fx.board.ID)

	var tasks []models.Task
	if err := db.Where("card_id = ?", fx.card.ID).Order("task_order ASC").Find(&tasks).Error; err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Title != "Review" || tasks[1].Title != "Deploy" {
		t.Errorf("unexpected tasks: %+v", tasks)
	}

	var card models.Card
	if err := db.Preload("Tags").First(&card, "id = ?", fx.card.ID).Error; err != nil {
		t.Fatalf("reload card: %v", err)
	}
	if len(card.Tags) != 1 || card.Tags[0].ID != tag.ID {
		t.Errorf("unexpected tags: %+v", card.Tags)
	}

	var events []models.CalendarEvent
	if err := db.Where("user_id = ?", fx.user.ID).Find(&events).Error; err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].CardID == nil || *events[0].CardID != fx.card.ID {
		t.Errorf("event not linked to card: %+v", events[0])
	}
	if !events[0].StartDate.Equal(start) || !events[0].EndDate.Equal(end) {
		t.Errorf("event dates = %v..%v", events[0].StartDate, events[0].EndDate)
	}

	if runs := runsOf(t, db, rule.ID); len(runs) != 1 || runs[0].Status != "success" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestProcessAutomations_AssignUserAction(t *testing.T) {
	db := newServiceTestDB(t)
	fx := seedBoard(t, db)
	svc := NewAutomationService(db, logrus.New(), nil, nil)

	makeRule(t, db, fx.ws.ID, nil, models.TriggerCardCreated, "",
		models.AutomationAction{Type: models.ActionAssignUser, Order: 0,
			Config: fmt.Sprintf(`{"userId": %q}`, fx.user.ID)},
	)

	svc.ProcessAutomations(context.Background(), models.TriggerCardCreated,
		EventContext{"cardId": fx.card.ID}, fx.ws.ID, fx.board.ID)

	var card models.Card
	if err := db.First(&card, "id = ?", fx.card.ID).Error; err != nil {
		t.Fatalf("reload card: %v", err)
	}
	if card.AssigneeID == nil || *card.AssigneeID != fx.user.ID {
		t.Errorf("assignee = %v, want %s", card.AssigneeID, fx.user.ID)
	}
}

func TestProcessAutomations_UpdateOnMissingCardFails(t *testing.T) {
	db := newServiceTestDB(t)
	fx := seedBoard(t, db)
	svc := NewAutomationService(db, logrus.New(), nil, nil)

	rule := makeRule(t, db, fx.ws.ID, nil, models.TriggerCardCreated, "",
		models.AutomationAction{Type: models.ActionUpdateCardPriority, Order: 0, Config: `{"priority": "high"}`},
	)

	svc.ProcessAutomations(context.Background(), models.TriggerCardCreated,
		EventContext{"cardId": "gone"}, fx.ws.ID, fx.board.ID)

	runs := runsOf(t, db, rule.ID)
	if len(runs) != 1 || runs[0].Status != "failed" {
		t.Fatalf("runs = %+v, want one failed run", runs)
	}
}
