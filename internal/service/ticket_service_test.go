package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/campus-helpdesk/internal/config"
	"github.com/spec-kit/campus-helpdesk/internal/domain"
	"github.com/spec-kit/campus-helpdesk/internal/events"
	"github.com/spec-kit/campus-helpdesk/internal/repository/repotest"
	apperrors "github.com/spec-kit/campus-helpdesk/pkg/util"
)

type lifecycleFixture struct {
	store         *repotest.Store
	mailer        *recordingMailer
	cache         *mapCache
	tickets       *TicketService
	notifications *NotificationService
	etc           domain.Office
	etcStaff      *domain.User
	student       *domain.User
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	store := repotest.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	mail := &recordingMailer{}
	cache := newMapCache()

	notifications := NewNotificationService(NotificationDependencies{
		Store:      store,
		Cache:      cache,
		Mailer:     mail,
		Dispatcher: dispatcher,
		Config:     config.NotificationConfig{RecentLimit: 5, PreviewLength: 100},
	})
	notifications.RegisterHandlers()

	tickets := NewTicketService(TicketDependencies{
		Store:         store,
		Routing:       NewRoutingEngine(config.DefaultRoutingConfig()),
		Notifications: notifications,
		Dispatcher:    dispatcher,
		Clock:         store.Clock,
	})

	etc := store.AddOffice(config.OfficeETC, "etc@school.edu.ph")
	return &lifecycleFixture{
		store:         store,
		mailer:        mail,
		cache:         cache,
		tickets:       tickets,
		notifications: notifications,
		etc:           etc,
		etcStaff:      store.AddStaff("ETC Desk", "etc.desk@school.edu.ph", etc),
		student:       store.AddUser("Ana Cruz", "ana@school.edu.ph", false),
	}
}

func technicalSubmission() TicketSubmission {
	return TicketSubmission{
		Category: domain.CategoryTechnical,
		Fields: map[string]string{
			"title":       "Cannot log in",
			"description": "The portal rejects my password",
			"issueType":   "login",
		},
	}
}

func (f *lifecycleFixture) createTechnical(t *testing.T) *domain.Ticket {
	t.Helper()
	result, err := f.tickets.CreateTicket(context.Background(), f.student, technicalSubmission())
	require.NoError(t, err)
	return result.Ticket
}

func requireDomainError(t *testing.T, err error, code string) *apperrors.DomainError {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, code, domainErr.Code)
	return domainErr
}

func TestTechnicalTicketLifecycle(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	created, err := f.tickets.CreateTicket(ctx, f.student, technicalSubmission())
	require.NoError(t, err)
	require.Empty(t, created.Warnings)

	ticket := created.Ticket
	assert.Equal(t, domain.CategoryTechnical, ticket.Category)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	require.NotNil(t, ticket.AssignedTo)
	assert.Equal(t, f.etcStaff.ID, *ticket.AssignedTo)
	assert.Equal(t, domain.TechnicalDetails{IssueType: "login"}, ticket.Details)

	notices := f.store.NoticesFor(f.student.ID)
	require.Len(t, notices, 1)
	assert.Equal(t, domain.NotificationTicketCreated, notices[0].Type)

	history := f.store.HistoryFor(ticket.ID)
	require.Len(t, history, 1)
	assert.Equal(t, "Ticket created by user", history[0].Action)

	// the student acted, so only the office inbox is mailed
	assert.Empty(t, f.mailer.to(f.student.Email))
	require.Len(t, f.mailer.to("etc@school.edu.ph"), 1)

	changed, err := f.tickets.UpdateTicketStatus(ctx, f.etcStaff, ticket.ID, domain.TicketStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, changed.History)
	assert.Equal(t, "Status changed from Open to Completed by ETC Desk", changed.History.Action)
	assert.Equal(t, domain.NotificationTicketCompleted, changed.Notification.Type)
	assert.Equal(t, f.student.ID, changed.Notification.RecipientID)

	mails := f.mailer.to(f.student.Email)
	require.Len(t, mails, 1)
	assert.Equal(t, "Ticket 0001 Status Update", mails[0].Subject)
	assert.Contains(t, mails[0].Body, "has been updated to 'Completed'")

	history = f.store.HistoryFor(ticket.ID)
	require.Len(t, history, 2)
	assert.Equal(t, domain.HistoryKindStatusChanged, history[0].Kind)
}

func TestCreateTicketRejectsInvalidFormWithoutWriting(t *testing.T) {
	f := newLifecycleFixture(t)
	sub := technicalSubmission()
	sub.Fields["issueType"] = "printer"
	delete(sub.Fields, "title")

	_, err := f.tickets.CreateTicket(context.Background(), f.student, sub)
	domainErr := requireDomainError(t, err, apperrors.CodeValidation)
	assert.Contains(t, domainErr.Details, "title")
	assert.Contains(t, domainErr.Details, "issueType")

	all, err := f.store.Tickets().ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.store.NoticesFor(f.student.ID))
}

func TestCreateTicketWithoutStaffStaysUnassigned(t *testing.T) {
	f := newLifecycleFixture(t)
	f.store.AddOffice(config.OfficePrincipal, "principal@school.edu.ph")

	result, err := f.tickets.CreateTicket(context.Background(), f.student, TicketSubmission{
		Category: domain.CategoryLostFound,
		Fields: map[string]string{
			"title":           "Lost umbrella",
			"department":      "college",
			"itemDescription": "Blue umbrella",
			"location":        "Library",
			"dateTime":        "2024-09-01T10:30",
			"notes":           "black handle",
		},
	})
	require.NoError(t, err)
	assert.Nil(t, result.Ticket.AssignedTo)
	assert.Equal(t, "Blue umbrella\n\nNotes: black handle", result.Ticket.Description)
	assert.NotNil(t, result.Notification)

	// the intake mail still reaches the first existing office
	require.Len(t, f.mailer.to("principal@school.edu.ph"), 1)
	assert.Contains(t, f.mailer.to("principal@school.edu.ph")[0].Body, "No staff member is available")
}

func TestUpdateStatusToSameValueIsNoop(t *testing.T) {
	f := newLifecycleFixture(t)
	ticket := f.createTechnical(t)

	result, err := f.tickets.UpdateTicketStatus(context.Background(), f.etcStaff, ticket.ID, domain.TicketStatusOpen)
	require.NoError(t, err)
	assert.Nil(t, result.History)
	assert.Nil(t, result.Notification)
	assert.Len(t, f.store.HistoryFor(ticket.ID), 1)
	assert.Len(t, f.store.NoticesFor(f.student.ID), 1)
	assert.Empty(t, f.mailer.to(f.student.Email))
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	f := newLifecycleFixture(t)
	ticket := f.createTechnical(t)

	_, err := f.tickets.UpdateTicketStatus(context.Background(), f.etcStaff, ticket.ID, domain.TicketStatus("closed"))
	requireDomainError(t, err, apperrors.CodeValidation)
}

func TestStatusChangeNotifications(t *testing.T) {
	cases := []struct {
		name     string
		from     domain.TicketStatus
		to       domain.TicketStatus
		kind     domain.NotificationType
		title    string
		contains string
	}{
		{
			name:     "open to in progress names the assignee",
			from:     domain.TicketStatusOpen,
			to:       domain.TicketStatusInProgress,
			kind:     domain.NotificationTicketUpdated,
			title:    "Ticket In Progress",
			contains: "is now being processed by ETC Desk",
		},
		{
			name:     "completion asks for review",
			from:     domain.TicketStatusInProgress,
			to:       domain.TicketStatusCompleted,
			kind:     domain.NotificationTicketCompleted,
			title:    "Ticket Completed",
			contains: "Please review the solution",
		},
		{
			name:     "reopening reports the new label",
			from:     domain.TicketStatusCompleted,
			to:       domain.TicketStatusOpen,
			kind:     domain.NotificationTicketUpdated,
			title:    "Ticket Status Updated",
			contains: "status has been updated to Open",
		},
		{
			name:     "completed back to in progress is a plain update",
			from:     domain.TicketStatusCompleted,
			to:       domain.TicketStatusInProgress,
			kind:     domain.NotificationTicketUpdated,
			title:    "Ticket Status Updated",
			contains: "status has been updated to In Progress",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newLifecycleFixture(t)
			ctx := context.Background()
			ticket := f.createTechnical(t)
			if tc.from != domain.TicketStatusOpen {
				_, err := f.tickets.UpdateTicketStatus(ctx, f.etcStaff, ticket.ID, tc.from)
				require.NoError(t, err)
			}

			result, err := f.tickets.UpdateTicketStatus(ctx, f.etcStaff, ticket.ID, tc.to)
			require.NoError(t, err)
			require.NotNil(t, result.Notification)
			assert.Equal(t, tc.kind, result.Notification.Type)
			assert.Equal(t, tc.title, result.Notification.Title)
			assert.Contains(t, result.Notification.Message, tc.contains)
			require.NotNil(t, result.History.NewStatus)
			assert.Equal(t, tc.to, *result.History.NewStatus)
		})
	}
}

func TestMailFailureIsReportedAsWarning(t *testing.T) {
	f := newLifecycleFixture(t)
	ticket := f.createTechnical(t)
	f.mailer.err = errors.New("smtp unavailable")

	result, err := f.tickets.UpdateTicketStatus(context.Background(), f.etcStaff, ticket.ID, domain.TicketStatusCompleted)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, f.student.Email, result.Warnings[0].Recipient)
	assert.ErrorContains(t, result.Warnings[0], "smtp unavailable")

	stored, ok := f.store.Ticket(ticket.ID)
	require.True(t, ok)
	assert.Equal(t, domain.TicketStatusCompleted, stored.Status)
}

func TestHistoryFailureRollsBackCreate(t *testing.T) {
	f := newLifecycleFixture(t)
	f.store.HistoryErr = errors.New("disk full")

	_, err := f.tickets.CreateTicket(context.Background(), f.student, technicalSubmission())
	require.Error(t, err)

	all, err := f.store.Tickets().ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.store.NoticesFor(f.student.ID))
	assert.Equal(t, 1, f.store.Rollbacks)
	assert.Empty(t, f.mailer.sent)
}

func TestNotificationFailureRollsBackStatusChange(t *testing.T) {
	f := newLifecycleFixture(t)
	ticket := f.createTechnical(t)
	f.store.NoticeErr = errors.New("constraint violated")

	_, err := f.tickets.UpdateTicketStatus(context.Background(), f.etcStaff, ticket.ID, domain.TicketStatusInProgress)
	require.Error(t, err)

	stored, ok := f.store.Ticket(ticket.ID)
	require.True(t, ok)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	assert.Len(t, f.store.HistoryFor(ticket.ID), 1)
}

func TestStaffOfAnotherOfficeIsDenied(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	ticket := f.createTechnical(t)
	registrar := f.store.AddOffice(config.OfficeRegistrar, "registrar@school.edu.ph")
	clerk := f.store.AddStaff("Registrar Clerk", "clerk@school.edu.ph", registrar)

	_, err := f.tickets.GetTicketDetail(ctx, clerk, ticket.ID, AccessPathStaff)
	denied := requireDomainError(t, err, apperrors.CodeForbidden)
	assert.Empty(t, denied.Details)

	_, err = f.tickets.UpdateTicketStatus(ctx, clerk, ticket.ID, domain.TicketStatusCompleted)
	requireDomainError(t, err, apperrors.CodeForbidden)

	_, err = f.tickets.AddNote(ctx, clerk, ticket.ID, "looking into it")
	requireDomainError(t, err, apperrors.CodeForbidden)

	stored, _ := f.store.Ticket(ticket.ID)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	assert.Len(t, f.store.HistoryFor(ticket.ID), 1)
}

func TestOwnerPathIsCreatorOnly(t *testing.T) {
	f := newLifecycleFixture(t)
	ticket := f.createTechnical(t)
	other := f.store.AddUser("Ben Reyes", "ben@school.edu.ph", false)

	_, err := f.tickets.GetTicketDetail(context.Background(), other, ticket.ID, AccessPathOwner)
	requireDomainError(t, err, apperrors.CodeForbidden)

	// staff membership does not open the owner path
	_, err = f.tickets.GetTicketDetail(context.Background(), f.etcStaff, ticket.ID, AccessPathOwner)
	requireDomainError(t, err, apperrors.CodeForbidden)
}

func TestMissingTicketIsNotFound(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.tickets.GetTicketDetail(context.Background(), f.student, 99, AccessPathOwner)
	notFound := requireDomainError(t, err, apperrors.CodeNotFound)
	assert.Equal(t, "0099", notFound.Details["ticket_id"])
}

func TestUnassignedTicketIsSuperuserOnly(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	admin := f.store.AddUser("Admin", "admin@school.edu.ph", true)

	result, err := f.tickets.CreateTicket(ctx, f.student, TicketSubmission{
		Category: domain.CategoryWelfare,
		Fields: map[string]string{
			"title":         "Need to talk",
			"contactMethod": "email",
			"requestType":   "personal",
			"description":   "Could someone reach out this week?",
			"preferredDate": "2024-09-05",
		},
	})
	require.NoError(t, err)
	require.Nil(t, result.Ticket.AssignedTo)

	_, err = f.tickets.GetTicketDetail(ctx, f.etcStaff, result.Ticket.ID, AccessPathStaff)
	requireDomainError(t, err, apperrors.CodeForbidden)

	detail, err := f.tickets.GetTicketDetail(ctx, admin, result.Ticket.ID, AccessPathStaff)
	require.NoError(t, err)
	assert.Equal(t, result.Ticket.ID, detail.Ticket.ID)
}

func TestViewingTicketReadsItsNotifications(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	ticket := f.createTechnical(t)

	note, err := f.tickets.AddNote(ctx, f.etcStaff, ticket.ID, "<b>Please</b> reset via the kiosk")
	require.NoError(t, err)
	assert.Equal(t, "Please reset via the kiosk", note.Entry.Note)
	assert.Equal(t, "Note added by ETC Desk", note.Entry.Action)
	assert.Equal(t, domain.NotificationTicketResponse, note.Notification.Type)
	assert.Equal(t, "New response on ticket #0001: Please reset via the kiosk", note.Notification.Message)
	require.Len(t, f.mailer.to(f.student.Email), 1)

	count, err := f.notifications.UnreadCount(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	buckets, err := f.tickets.ListTickets(ctx, f.student, ScopeOwn)
	require.NoError(t, err)
	require.Len(t, buckets.Open, 1)
	assert.True(t, buckets.Open[0].HasUnreadStaffResponse())

	detail, err := f.tickets.GetTicketDetail(ctx, f.student, ticket.ID, AccessPathOwner)
	require.NoError(t, err)
	assert.False(t, detail.Ticket.HasUnreadStaffResponse())
	require.Len(t, detail.Notes, 1)
	assert.Len(t, detail.History, 2)
	assert.Contains(t, f.cache.invalidated, f.student.ID)

	count, err = f.notifications.UnreadCount(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// a second view changes nothing
	_, err = f.tickets.GetTicketDetail(ctx, f.student, ticket.ID, AccessPathOwner)
	require.NoError(t, err)
	count, err = f.notifications.UnreadCount(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestStaffViewDoesNotReadOwnerNotifications(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	ticket := f.createTechnical(t)

	_, err := f.tickets.GetTicketDetail(ctx, f.etcStaff, ticket.ID, AccessPathStaff)
	require.NoError(t, err)

	count, err := f.notifications.UnreadCount(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	stored, _ := f.store.Ticket(ticket.ID)
	assert.Nil(t, stored.LastViewedByUser)
}

func TestAddNoteRequiresText(t *testing.T) {
	f := newLifecycleFixture(t)
	ticket := f.createTechnical(t)

	_, err := f.tickets.AddNote(context.Background(), f.etcStaff, ticket.ID, "  <p></p> ")
	requireDomainError(t, err, apperrors.CodeValidation)
	assert.Len(t, f.store.HistoryFor(ticket.ID), 1)
}

func TestOwnerDeleteKeepsOrphanedHistory(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	ticket := f.createTechnical(t)

	result, err := f.tickets.DeleteTicket(ctx, f.student, ticket.ID, AccessPathOwner)
	require.NoError(t, err)
	assert.Nil(t, result.Entry.TicketID)
	assert.Equal(t, "Ticket deleted by user", result.Entry.Action)
	assert.Equal(t, "0001", result.Entry.TicketDisplayID)
	assert.Equal(t, "Cannot log in", result.Entry.TicketTitle)

	_, ok := f.store.Ticket(ticket.ID)
	assert.False(t, ok)

	entries, err := f.tickets.ListOwnerHistory(ctx, f.student)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.HistoryKindDeleted, entries[0].Kind)
	for _, entry := range entries {
		assert.True(t, entry.Orphaned())
		assert.Equal(t, "0001", entry.TicketDisplayID)
	}

	notices := f.store.NoticesFor(f.student.ID)
	require.Len(t, notices, 2)
	for _, notice := range notices {
		assert.Nil(t, notice.TicketID)
		assert.Equal(t, "0001", notice.TicketDisplayID)
	}
	assert.Equal(t, "Ticket Deleted", notices[1].Title)
	assert.Empty(t, f.mailer.to(f.student.Email))
}

func TestStaffDeleteMailsOwner(t *testing.T) {
	f := newLifecycleFixture(t)
	ticket := f.createTechnical(t)

	result, err := f.tickets.DeleteTicket(context.Background(), f.etcStaff, ticket.ID, AccessPathStaff)
	require.NoError(t, err)
	assert.Equal(t, "Ticket deleted by ETC Desk", result.Entry.Action)
	require.Len(t, f.mailer.to(f.student.Email), 1)

	other, err := f.tickets.ListOwnerHistory(context.Background(), f.etcStaff)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAssignTicket(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	ticket := f.createTechnical(t)
	colleague := f.store.AddStaff("ETC Night Shift", "etc.night@school.edu.ph", f.etc)
	registrar := f.store.AddOffice(config.OfficeRegistrar, "registrar@school.edu.ph")
	clerk := f.store.AddStaff("Registrar Clerk", "clerk@school.edu.ph", registrar)

	assignees, err := f.tickets.ListAssignees(ctx, f.etcStaff, ticket.ID)
	require.NoError(t, err)
	require.Len(t, assignees, 2)
	assert.Equal(t, f.etcStaff.ID, assignees[0].ID)

	result, err := f.tickets.AssignTicket(ctx, f.etcStaff, ticket.ID, colleague.ID)
	require.NoError(t, err)
	require.NotNil(t, result.History)
	assert.Equal(t, "Ticket assigned to ETC Night Shift by ETC Desk", result.History.Action)
	assert.Equal(t, domain.NotificationTicketAssigned, result.Notification.Type)
	assert.Equal(t, colleague.ID, *result.Ticket.AssignedTo)

	again, err := f.tickets.AssignTicket(ctx, colleague, ticket.ID, colleague.ID)
	require.NoError(t, err)
	assert.Nil(t, again.History)

	_, err = f.tickets.AssignTicket(ctx, colleague, ticket.ID, clerk.ID)
	domainErr := requireDomainError(t, err, apperrors.CodeValidation)
	assert.Contains(t, domainErr.Details, "assignee_id")

	_, err = f.tickets.AssignTicket(ctx, colleague, ticket.ID, f.student.ID)
	requireDomainError(t, err, apperrors.CodeValidation)

	_, err = f.tickets.AssignTicket(ctx, colleague, ticket.ID, "00000000-0000-0000-0000-999999999999")
	requireDomainError(t, err, apperrors.CodeNotFound)
}

func TestOwnerUpdate(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	ticket := f.createTechnical(t)

	sub := technicalSubmission()
	sub.Fields["title"] = "Still cannot log in"
	sub.Fields["issueType"] = "software"
	result, err := f.tickets.UpdateTicket(ctx, f.student, ticket.ID, sub)
	require.NoError(t, err)
	assert.Equal(t, "Still cannot log in", result.Ticket.Title)
	assert.Equal(t, domain.TechnicalDetails{IssueType: "software"}, result.Ticket.Details)
	assert.Equal(t, "Ticket updated by user", result.History.Action)
	assert.Equal(t, domain.NotificationTicketUpdated, result.Notification.Type)

	sub.Category = domain.CategoryAcademic
	_, err = f.tickets.UpdateTicket(ctx, f.student, ticket.ID, sub)
	requireDomainError(t, err, apperrors.CodeValidation)

	_, err = f.tickets.UpdateTicket(ctx, f.etcStaff, ticket.ID, technicalSubmission())
	requireDomainError(t, err, apperrors.CodeForbidden)
}

func TestListTicketsByScope(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	first := f.createTechnical(t)
	second := f.createTechnical(t)
	_, err := f.tickets.UpdateTicketStatus(ctx, f.etcStaff, first.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)

	registrar := f.store.AddOffice(config.OfficeRegistrar, "registrar@school.edu.ph")
	clerk := f.store.AddStaff("Registrar Clerk", "clerk@school.edu.ph", registrar)
	admin := f.store.AddUser("Admin", "admin@school.edu.ph", true)

	own, err := f.tickets.ListTickets(ctx, f.student, ScopeOwn)
	require.NoError(t, err)
	require.Len(t, own.Open, 1)
	assert.Equal(t, second.ID, own.Open[0].ID)
	require.Len(t, own.InProgress, 1)
	assert.Empty(t, own.Completed)

	office, err := f.tickets.ListTickets(ctx, f.etcStaff, ScopeOffice)
	require.NoError(t, err)
	assert.Len(t, office.Open, 1)
	assert.Len(t, office.InProgress, 1)

	empty, err := f.tickets.ListTickets(ctx, clerk, ScopeOffice)
	require.NoError(t, err)
	assert.Empty(t, empty.Open)
	assert.Empty(t, empty.InProgress)

	_, err = f.tickets.ListTickets(ctx, f.etcStaff, ScopeAll)
	requireDomainError(t, err, apperrors.CodeForbidden)
	_, err = f.tickets.ListTickets(ctx, f.student, ScopeOffice)
	requireDomainError(t, err, apperrors.CodeForbidden)

	all, err := f.tickets.ListTickets(ctx, admin, ScopeAll)
	require.NoError(t, err)
	assert.Len(t, all.Open, 1)
	assert.Len(t, all.InProgress, 1)
}

func TestNotificationCenter(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		f.createTechnical(t)
	}

	unread, err := f.notifications.Unread(ctx, f.student)
	require.NoError(t, err)
	assert.Len(t, unread.Items, 5)
	assert.Equal(t, int64(7), unread.UnreadCount)
	assert.Equal(t, "0007", unread.Items[0].TicketDisplayID)

	changed, err := f.notifications.MarkAllRead(ctx, f.student)
	require.NoError(t, err)
	assert.Equal(t, int64(7), changed)

	changed, err = f.notifications.MarkAllRead(ctx, f.student)
	require.NoError(t, err)
	assert.Zero(t, changed)

	list, err := f.notifications.List(ctx, f.student, 3)
	require.NoError(t, err)
	assert.Len(t, list.Items, 3)
	assert.Zero(t, list.UnreadCount)
}
