package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/worknest/intranet-backend-go/internal/domain/leave"
	"github.com/worknest/intranet-backend-go/internal/domain/notification"
	"github.com/worknest/intranet-backend-go/internal/domain/user"
	"github.com/worknest/intranet-backend-go/internal/pkg/email"
)

// Service fans leave events out to in-app notifications and email.
// Every delivery is best-effort: failures are logged, never returned,
// so a dropped email cannot roll back a leave mutation.
//
// Decision emails to the applicant are deferred: an approval starts a
// short timer keyed by request ID, and another decision on the same
// request within the window replaces it. A rejection sends immediately.
// A burst of per-day decisions therefore produces one email describing
// the final state instead of one per click.
type Service struct {
	repo   notification.Repository
	users  user.Repository
	mailer email.EmailService

	statusDelay time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func NewService(repo notification.Repository, users user.Repository, mailer email.EmailService, statusDelay time.Duration) *Service {
	return &Service{
		repo:        repo,
		users:       users,
		mailer:      mailer,
		statusDelay: statusDelay,
		pending:     make(map[string]*time.Timer),
	}
}

// Stop cancels all pending deferred emails. Called on shutdown.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.pending {
		timer.Stop()
		delete(s.pending, id)
	}
}

func emailData(applicant user.User, request leave.LeaveRequest) email.LeaveEmailData {
	return email.LeaveEmailData{
		EmployeeName: applicant.FullName,
		EmployeeID:   applicant.ID,
		LeaveType:    string(request.LeaveType),
		StartDate:    request.StartDate.Format("2006-01-02"),
		EndDate:      request.EndDate.Format("2006-01-02"),
		NoOfDays:     request.NoOfDays.String(),
		Reason:       request.Reason,
		Status:       string(request.Status),
	}
}

// reviewersFor resolves who should hear about a new or changed request.
//
//	employee    -> reporting manager and HR
//	manager     -> HR
//	hr          -> super admins
//	super_admin -> nobody
func (s *Service) reviewersFor(ctx context.Context, applicant user.User) []user.User {
	var recipients []user.User

	switch applicant.Role {
	case user.RoleEmployee:
		if manager, err := s.users.GetManagerOf(ctx, applicant.ID); err == nil {
			recipients = append(recipients, manager)
		} else if err != user.ErrUserNotFound {
			slog.Error("failed to resolve reporting manager", "employee_id", applicant.ID, "error", err)
		}
		recipients = append(recipients, s.activeByRole(ctx, user.RoleHR)...)
	case user.RoleManager:
		recipients = append(recipients, s.activeByRole(ctx, user.RoleHR)...)
	case user.RoleHR:
		recipients = append(recipients, s.activeByRole(ctx, user.RoleSuperAdmin)...)
	}

	return recipients
}

func (s *Service) activeByRole(ctx context.Context, role user.Role) []user.User {
	users, err := s.users.GetActiveByRole(ctx, role)
	if err != nil {
		slog.Error("failed to list recipients by role", "role", role, "error", err)
		return nil
	}
	return users
}

func (s *Service) record(ctx context.Context, recipientID string, typ notification.Type, title, message string) {
	err := s.repo.Create(ctx, &notification.Notification{
		RecipientID: recipientID,
		Type:        typ,
		Title:       title,
		Message:     message,
	})
	if err != nil {
		slog.Error("failed to store notification", "recipient_id", recipientID, "type", typ, "error", err)
	}
}

func (s *Service) LeaveApplied(ctx context.Context, applicant user.User, request leave.LeaveRequest) {
	data := emailData(applicant, request)
	title := "New leave request"
	message := fmt.Sprintf("%s applied for %s leave from %s to %s (%s days)",
		applicant.FullName, request.LeaveType, data.StartDate, data.EndDate, data.NoOfDays)

	for _, recipient := range s.reviewersFor(ctx, applicant) {
		if recipient.ID == applicant.ID {
			continue
		}
		s.record(ctx, recipient.ID, notification.TypeLeaveApplied, title, message)
		if err := s.mailer.SendLeaveApplied(recipient.Email, data); err != nil {
			slog.Error("failed to send leave-applied email", "to", recipient.Email, "request_id", request.ID, "error", err)
		}
	}
}

func (s *Service) LeaveDecision(ctx context.Context, applicant user.User, request leave.LeaveRequest, approver user.User, action leave.DayStatus, comment string) {
	data := emailData(applicant, request)
	data.ApproverName = approver.FullName
	if action == leave.DayStatusRejected {
		data.RejectionReason = comment
	}

	title := fmt.Sprintf("Leave request %s", request.Status)
	message := fmt.Sprintf("%s %s your %s leave request (%s to %s); request is now %s",
		approver.FullName, action, request.LeaveType, data.StartDate, data.EndDate, request.Status)
	s.record(ctx, applicant.ID, notification.TypeLeaveDecision, title, message)

	if action == leave.DayStatusRejected {
		s.cancelPending(request.ID)
		s.sendStatus(applicant.Email, data, request.ID)
		return
	}
	s.deferStatus(applicant.Email, data, request.ID)
}

// deferStatus schedules the applicant email, replacing any timer
// already armed for the same request. The payload is captured at
// scheduling time, so every event that changes request state must
// either re-arm with fresh data (LeaveDecision) or cancel the timer
// and deliver its own email (LeaveConverted, LeaveDeleted).
func (s *Service) deferStatus(to string, data email.LeaveEmailData, requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.pending[requestID]; ok {
		timer.Stop()
	}
	s.pending[requestID] = time.AfterFunc(s.statusDelay, func() {
		s.cancelPending(requestID)
		s.sendStatus(to, data, requestID)
	})
}

func (s *Service) cancelPending(requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.pending[requestID]; ok {
		timer.Stop()
		delete(s.pending, requestID)
	}
}

func (s *Service) sendStatus(to string, data email.LeaveEmailData, requestID string) {
	if err := s.mailer.SendLeaveStatus(to, data); err != nil {
		slog.Error("failed to send leave-status email", "to", to, "request_id", requestID, "error", err)
	}
}

func (s *Service) LeaveEdited(ctx context.Context, applicant user.User, request leave.LeaveRequest) {
	data := emailData(applicant, request)
	title := "Leave request updated"
	message := fmt.Sprintf("%s changed their %s leave request to %s - %s (%s days)",
		applicant.FullName, request.LeaveType, data.StartDate, data.EndDate, data.NoOfDays)

	for _, recipient := range s.reviewersFor(ctx, applicant) {
		if recipient.ID == applicant.ID {
			continue
		}
		s.record(ctx, recipient.ID, notification.TypeLeaveEdited, title, message)
		if err := s.mailer.SendLeaveApplied(recipient.Email, data); err != nil {
			slog.Error("failed to send leave-edited email", "to", recipient.Email, "request_id", request.ID, "error", err)
		}
	}
}

func (s *Service) LeaveDeleted(ctx context.Context, applicant user.User, request leave.LeaveRequest) {
	s.cancelPending(request.ID)

	data := emailData(applicant, request)
	title := "Leave request withdrawn"
	message := fmt.Sprintf("%s withdrew their %s leave request (%s to %s)",
		applicant.FullName, request.LeaveType, data.StartDate, data.EndDate)

	for _, recipient := range s.reviewersFor(ctx, applicant) {
		if recipient.ID == applicant.ID {
			continue
		}
		s.record(ctx, recipient.ID, notification.TypeLeaveDeleted, title, message)
	}
}

func (s *Service) LeaveConverted(ctx context.Context, applicant user.User, request leave.LeaveRequest) {
	// The conversion email carries the current request state, so any
	// deferred decision email still armed for this request is stale
	// (it would name the old leave type) and must not fire.
	s.cancelPending(request.ID)

	data := emailData(applicant, request)
	title := "Leave converted to casual"
	message := fmt.Sprintf("Your leave without pay from %s to %s was converted to casual leave (%s days refunded)",
		data.StartDate, data.EndDate, data.NoOfDays)

	s.record(ctx, applicant.ID, notification.TypeLeaveDecision, title, message)
	s.sendStatus(applicant.Email, data, request.ID)
}

// List returns the recipient's notifications, newest first.
func (s *Service) List(ctx context.Context, recipientID string, unreadOnly bool) ([]notification.Notification, error) {
	return s.repo.ListByRecipient(ctx, recipientID, unreadOnly)
}

func (s *Service) MarkRead(ctx context.Context, recipientID string, ids []string) error {
	return s.repo.MarkRead(ctx, recipientID, ids)
}

func (s *Service) MarkAllRead(ctx context.Context, recipientID string) error {
	return s.repo.MarkAllRead(ctx, recipientID)
}

func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	return s.repo.UnreadCount(ctx, recipientID)
}
