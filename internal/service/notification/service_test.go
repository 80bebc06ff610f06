package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worknest/intranet-backend-go/internal/domain/leave"
	"github.com/worknest/intranet-backend-go/internal/domain/notification"
	"github.com/worknest/intranet-backend-go/internal/domain/user"
	"github.com/worknest/intranet-backend-go/internal/pkg/email"
)

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []notification.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID string, unreadOnly bool) ([]notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notification.Notification
	for _, n := range f.created {
		if n.RecipientID == recipientID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(context.Context, string, []string) error { return nil }
func (f *fakeNotificationRepo) MarkAllRead(context.Context, string) error        { return nil }
func (f *fakeNotificationRepo) UnreadCount(context.Context, string) (int, error) { return 0, nil }

type fakeUserRepo struct {
	users    map[string]user.User
	managers map[string]user.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) GetActiveByRole(_ context.Context, role user.Role) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		if u.Role == role && u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetManagerOf(_ context.Context, employeeID string) (user.User, error) {
	m, ok := f.managers[employeeID]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return m, nil
}

type fakeMailer struct {
	mu      sync.Mutex
	applied []string
	status  []email.LeaveEmailData
}

func (f *fakeMailer) SendLeaveApplied(to string, _ email.LeaveEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, to)
	return nil
}

func (f *fakeMailer) SendLeaveStatus(_ string, data email.LeaveEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = append(f.status, data)
	return nil
}

func (f *fakeMailer) statusCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.status)
}

func testRequest() leave.LeaveRequest {
	return leave.LeaveRequest{
		ID:         "req-1",
		EmployeeID: "emp-1",
		LeaveType:  leave.LeaveTypeCasual,
		StartDate:  time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, time.September, 9, 0, 0, 0, 0, time.UTC),
		NoOfDays:   decimal.NewFromInt(3),
		Status:     leave.RequestStatusPartiallyApproved,
	}
}

func testFixture() (*Service, *fakeNotificationRepo, *fakeMailer) {
	manager := user.User{ID: "mgr-1", FullName: "Meera Pillai", Email: "meera@worknest.local", Role: user.RoleManager, IsActive: true}
	hr := user.User{ID: "hr-1", FullName: "Rohan Iyer", Email: "rohan@worknest.local", Role: user.RoleHR, IsActive: true}
	applicant := user.User{ID: "emp-1", FullName: "Asha Nair", Email: "asha@worknest.local", Role: user.RoleEmployee, IsActive: true}

	users := &fakeUserRepo{
		users:    map[string]user.User{"mgr-1": manager, "hr-1": hr, "emp-1": applicant},
		managers: map[string]user.User{"emp-1": manager},
	}
	repo := &fakeNotificationRepo{}
	mailer := &fakeMailer{}
	svc := NewService(repo, users, mailer, 50*time.Millisecond)
	return svc, repo, mailer
}

func TestService_LeaveApplied_RoutesToManagerAndHR(t *testing.T) {
	svc, repo, mailer := testFixture()
	defer svc.Stop()

	applicant := user.User{ID: "emp-1", FullName: "Asha Nair", Email: "asha@worknest.local", Role: user.RoleEmployee}
	svc.LeaveApplied(context.Background(), applicant, testRequest())

	repo.mu.Lock()
	recipients := make(map[string]bool)
	for _, n := range repo.created {
		recipients[n.RecipientID] = true
		assert.Equal(t, notification.TypeLeaveApplied, n.Type)
	}
	repo.mu.Unlock()

	assert.True(t, recipients["mgr-1"])
	assert.True(t, recipients["hr-1"])
	assert.False(t, recipients["emp-1"], "applicant must not be notified of their own request")

	mailer.mu.Lock()
	assert.ElementsMatch(t, []string{"meera@worknest.local", "rohan@worknest.local"}, mailer.applied)
	mailer.mu.Unlock()
}

func TestService_LeaveDecision_ApprovalsCollapseIntoOneEmail(t *testing.T) {
	svc, _, mailer := testFixture()
	defer svc.Stop()

	applicant := user.User{ID: "emp-1", FullName: "Asha Nair", Email: "asha@worknest.local", Role: user.RoleEmployee}
	approver := user.User{ID: "mgr-1", FullName: "Meera Pillai", Role: user.RoleManager}

	// Three rapid day approvals within the delay window
	for i := 0; i < 3; i++ {
		svc.LeaveDecision(context.Background(), applicant, testRequest(), approver, leave.DayStatusApproved, "")
	}

	assert.Equal(t, 0, mailer.statusCount(), "email must not go out before the delay")

	require.Eventually(t, func() bool {
		return mailer.statusCount() == 1
	}, time.Second, 10*time.Millisecond, "exactly one collapsed email expected")

	// No stragglers after the window
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, mailer.statusCount())
}

func TestService_LeaveDecision_RejectionSendsImmediately(t *testing.T) {
	svc, _, mailer := testFixture()
	defer svc.Stop()

	applicant := user.User{ID: "emp-1", FullName: "Asha Nair", Email: "asha@worknest.local", Role: user.RoleEmployee}
	approver := user.User{ID: "mgr-1", FullName: "Meera Pillai", Role: user.RoleManager}

	// A pending approval email gets replaced by the rejection
	svc.LeaveDecision(context.Background(), applicant, testRequest(), approver, leave.DayStatusApproved, "")
	svc.LeaveDecision(context.Background(), applicant, testRequest(), approver, leave.DayStatusRejected, "coverage needed")

	require.Equal(t, 1, mailer.statusCount(), "rejection email must be immediate")

	mailer.mu.Lock()
	assert.Equal(t, "coverage needed", mailer.status[0].RejectionReason)
	mailer.mu.Unlock()

	// The cancelled approval timer must never fire
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, mailer.statusCount())
}

func TestService_LeaveConverted_SupersedesDeferredEmail(t *testing.T) {
	svc, _, mailer := testFixture()
	defer svc.Stop()

	applicant := user.User{ID: "emp-1", FullName: "Asha Nair", Email: "asha@worknest.local", Role: user.RoleEmployee}
	approver := user.User{ID: "hr-1", FullName: "Rohan Iyer", Role: user.RoleHR}

	lopRequest := testRequest()
	lopRequest.LeaveType = leave.LeaveTypeLOP
	svc.LeaveDecision(context.Background(), applicant, lopRequest, approver, leave.DayStatusApproved, "")

	// Conversion during the delay window sends the fresh state now
	converted := testRequest()
	converted.LeaveType = leave.LeaveTypeCasual
	svc.LeaveConverted(context.Background(), applicant, converted)

	require.Equal(t, 1, mailer.statusCount())
	mailer.mu.Lock()
	assert.Equal(t, string(leave.LeaveTypeCasual), mailer.status[0].LeaveType)
	mailer.mu.Unlock()

	// The deferred email armed before the conversion names the old
	// leave type and must never fire
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, mailer.statusCount())
}

func TestService_Stop_CancelsPendingEmails(t *testing.T) {
	svc, _, mailer := testFixture()

	applicant := user.User{ID: "emp-1", FullName: "Asha Nair", Email: "asha@worknest.local", Role: user.RoleEmployee}
	approver := user.User{ID: "mgr-1", FullName: "Meera Pillai", Role: user.RoleManager}

	svc.LeaveDecision(context.Background(), applicant, testRequest(), approver, leave.DayStatusApproved, "")
	svc.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, mailer.statusCount())
}
