package lifecycle

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/traveldesk/internal/domain"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestEngine(opts ...Option) *Engine {
	seq := 0
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%04d", seq)
		}),
	}
	return NewEngine(append(base, opts...)...)
}

func employee(id string) domain.Actor { return domain.Actor{ID: id, Role: domain.RoleEmployee} }
func manager(id string) domain.Actor  { return domain.Actor{ID: id, Role: domain.RoleManager} }

func draftRequest(owner string) domain.TravelRequest {
	travelDate := testNow.AddDate(0, 1, 0)
	return domain.TravelRequest{
		ID:            "req-1",
		RequestNumber: "TR-20240510-ABCD1234",
		EmployeeID:    owner,
		EmployeeCode:  "EMP-42",
		ProjectName:   "Orion",
		TypeOfBooking: domain.BookingDomesticFlight,
		Status:        domain.StatusDraft,
		TravelDate:    &travelDate,
		CreatedDate:   testNow.AddDate(0, 0, -1),
	}
}

func TestNewTravelRequest(t *testing.T) {
	e := newTestEngine()

	req, err := e.NewTravelRequest(domain.TravelRequest{
		EmployeeCode: "EMP-42",
		ProjectName:  "Orion",
	}, employee("u1"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDraft, req.Status)
	assert.Equal(t, "u1", req.EmployeeID)
	assert.NotEmpty(t, req.ID)
	assert.Regexp(t, `^TR-20240510-[0-9A-F]{8}$`, req.RequestNumber)
	assert.Nil(t, req.SubmittedDate)
	assert.Nil(t, req.ManagerID)
	assert.False(t, req.IsDeleted)
}

func TestNewTravelRequest_NonEmployee(t *testing.T) {
	e := newTestEngine()

	for _, role := range []domain.UserRole{domain.RoleManager, domain.RoleAdmin, domain.RoleHRTravelAdmin} {
		_, err := e.NewTravelRequest(domain.TravelRequest{}, domain.Actor{ID: "u1", Role: role})
		assert.True(t, domain.IsKind(err, domain.KindAuthorization), "role %s must not create requests", role)
	}
}

func TestSubmit_FromDraft(t *testing.T) {
	e := newTestEngine()
	req := draftRequest("u1")

	out, err := e.Submit(req, employee("u1"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSubmittedToManager, out.Request.Status)
	assert.Equal(t, domain.StatusDraft, out.PreviousStatus)
	assert.Equal(t, TransitionSubmit, out.Transition)
	assert.Equal(t, domain.RoleManager, out.NotifyRole)
	require.NotNil(t, out.Request.SubmittedDate)
	assert.Equal(t, testNow, *out.Request.SubmittedDate)
	assert.Nil(t, out.Comment)
}

func TestSubmit_FromReturned(t *testing.T) {
	e := newTestEngine()
	req := draftRequest("u1")
	req.Status = domain.StatusReturnedToEmployee

	out, err := e.Submit(req, employee("u1"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmittedToManager, out.Request.Status)
	assert.Equal(t, domain.StatusReturnedToEmployee, out.PreviousStatus)
}

func TestSubmit_WrongStatus(t *testing.T) {
	e := newTestEngine()

	for _, status := range []domain.RequestStatus{
		domain.StatusSubmittedToManager, domain.StatusApprovedByManager,
		domain.StatusRejectedByManager, domain.StatusBookingCompleted, domain.StatusClosed,
	} {
		req := draftRequest("u1")
		req.Status = status

		_, err := e.Submit(req, employee("u1"))
		require.Error(t, err, "status %s", status)
		assert.True(t, domain.IsKind(err, domain.KindInvalidState))
		assert.EqualError(t, err, "Only draft or returned requests can be submitted")
	}
}

func TestSubmit_MissingMandatoryFields(t *testing.T) {
	e := newTestEngine()

	mutations := map[string]func(*domain.TravelRequest){
		"employee code": func(r *domain.TravelRequest) { r.EmployeeCode = "" },
		"project name":  func(r *domain.TravelRequest) { r.ProjectName = "" },
		"travel date":   func(r *domain.TravelRequest) { r.TravelDate = nil },
	}

	for name, mutate := range mutations {
		req := draftRequest("u1")
		mutate(&req)

		_, err := e.Submit(req, employee("u1"))
		require.Error(t, err, "missing %s", name)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
		assert.EqualError(t, err, "All questions are mandatory to fill by the user")
	}
}

func TestSubmit_NotOwner(t *testing.T) {
	e := newTestEngine()
	req := draftRequest("u1")

	// Чужой сотрудник — отказ авторизации, не валидации
	_, err := e.Submit(req, employee("u2"))
	assert.True(t, domain.IsKind(err, domain.KindAuthorization))

	// Даже с пустыми обязательными полями гейт срабатывает первым
	req.ProjectName = ""
	_, err = e.Submit(req, employee("u2"))
	assert.True(t, domain.IsKind(err, domain.KindAuthorization))
}

func TestApprove(t *testing.T) {
	e := newTestEngine()
	req := draftRequest("u1")
	req.Status = domain.StatusSubmittedToManager

	out, err := e.Approve(req, manager("m1"), "Approved, have a safe trip")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusApprovedByManager, out.Request.Status)
	assert.Equal(t, domain.RoleHRTravelAdmin, out.NotifyRole)
	require.NotNil(t, out.Request.ManagerID)
	assert.Equal(t, "m1", *out.Request.ManagerID)
	require.NotNil(t, out.Request.ModifiedDate)

	require.NotNil(t, out.Comment)
	assert.Equal(t, "req-1", out.Comment.TravelRequestID)
	assert.Equal(t, "m1", out.Comment.UserID)
	assert.Equal(t, "Approved, have a safe trip", out.Comment.CommentText)
}

func TestApprove_BlankCommentBeatsEverything(t *testing.T) {
	e := newTestEngine()

	// Пустой комментарий — ошибка валидации независимо от статуса и актора
	req := draftRequest("u1")
	req.Status = domain.StatusClosed

	for _, comment := range []string{"", "   ", "\t\n"} {
		_, err := e.Approve(req, employee("u1"), comment)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
		assert.EqualError(t, err, "Comments cannot be left blank")
	}
}

func TestApprove_WrongStatus(t *testing.T) {
	e := newTestEngine()
	req := draftRequest("u1")

	_, err := e.Approve(req, manager("m1"), "ok")
	assert.True(t, domain.IsKind(err, domain.KindInvalidState))
	assert.EqualError(t, err, "Request must be in SubmittedToManager status")
}

func TestApprove_NotManager(t *testing.T) {
	e := newTestEngine()
	req := draftRequest("u1")
	req.Status = domain.StatusSubmittedToManager

	for _, actor := range []domain.Actor{
		employee("u1"),
		{ID: "h1", Role: domain.RoleHRTravelAdmin},
		{ID: "a1", Role: domain.RoleAdmin},
	} {
		_, err := e.Approve(req, actor, "ok")
		assert.True(t, domain.IsKind(err, domain.KindAuthorization), "role %s", actor.Role)
	}
}

func TestDisapprove_LaxMode(t *testing.T) {
	e := newTestEngine()

	// В нестрогом режиме статус не проверяется
	req := draftRequest("u1")
	req.Status = domain.StatusReturnedToEmployee

	out, err := e.Disapprove(req, manager("m1"), "Budget exceeded")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejectedByManager, out.Request.Status)
	assert.Equal(t, domain.StatusReturnedToEmployee, out.PreviousStatus)
	assert.Equal(t, domain.RoleEmployee, out.NotifyRole)
	require.NotNil(t, out.Comment)
}

func TestDisapprove_StrictMode(t *testing.T) {
	e := newTestEngine(WithStrictDisapprove(true))

	req := draftRequest("u1")
	_, err := e.Disapprove(req, manager("m1"), "no")
	assert.True(t, domain.IsKind(err, domain.KindInvalidState))

	req.Status = domain.StatusSubmittedToManager
	out, err := e.Disapprove(req, manager("m1"), "no")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejectedByManager, out.Request.Status)
}

func TestReturnToEmployee(t *testing.T) {
	e := newTestEngine()
	req := draftRequest("u1")
	req.Status = domain.StatusSubmittedToManager
	managerID := "m0"
	req.ManagerID = &managerID

	out, err := e.ReturnToEmployee(req, manager("m1"), "Please attach passport copy")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusReturnedToEmployee, out.Request.Status)
	assert.Equal(t, domain.RoleEmployee, out.NotifyRole)
	require.NotNil(t, out.Comment)

	// Возврат — не решение по существу: ManagerID не переназначается
	require.NotNil(t, out.Request.ManagerID)
	assert.Equal(t, "m0", *out.Request.ManagerID)
}

func TestReturnToEmployee_HRTravelAdmin(t *testing.T) {
	e := newTestEngine()
	req := draftRequest("u1")
	req.Status = domain.StatusSubmittedToTravelAdmin

	out, err := e.ReturnToEmployee(req, domain.Actor{ID: "h1", Role: domain.RoleHRTravelAdmin}, "Dates unavailable")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReturnedToEmployee, out.Request.Status)
}

func TestDelete(t *testing.T) {
	e := newTestEngine()
	req := draftRequest("u1")

	out, err := e.Delete(req, employee("u1"))
	require.NoError(t, err)

	assert.True(t, out.Request.IsDeleted)
	require.NotNil(t, out.Request.DeletedDate)
	assert.Equal(t, testNow, *out.Request.DeletedDate)
	// Статус при мягком удалении не меняется
	assert.Equal(t, domain.StatusDraft, out.Request.Status)
	// Удаление не порождает уведомлений
	assert.Empty(t, out.NotifyRole)
}

func TestDelete_NonDraft(t *testing.T) {
	e := newTestEngine()
	req := draftRequest("u1")
	req.Status = domain.StatusSubmittedToManager

	_, err := e.Delete(req, employee("u1"))
	assert.True(t, domain.IsKind(err, domain.KindInvalidState))
	assert.EqualError(t, err, "Only draft requests can be deleted")
}

func TestAddComment(t *testing.T) {
	e := newTestEngine()
	req := draftRequest("u1")
	req.Status = domain.StatusBookingInProgress

	out, err := e.AddComment(req, domain.Actor{ID: "h1", Role: domain.RoleHRTravelAdmin}, "Tickets booked")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusBookingInProgress, out.Request.Status)
	require.NotNil(t, out.Comment)
	assert.Equal(t, "Tickets booked", out.Comment.CommentText)
	assert.Empty(t, out.NotifyRole)
}

func TestAddComment_Blank(t *testing.T) {
	e := newTestEngine()
	req := draftRequest("u1")

	_, err := e.AddComment(req, employee("u1"), "   ")
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.EqualError(t, err, "Comment text cannot be empty")
}

func TestAddComment_Anonymous(t *testing.T) {
	e := newTestEngine()
	req := draftRequest("u1")

	_, err := e.AddComment(req, domain.Actor{}, "hello")
	assert.True(t, domain.IsKind(err, domain.KindAuthorization))
}

// Полный успешный маршрут: номер заявки не меняется ни на одном шаге.
func TestRequestNumberImmutableAcrossLifecycle(t *testing.T) {
	e := newTestEngine()
	req := draftRequest("u1")
	number := req.RequestNumber

	out, err := e.Submit(req, employee("u1"))
	require.NoError(t, err)
	assert.Equal(t, number, out.Request.RequestNumber)

	out, err = e.ReturnToEmployee(out.Request, manager("m1"), "fix dates")
	require.NoError(t, err)
	assert.Equal(t, number, out.Request.RequestNumber)

	out, err = e.Submit(out.Request, employee("u1"))
	require.NoError(t, err)
	assert.Equal(t, number, out.Request.RequestNumber)

	out, err = e.Approve(out.Request, manager("m1"), "ok")
	require.NoError(t, err)
	assert.Equal(t, number, out.Request.RequestNumber)
}

// Неуспешный вызов не должен менять вход: движок работает с копией.
func TestFailedTransitionLeavesInputUntouched(t *testing.T) {
	e := newTestEngine()
	req := draftRequest("u1")

	_, err := e.Approve(req, manager("m1"), "ok")
	require.Error(t, err)

	assert.Equal(t, domain.StatusDraft, req.Status)
	assert.Nil(t, req.ManagerID)
	assert.Nil(t, req.ModifiedDate)
}

// Повторный отказ на тех же аргументах — тот же отказ: в движке нет
// скрытого состояния, которое накапливалось бы между вызовами.
func TestFailedTransitionIsRepeatable(t *testing.T) {
	e := newTestEngine()

	attempts := []struct {
		name string
		call func() error
	}{
		{"approve from draft", func() error {
			_, err := e.Approve(draftRequest("u1"), manager("m1"), "ok")
			return err
		}},
		{"submit by stranger", func() error {
			_, err := e.Submit(draftRequest("u1"), employee("u2"))
			return err
		}},
		{"delete submitted", func() error {
			req := draftRequest("u1")
			req.Status = domain.StatusSubmittedToManager
			_, err := e.Delete(req, employee("u1"))
			return err
		}},
		{"blank comment", func() error {
			_, err := e.ReturnToEmployee(draftRequest("u1"), manager("m1"), "  ")
			return err
		}},
	}

	for _, tc := range attempts {
		t.Run(tc.name, func(t *testing.T) {
			first := tc.call()
			second := tc.call()
			require.Error(t, first)
			require.Error(t, second)
			assert.Equal(t, domain.KindOf(first), domain.KindOf(second))
			assert.Equal(t, first.Error(), second.Error())
		})
	}
}
