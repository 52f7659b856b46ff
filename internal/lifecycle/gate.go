package lifecycle

import "github.com/xela07ax/traveldesk/internal/domain"

// CanPerform — чистый предикат авторизации: может ли актор инициировать
// переход над данной заявкой. Детерминированная функция трех аргументов,
// без скрытого состояния — проверяется юнит-тестами отдельно от движка.
//
// Правила:
//   - submit/delete: только роль Employee и только владелец заявки;
//   - approve/disapprove: только роль Manager;
//   - return-to-employee: Manager или HRTravelAdmin;
//   - add-comment: любой аутентифицированный актор.
func CanPerform(actor domain.Actor, t Transition, req *domain.TravelRequest) bool {
	switch t {
	case TransitionSubmit, TransitionDelete:
		return actor.Role == domain.RoleEmployee && actor.IsOwnerOf(req)
	case TransitionApprove, TransitionDisapprove:
		return actor.Role == domain.RoleManager
	case TransitionReturnToEmployee:
		return actor.Role == domain.RoleManager || actor.Role == domain.RoleHRTravelAdmin
	case TransitionAddComment:
		return actor.ID != ""
	}
	return false
}
