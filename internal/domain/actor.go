package domain

// Actor — аутентифицированная личность, вызывающая операцию.
// Не персистится: собирается на каждый вызов из JWT-клеймов.
// Отношения "владелец" и "назначенный менеджер" выводятся сравнением
// идентичности с полями заявки, отдельно они нигде не хранятся.
type Actor struct {
	ID   string
	Role UserRole
}

// IsOwnerOf — является ли актор владельцем заявки (создавшим её сотрудником).
func (a Actor) IsOwnerOf(req *TravelRequest) bool {
	return a.ID != "" && a.ID == req.EmployeeID
}

// IsAssignedManagerOf — является ли актор менеджером, записанным в заявку.
func (a Actor) IsAssignedManagerOf(req *TravelRequest) bool {
	return req.ManagerID != nil && a.ID == *req.ManagerID
}
