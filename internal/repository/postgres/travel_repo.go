package postgres

/*
Файл travel_repo.go — хранение заявок и комментариев.

Ключевой метод — SaveOutcome: он фиксирует результат перехода конечного
автомата одной транзакцией и защищает от гонки двух взаимоисключающих
решений условием WHERE status = <статус, который видел движок>.
Проигравший гонку получает типизированный ConflictError.
*/

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/xela07ax/traveldesk/internal/domain"
	"github.com/xela07ax/traveldesk/internal/lifecycle"
)

const travelRequestColumns = `
	id, request_number, employee_id, employee_code, employee_name,
	project_name, department_name, reason_for_travelling, type_of_booking,
	status, aadhar_number, passport_number, travel_date, days_of_stay,
	meal_required, meal_preference, created_date, submitted_date,
	modified_date, manager_id, deleted_date, is_deleted`

// GetTravelRequest возвращает заявку по ID. Мягко удаленные не видны —
// для вызывающего это NotFound.
func (r *Repo) GetTravelRequest(ctx context.Context, id string) (*domain.TravelRequest, error) {
	query := `SELECT ` + travelRequestColumns + `
	          FROM travel_requests WHERE id = $1 AND is_deleted = false`

	req, err := scanTravelRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("Travel request not found")
		}
		return nil, fmt.Errorf("postgres: query travel request: %w", err)
	}
	return req, nil
}

// CreateTravelRequest вставляет новую заявку (статус Draft, номер уже присвоен).
func (r *Repo) CreateTravelRequest(ctx context.Context, req *domain.TravelRequest) error {
	query := `
		INSERT INTO travel_requests (` + travelRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22)`

	_, err := r.pool.Exec(ctx, query,
		req.ID, req.RequestNumber, req.EmployeeID, req.EmployeeCode, req.EmployeeName,
		req.ProjectName, req.DepartmentName, req.ReasonForTravelling, req.TypeOfBooking,
		req.Status, req.AadharNumber, req.PassportNumber, req.TravelDate, req.DaysOfStay,
		req.MealRequired, req.MealPreference, req.CreatedDate, req.SubmittedDate,
		req.ModifiedDate, req.ManagerID, req.DeletedDate, req.IsDeleted,
	)
	if err != nil {
		return fmt.Errorf("postgres: create travel request: %w", err)
	}
	return nil
}

// SaveOutcome атомарно сохраняет результат перехода: обновление заявки и
// (если есть) прикрепленный комментарий — одной транзакцией.
//
// Условие AND status = <предыдущий статус> гарантирует, что из двух
// конкурентных взаимоисключающих переходов (например, approve и disapprove
// из SubmittedToManager) выигрывает ровно один; проигравший получает
// ConflictError, потому что проверенное движком предусловие уже не истинно.
func (r *Repo) SaveOutcome(ctx context.Context, out *lifecycle.Outcome) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // после Commit откат — no-op

	req := &out.Request
	tag, err := tx.Exec(ctx, `
		UPDATE travel_requests
		SET status = $1,
		    submitted_date = $2,
		    modified_date = $3,
		    manager_id = $4,
		    is_deleted = $5,
		    deleted_date = $6
		WHERE id = $7 AND status = $8 AND is_deleted = false`,
		req.Status, req.SubmittedDate, req.ModifiedDate, req.ManagerID,
		req.IsDeleted, req.DeletedDate,
		req.ID, out.PreviousStatus,
	)
	if err != nil {
		return fmt.Errorf("postgres: update travel request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Либо заявки нет, либо (чаще) кто-то успел изменить статус раньше нас
		return domain.NewConflictError("Travel request was modified concurrently")
	}

	if out.Comment != nil {
		c := out.Comment
		_, err = tx.Exec(ctx, `
			INSERT INTO comments (id, travel_request_id, user_id, comment_text, created_date, is_deleted)
			VALUES ($1, $2, $3, $4, $5, false)`,
			c.ID, c.TravelRequestID, c.UserID, c.CommentText, c.CreatedDate,
		)
		if err != nil {
			return fmt.Errorf("postgres: insert comment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit outcome: %w", err)
	}
	return nil
}

// ListTravelRequestsByEmployee — заявки владельца, новые сверху.
func (r *Repo) ListTravelRequestsByEmployee(ctx context.Context, employeeID string) ([]*domain.TravelRequest, error) {
	query := `SELECT ` + travelRequestColumns + `
	          FROM travel_requests
	          WHERE employee_id = $1 AND is_deleted = false
	          ORDER BY created_date DESC`
	return r.listTravelRequests(ctx, query, employeeID)
}

// ListTravelRequestsByStatus — очередь на рассмотрение (например,
// SubmittedToManager для менеджеров).
func (r *Repo) ListTravelRequestsByStatus(ctx context.Context, status domain.RequestStatus) ([]*domain.TravelRequest, error) {
	query := `SELECT ` + travelRequestColumns + `
	          FROM travel_requests
	          WHERE status = $1 AND is_deleted = false
	          ORDER BY submitted_date DESC NULLS LAST`
	return r.listTravelRequests(ctx, query, status)
}

func (r *Repo) listTravelRequests(ctx context.Context, query string, args ...interface{}) ([]*domain.TravelRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query travel requests: %w", err)
	}
	defer rows.Close()

	// Пустой слайс, чтобы в JSON ушел [] вместо null
	results := make([]*domain.TravelRequest, 0)
	for rows.Next() {
		req, err := scanTravelRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan travel request: %w", err)
		}
		results = append(results, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return results, nil
}

// ListComments — комментарии заявки с именем автора, новые сверху.
func (r *Repo) ListComments(ctx context.Context, travelRequestID string) ([]*domain.Comment, error) {
	query := `
		SELECT c.id, c.travel_request_id, c.user_id, c.comment_text, c.created_date,
		       u.first_name || ' ' || u.last_name AS author_name
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.travel_request_id = $1 AND c.is_deleted = false
		ORDER BY c.created_date DESC`

	rows, err := r.pool.Query(ctx, query, travelRequestID)
	if err != nil {
		return nil, fmt.Errorf("postgres: query comments: %w", err)
	}
	defer rows.Close()

	results := make([]*domain.Comment, 0)
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TravelRequestID, &c.UserID, &c.CommentText, &c.CreatedDate, &c.AuthorName); err != nil {
			return nil, fmt.Errorf("postgres: scan comment: %w", err)
		}
		results = append(results, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return results, nil
}

// rowScanner покрывает и pgx.Row, и pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTravelRequest(row rowScanner) (*domain.TravelRequest, error) {
	var (
		req            domain.TravelRequest
		aadhar         sql.NullString
		passport       sql.NullString
		travelDate     sql.NullTime
		daysOfStay     sql.NullInt32
		mealRequired   sql.NullString
		mealPreference sql.NullString
		submittedDate  sql.NullTime
		modifiedDate   sql.NullTime
		managerID      sql.NullString
		deletedDate    sql.NullTime
	)

	err := row.Scan(
		&req.ID, &req.RequestNumber, &req.EmployeeID, &req.EmployeeCode, &req.EmployeeName,
		&req.ProjectName, &req.DepartmentName, &req.ReasonForTravelling, &req.TypeOfBooking,
		&req.Status, &aadhar, &passport, &travelDate, &daysOfStay,
		&mealRequired, &mealPreference, &req.CreatedDate, &submittedDate,
		&modifiedDate, &managerID, &deletedDate, &req.IsDeleted,
	)
	if err != nil {
		return nil, err
	}

	// Маппим NULL из базы в указатели
	if aadhar.Valid {
		req.AadharNumber = &aadhar.String
	}
	if passport.Valid {
		req.PassportNumber = &passport.String
	}
	if travelDate.Valid {
		req.TravelDate = &travelDate.Time
	}
	if daysOfStay.Valid {
		days := int(daysOfStay.Int32)
		req.DaysOfStay = &days
	}
	if mealRequired.Valid {
		m := domain.MealType(mealRequired.String)
		req.MealRequired = &m
	}
	if mealPreference.Valid {
		m := domain.MealPreference(mealPreference.String)
		req.MealPreference = &m
	}
	if submittedDate.Valid {
		req.SubmittedDate = &submittedDate.Time
	}
	if modifiedDate.Valid {
		req.ModifiedDate = &modifiedDate.Time
	}
	if managerID.Valid {
		req.ManagerID = &managerID.String
	}
	if deletedDate.Valid {
		req.DeletedDate = &deletedDate.Time
	}

	return &req, nil
}
