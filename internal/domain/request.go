package domain

import (
	"fmt"
	"strings"
	"time"
)

// RequestStatus — закрытое множество статусов жизненного цикла заявки.
// Статус меняется только через движок (internal/lifecycle), напрямую его
// никто не трогает.
type RequestStatus string

const (
	StatusDraft                  RequestStatus = "Draft"
	StatusSubmittedToManager     RequestStatus = "SubmittedToManager"
	StatusApprovedByManager      RequestStatus = "ApprovedByManager"
	StatusRejectedByManager      RequestStatus = "RejectedByManager"
	StatusSubmittedToTravelAdmin RequestStatus = "SubmittedToTravelAdmin"
	StatusBookingInProgress      RequestStatus = "BookingInProgress"
	StatusBookingCompleted       RequestStatus = "BookingCompleted"
	StatusReturnedToEmployee     RequestStatus = "ReturnedToEmployee"
	StatusReturnedToManager      RequestStatus = "ReturnedToManager"
	StatusClosed                 RequestStatus = "Closed"
)

var requestStatuses = []RequestStatus{
	StatusDraft, StatusSubmittedToManager, StatusApprovedByManager,
	StatusRejectedByManager, StatusSubmittedToTravelAdmin, StatusBookingInProgress,
	StatusBookingCompleted, StatusReturnedToEmployee, StatusReturnedToManager,
	StatusClosed,
}

// ParseRequestStatus — единственная точка, где строка извне превращается в статус.
// Внутри движка статусы всегда типизированы.
func ParseRequestStatus(s string) (RequestStatus, error) {
	for _, st := range requestStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("unknown request status %q", s))
}

// BookingType классифицирует, что именно бронируем.
type BookingType string

const (
	BookingDomesticFlight      BookingType = "DomesticFlight"
	BookingInternationalFlight BookingType = "InternationalFlight"
	BookingHotel               BookingType = "Hotel"
	BookingFlightAndHotel      BookingType = "FlightAndHotel"
)

func ParseBookingType(s string) (BookingType, error) {
	for _, b := range []BookingType{BookingDomesticFlight, BookingInternationalFlight, BookingHotel, BookingFlightAndHotel} {
		if strings.EqualFold(s, string(b)) {
			return b, nil
		}
	}
	return "", NewValidationError("Invalid booking type")
}

type MealType string

const (
	MealLunch  MealType = "Lunch"
	MealDinner MealType = "Dinner"
	MealBoth   MealType = "Both"
)

func ParseMealType(s string) (MealType, error) {
	for _, m := range []MealType{MealLunch, MealDinner, MealBoth} {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("unknown meal type %q", s))
}

type MealPreference string

const (
	MealVeg    MealPreference = "Veg"
	MealNonVeg MealPreference = "NonVeg"
)

func ParseMealPreference(s string) (MealPreference, error) {
	for _, m := range []MealPreference{MealVeg, MealNonVeg} {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("unknown meal preference %q", s))
}

// TravelRequest — центральная сущность системы.
// Инварианты:
//   - RequestNumber присваивается один раз при создании и больше не меняется;
//   - Status всегда ровно один из закрытого множества;
//   - ManagerID проставляется только когда менеджер впервые принял решение
//     (approve/disapprove), а не при подаче;
//   - физически заявка не удаляется — только мягкий флаг IsDeleted + DeletedDate.
type TravelRequest struct {
	ID            string `json:"id"`
	RequestNumber string `json:"request_number"`

	// EmployeeID — владелец (пользователь, создавший заявку).
	// EmployeeCode — табельный номер, свободный текст из HR-систем.
	EmployeeID   string `json:"employee_id"`
	EmployeeCode string `json:"employee_code"`
	EmployeeName string `json:"employee_name"`

	ProjectName         string      `json:"project_name"`
	DepartmentName      string      `json:"department_name"`
	ReasonForTravelling string      `json:"reason_for_travelling"`
	TypeOfBooking       BookingType `json:"type_of_booking"`

	Status RequestStatus `json:"status"`

	AadharNumber   *string         `json:"aadhar_number,omitempty"`
	PassportNumber *string         `json:"passport_number,omitempty"`
	TravelDate     *time.Time      `json:"travel_date,omitempty"`
	DaysOfStay     *int            `json:"days_of_stay,omitempty"`
	MealRequired   *MealType       `json:"meal_required,omitempty"`
	MealPreference *MealPreference `json:"meal_preference,omitempty"`

	CreatedDate   time.Time  `json:"created_date"`
	SubmittedDate *time.Time `json:"submitted_date,omitempty"`
	ModifiedDate  *time.Time `json:"modified_date,omitempty"`

	// ManagerID — менеджер, принявший первое решение по заявке.
	ManagerID *string `json:"manager_id,omitempty"`

	DeletedDate *time.Time `json:"deleted_date,omitempty"`
	IsDeleted   bool       `json:"is_deleted"`
}
