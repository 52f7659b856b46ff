package domain

import "errors"

// ErrorKind классифицирует ожидаемые отказы бизнес-логики.
// Все они — нормальные исходы для вызывающей стороны, а не аварии:
// хендлер отображает их в HTTP-коды, движок никогда не делает retry.
type ErrorKind int

const (
	KindValidation    ErrorKind = iota + 1 // пустой комментарий, незаполненные поля
	KindAuthorization                      // роль или владение не подходят
	KindInvalidState                       // переход нелегален из текущего статуса
	KindNotFound                           // заявка неизвестна или удалена
	KindConflict                           // конкурентная модификация (проиграли гонку)
)

// Error — типизированный отказ с человекочитаемым правилом, которое нарушено.
// Message показывается пользователю как есть, поэтому пишем его внятно
// ("only draft or returned requests can be submitted"), без внутренних деталей.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func NewValidationError(msg string) *Error    { return &Error{Kind: KindValidation, Message: msg} }
func NewAuthorizationError(msg string) *Error { return &Error{Kind: KindAuthorization, Message: msg} }
func NewInvalidStateError(msg string) *Error  { return &Error{Kind: KindInvalidState, Message: msg} }
func NewNotFoundError(msg string) *Error      { return &Error{Kind: KindNotFound, Message: msg} }
func NewConflictError(msg string) *Error      { return &Error{Kind: KindConflict, Message: msg} }

// IsKind проверяет классификацию ошибки сквозь цепочку оберток %w.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}

// KindOf возвращает классификацию или 0, если ошибка инфраструктурная (не наша).
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}
