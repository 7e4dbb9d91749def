package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenNotYetValid     = fmt.Errorf("токен ещё не активен")
	ErrTokenIsNotRefresh    = fmt.Errorf("токен не является refresh-токеном")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrUnauthorized       = fmt.Errorf("неавторизован")
	ErrForbidden          = fmt.Errorf("доступ запрещён")
	ErrAccountLocked      = fmt.Errorf("учётная запись временно заблокирована")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")
	ErrUserNotFound            = fmt.Errorf("пользователь не найден")

	// Общие
	ErrNotFound       = fmt.Errorf("запись не найдена")
	ErrBadRequest     = fmt.Errorf("неверный запрос")
	ErrConflict       = fmt.Errorf("запись с такими данными уже существует")
	ErrReferenced     = fmt.Errorf("запись используется в других данных")
	ErrInternalServer = fmt.Errorf("внутренняя ошибка сервера")

	// Рабочий процесс заявки
	ErrInvalidTransition = fmt.Errorf("недопустимый переход статуса заявки")
	ErrAlreadyDecided    = fmt.Errorf("решение по записи уже принято")
)

// HttpError несёт код ответа, сообщение для клиента и внутреннюю ошибку для логов.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

func NewBadRequestError(message string) *HttpError {
	return &HttpError{Code: http.StatusBadRequest, Message: message, Err: ErrBadRequest}
}

// NewTransitionError оборачивает ErrInvalidTransition с текущим и целевым статусом.
func NewTransitionError(requestID uint64, from, to string) *HttpError {
	return &HttpError{
		Code:    http.StatusConflict,
		Message: fmt.Sprintf("Заявка #%d: переход из '%s' в '%s' недопустим", requestID, from, to),
		Err:     ErrInvalidTransition,
		Context: map[string]interface{}{"request_id": requestID, "from": from, "to": to},
	}
}

// StatusCode сопоставляет известные ошибки с HTTP-кодами.
func StatusCode(err error) (int, bool) {
	switch {
	case is(err, ErrNotFound), is(err, ErrUserNotFound):
		return http.StatusNotFound, true
	case is(err, ErrInvalidCredentials), is(err, ErrUnauthorized), is(err, ErrEmptyAuthHeader),
		is(err, ErrInvalidAuthHeader), is(err, ErrInvalidToken), is(err, ErrTokenExpired),
		is(err, ErrTokenNotYetValid), is(err, ErrTokenIsNotRefresh), is(err, ErrTokenIsNotAccess),
		is(err, ErrInvalidSigningMethod), is(err, ErrUserIDNotFoundInContext):
		return http.StatusUnauthorized, true
	case is(err, ErrForbidden):
		return http.StatusForbidden, true
	case is(err, ErrAccountLocked):
		return http.StatusTooManyRequests, true
	case is(err, ErrConflict), is(err, ErrReferenced), is(err, ErrInvalidTransition), is(err, ErrAlreadyDecided):
		return http.StatusConflict, true
	case is(err, ErrBadRequest):
		return http.StatusBadRequest, true
	}
	return 0, false
}

func is(err, target error) bool { return stderrors.Is(err, target) }
