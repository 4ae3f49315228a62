package controller

// ValidationError ошибка ввода, текст которой показывается пользователю как есть.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
