package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Ошибки бизнес-логики; контроллеры сопоставляют их со статусами HTTP
var (
	ErrValidation      = errors.New("ошибка валидации")
	ErrAthleteNotFound = errors.New("атлет не найден")
	ErrShelfNotFound   = errors.New("шкафчик не найден")
	ErrUserNotFound    = errors.New("пользователь не найден")
	ErrShelfConflict   = errors.New("шкафчик уже закреплен за другим атлетом")
	ErrShelfNumberBusy = errors.New("шкафчик с таким номером уже существует")
	ErrWrongPassword   = errors.New("неверный пароль")
)

// validateStruct валидирует DTO и возвращает ошибки валидации по полям
func validateStruct(v *validator.Validate, dto interface{}) error {
	if err := v.Struct(dto); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				errorMessages = append(errorMessages, "поле "+e.Field()+" обязательно")
			case "gt":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть больше "+e.Param())
			case "gte":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть больше или равно "+e.Param())
			case "min":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно содержать минимум "+e.Param()+" символов")
			case "max":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно содержать максимум "+e.Param()+" символов")
			case "oneof":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть одним из: "+e.Param())
			case "datetime":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть датой в формате "+e.Param())
			case "email":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть корректным email")
			default:
				errorMessages = append(errorMessages, "поле "+e.Field()+" заполнено неверно")
			}
		}
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(errorMessages, "; "))
	}
	return nil
}
