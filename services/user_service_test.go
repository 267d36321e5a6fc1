package services

import (
	"errors"
	"testing"

	"gymsystem/database"
	"gymsystem/models"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(&database.Database{DB: newTestDB(t)})
}

func TestEnsureAdmin(t *testing.T) {
	svc := newUserService(t)

	if err := svc.EnsureAdmin("admin@gym.local", "secret-password"); err != nil {
		t.Fatalf("не удалось создать администратора: %v", err)
	}

	user, err := svc.FindByEmail("admin@gym.local")
	if err != nil {
		t.Fatalf("администратор не найден: %v", err)
	}
	if !svc.VerifyPassword(user, "secret-password") {
		t.Error("пароль администратора не проходит проверку")
	}
	// Пароль хранится только в виде хеша
	if user.Password == "secret-password" {
		t.Error("пароль сохранен открытым текстом")
	}

	// Повторный вызов не создает второго пользователя
	if err := svc.EnsureAdmin("other@gym.local", "another-password"); err != nil {
		t.Fatalf("повторный вызов завершился ошибкой: %v", err)
	}
	var count int64
	svc.db.DB.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Errorf("users count = %d, want 1", count)
	}
}

func TestFindByEmailIgnoresCase(t *testing.T) {
	svc := newUserService(t)

	if err := svc.EnsureAdmin("admin@gym.local", "secret-password"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.FindByEmail("  ADMIN@gym.local "); err != nil {
		t.Errorf("поиск с другим регистром и пробелами: %v", err)
	}
	if _, err := svc.FindByEmail("missing@gym.local"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := newUserService(t)

	if err := svc.EnsureAdmin("admin@gym.local", "secret-password"); err != nil {
		t.Fatal(err)
	}
	user, err := svc.FindByEmail("admin@gym.local")
	if err != nil {
		t.Fatal(err)
	}

	// Неверный старый пароль ничего не меняет
	if err := svc.ChangePassword(user.ID, "wrong-password", "new-password"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("err = %v, want ErrWrongPassword", err)
	}
	user, _ = svc.FindByEmail("admin@gym.local")
	if !svc.VerifyPassword(user, "secret-password") {
		t.Error("старый пароль перестал работать после отклоненной смены")
	}

	if err := svc.ChangePassword(user.ID, "secret-password", "new-password"); err != nil {
		t.Fatalf("не удалось сменить пароль: %v", err)
	}
	user, _ = svc.FindByEmail("admin@gym.local")
	if !svc.VerifyPassword(user, "new-password") {
		t.Error("новый пароль не проходит проверку")
	}
	if svc.VerifyPassword(user, "secret-password") {
		t.Error("старый пароль все еще проходит проверку")
	}
}
