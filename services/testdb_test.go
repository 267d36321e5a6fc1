package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gymsystem/models"
)

// newTestDB создает изолированную in-memory базу для теста
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("не удалось открыть тестовую базу: %v", err)
	}

	// Одно соединение, чтобы все запросы видели одну in-memory базу
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("не удалось получить пул соединений: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Shelf{},
		&models.Athlete{},
		&models.Payment{},
	); err != nil {
		t.Fatalf("не удалось выполнить миграцию тестовой базы: %v", err)
	}

	return db
}

// checkShelfInvariant проверяет двустороннюю согласованность закреплений:
// статус assigned строго эквивалентен наличию обратной ссылки, и ссылки
// атлета и шкафчика указывают друг на друга
func checkShelfInvariant(t *testing.T, db *gorm.DB) {
	t.Helper()

	var shelves []models.Shelf
	if err := db.Find(&shelves).Error; err != nil {
		t.Fatalf("не удалось получить шкафчики: %v", err)
	}

	for _, shelf := range shelves {
		assigned := shelf.Status == models.ShelfStatusAssigned
		hasAthlete := shelf.AssignedAthleteID != nil
		if assigned != hasAthlete {
			t.Errorf("шкафчик %d: status=%s, assigned_athlete_id=%v", shelf.ID, shelf.Status, shelf.AssignedAthleteID)
		}

		if hasAthlete {
			var athlete models.Athlete
			if err := db.First(&athlete, *shelf.AssignedAthleteID).Error; err != nil {
				t.Errorf("шкафчик %d ссылается на несуществующего атлета %d", shelf.ID, *shelf.AssignedAthleteID)
				continue
			}
			if athlete.ShelfID == nil || *athlete.ShelfID != shelf.ID {
				t.Errorf("атлет %d не ссылается обратно на шкафчик %d", athlete.ID, shelf.ID)
			}
		} else {
			// Освобожденный шкафчик не хранит параметры аренды
			if shelf.DurationMonths != nil || shelf.Price != nil || shelf.StartDate != nil || shelf.EndDate != nil {
				t.Errorf("свободный шкафчик %d хранит параметры аренды", shelf.ID)
			}
		}
	}

	var athletes []models.Athlete
	if err := db.Find(&athletes).Error; err != nil {
		t.Fatalf("не удалось получить атлетов: %v", err)
	}
	for _, athlete := range athletes {
		if athlete.ShelfID == nil {
			continue
		}
		var shelf models.Shelf
		if err := db.First(&shelf, *athlete.ShelfID).Error; err != nil {
			t.Errorf("атлет %d ссылается на несуществующий шкафчик %d", athlete.ID, *athlete.ShelfID)
			continue
		}
		if shelf.AssignedAthleteID == nil || *shelf.AssignedAthleteID != athlete.ID {
			t.Errorf("шкафчик %d не ссылается обратно на атлета %d", shelf.ID, athlete.ID)
		}
	}
}
