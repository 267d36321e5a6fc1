package services

import (
	"testing"
	"time"

	"gymsystem/models"
)

func TestDashboardStats(t *testing.T) {
	db := newTestDB(t)
	athleteSvc := NewAthleteService(db, nil)
	dashSvc := NewDashboardService(db)
	mustCreateShelf(t, db, "A-1")
	mustCreateShelf(t, db, "B-1")

	first := mustCreateAthlete(t, athleteSvc, CreateAthleteDTO{
		FullName: "Ahmad Rahimi",
		GymType:  "fitness",
		GymTime:  "morning",
		Discount: 100,
	})
	second := mustCreateAthlete(t, athleteSvc, CreateAthleteDTO{
		FullName: "Karim Noori",
		GymType:  "bodybuilding",
		GymTime:  "night",
	})

	// Регистрации: 900 + 700, продление: 700
	if _, err := athleteSvc.Renew(second.ID, RenewDTO{DurationDays: 30}); err != nil {
		t.Fatalf("не удалось продлить членство: %v", err)
	}
	if _, err := athleteSvc.ToggleStatus(first.ID); err != nil {
		t.Fatalf("не удалось переключить статус: %v", err)
	}

	stats, err := dashSvc.GetStats(time.Now())
	if err != nil {
		t.Fatalf("не удалось получить статистику: %v", err)
	}

	if stats.Stats.Total != 2 {
		t.Errorf("Total = %d, want 2", stats.Stats.Total)
	}
	if stats.Stats.Active != 1 {
		t.Errorf("Active = %d, want 1", stats.Stats.Active)
	}
	if stats.Stats.Inactive != 1 {
		t.Errorf("Inactive = %d, want 1", stats.Stats.Inactive)
	}
	if stats.Stats.Income != 2300 {
		t.Errorf("Income = %v, want 2300", stats.Stats.Income)
	}
	if stats.Stats.ShelvesTotal != 2 {
		t.Errorf("ShelvesTotal = %d, want 2", stats.Stats.ShelvesTotal)
	}
	if stats.Stats.ShelvesAvailable != 2 {
		t.Errorf("ShelvesAvailable = %d, want 2", stats.Stats.ShelvesAvailable)
	}

	// Все платежи сегодняшние: одна точка на графике
	if len(stats.Trends.Revenue) != 1 {
		t.Fatalf("точек графика: %d, want 1", len(stats.Trends.Revenue))
	}
	if stats.Trends.Revenue[0].Amount != 2300 {
		t.Errorf("Revenue[0].Amount = %v, want 2300", stats.Trends.Revenue[0].Amount)
	}
	wantMonth := time.Now().Month().String()[:3]
	if stats.Trends.Revenue[0].Name != wantMonth {
		t.Errorf("Revenue[0].Name = %s, want %s", stats.Trends.Revenue[0].Name, wantMonth)
	}

	// Неактивный атлет не попадает в распределения по типу и смене,
	// но учитывается в распределении по статусу
	wantType := map[string]int64{"Fitness": 0, "Bodybuilding": 1}
	for _, entry := range stats.Distributions.Type {
		if entry.Value != wantType[entry.Name] {
			t.Errorf("Type[%s] = %d, want %d", entry.Name, entry.Value, wantType[entry.Name])
		}
	}
	wantTime := map[string]int64{"Morning": 0, "Afternoon": 0, "Night": 1}
	for _, entry := range stats.Distributions.Time {
		if entry.Value != wantTime[entry.Name] {
			t.Errorf("Time[%s] = %d, want %d", entry.Name, entry.Value, wantTime[entry.Name])
		}
	}
	wantStatus := map[string]int64{"Active": 1, "Inactive": 1}
	for _, entry := range stats.Distributions.Status {
		if entry.Value != wantStatus[entry.Name] {
			t.Errorf("Status[%s] = %d, want %d", entry.Name, entry.Value, wantStatus[entry.Name])
		}
	}

	// Свежезарегистрированные атлеты не попадают в срочные уведомления
	if len(stats.Alerts) != 0 {
		t.Errorf("уведомлений: %d, want 0", len(stats.Alerts))
	}
}

func TestDashboardStatsEmpty(t *testing.T) {
	db := newTestDB(t)
	dashSvc := NewDashboardService(db)

	stats, err := dashSvc.GetStats(time.Now())
	if err != nil {
		t.Fatalf("не удалось получить статистику: %v", err)
	}

	if stats.Stats.Total != 0 {
		t.Errorf("Total = %d, want 0", stats.Stats.Total)
	}
	if stats.Stats.Income != 0 {
		t.Errorf("Income = %v, want 0", stats.Stats.Income)
	}
	if len(stats.Trends.Revenue) != 0 {
		t.Errorf("точек графика: %d, want 0", len(stats.Trends.Revenue))
	}
	if len(stats.Alerts) != 0 {
		t.Errorf("уведомлений: %d, want 0", len(stats.Alerts))
	}
}

func TestRevenueTrendGroupsByMonth(t *testing.T) {
	db := newTestDB(t)
	athleteSvc := NewAthleteService(db, nil)
	dashSvc := NewDashboardService(db)
	today := truncateToDay(time.Now())

	athlete := mustCreateAthlete(t, athleteSvc, CreateAthleteDTO{
		FullName: "Ahmad Rahimi",
		GymType:  "fitness",
		GymTime:  "morning",
	})

	// Переносим регистрационный платеж за пределы окна графика
	if err := db.Model(&models.Payment{}).
		Where("athlete_id = ?", athlete.ID).
		Update("payment_date", today.AddDate(0, 0, -(revenueTrendDays+1))).Error; err != nil {
		t.Fatal(err)
	}

	// Два платежа в разных месяцах внутри окна
	past := []struct {
		date   time.Time
		amount float64
	}{
		{today.AddDate(0, -2, 0), 500},
		{today.AddDate(0, -1, 0), 300},
		{today.AddDate(0, -1, 0), 200},
	}
	for _, p := range past {
		payment := &models.Payment{
			AthleteID:   athlete.ID,
			Amount:      p.amount,
			PaymentDate: p.date,
			PaymentType: models.PaymentTypeRenewal,
		}
		if err := db.Create(payment).Error; err != nil {
			t.Fatal(err)
		}
	}

	stats, err := dashSvc.GetStats(today)
	if err != nil {
		t.Fatalf("не удалось получить статистику: %v", err)
	}

	// Старый платеж остается в общем доходе, но не в графике
	if stats.Stats.Income != 2000 {
		t.Errorf("Income = %v, want 2000", stats.Stats.Income)
	}
	if len(stats.Trends.Revenue) != 2 {
		t.Fatalf("точек графика: %d, want 2", len(stats.Trends.Revenue))
	}
	if stats.Trends.Revenue[0].Amount != 500 {
		t.Errorf("Revenue[0].Amount = %v, want 500", stats.Trends.Revenue[0].Amount)
	}
	if stats.Trends.Revenue[1].Amount != 500 {
		t.Errorf("Revenue[1].Amount = %v, want 500", stats.Trends.Revenue[1].Amount)
	}
}

func TestCriticalAlertsOrder(t *testing.T) {
	db := newTestDB(t)
	athleteSvc := NewAthleteService(db, nil)
	dashSvc := NewDashboardService(db)
	today := truncateToDay(time.Now())

	fixtures := []struct {
		name      string
		remaining int
		active    bool
	}{
		{"Far Athlete", 10, true},
		{"Overdue Athlete", -2, true},
		{"Urgent Athlete", 1, true},
		{"Boundary Athlete", 3, true},
		{"Inactive Athlete", 1, false},
	}
	for _, f := range fixtures {
		created := mustCreateAthlete(t, athleteSvc, CreateAthleteDTO{
			FullName: f.name,
			GymType:  "fitness",
			GymTime:  "morning",
		})
		updates := map[string]interface{}{
			"fee_deadline_date": today.AddDate(0, 0, f.remaining),
			"is_active":         f.active,
		}
		if err := db.Model(&models.Athlete{}).Where("id = ?", created.ID).
			Updates(updates).Error; err != nil {
			t.Fatal(err)
		}
	}

	stats, err := dashSvc.GetStats(today)
	if err != nil {
		t.Fatalf("не удалось получить статистику: %v", err)
	}

	// Самые срочные первыми, неактивные и далекие исключены
	want := []string{"Overdue Athlete", "Urgent Athlete", "Boundary Athlete"}
	if len(stats.Alerts) != len(want) {
		t.Fatalf("уведомлений: %d, want %d", len(stats.Alerts), len(want))
	}
	for i, name := range want {
		if stats.Alerts[i].FullName != name {
			t.Errorf("Alerts[%d] = %s, want %s", i, stats.Alerts[i].FullName, name)
		}
	}
}
