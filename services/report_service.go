package services

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
)

// ReportService формирует XML-отчет по статистике панели для выгрузки
type ReportService struct{}

// NewReportService создает новый экземпляр ReportService
func NewReportService() *ReportService {
	return &ReportService{}
}

// BuildDashboardXML сериализует статистику панели в XML-документ
func (s *ReportService) BuildDashboardXML(stats *DashboardStats, today time.Time) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("dashboard")
	root.CreateAttr("date", truncateToDay(today).Format(dateLayout))

	// Итоговые счетчики
	counters := root.CreateElement("stats")
	counters.CreateElement("total").SetText(fmt.Sprintf("%d", stats.Stats.Total))
	counters.CreateElement("active").SetText(fmt.Sprintf("%d", stats.Stats.Active))
	counters.CreateElement("inactive").SetText(fmt.Sprintf("%d", stats.Stats.Inactive))
	counters.CreateElement("income").SetText(fmt.Sprintf("%.2f", stats.Stats.Income))
	counters.CreateElement("shelves_total").SetText(fmt.Sprintf("%d", stats.Stats.ShelvesTotal))
	counters.CreateElement("shelves_available").SetText(fmt.Sprintf("%d", stats.Stats.ShelvesAvailable))

	// График выручки
	revenue := root.CreateElement("revenue")
	for _, entry := range stats.Trends.Revenue {
		month := revenue.CreateElement("month")
		month.CreateAttr("name", entry.Name)
		month.SetText(fmt.Sprintf("%.2f", entry.Amount))
	}

	// Распределения
	distributions := root.CreateElement("distributions")
	appendDistribution(distributions, "type", stats.Distributions.Type)
	appendDistribution(distributions, "time", stats.Distributions.Time)
	appendDistribution(distributions, "status", stats.Distributions.Status)

	// Срочные уведомления
	alerts := root.CreateElement("alerts")
	for _, athlete := range stats.Alerts {
		entry := alerts.CreateElement("athlete")
		entry.CreateAttr("id", fmt.Sprintf("%d", athlete.ID))
		entry.CreateElement("full_name").SetText(athlete.FullName)
		entry.CreateElement("fee_deadline_date").SetText(athlete.FeeDeadlineDate)
		entry.CreateElement("days_left").SetText(fmt.Sprintf("%d", athlete.DaysLeft))
		entry.CreateElement("fee_status").SetText(athlete.FeeStatus)
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

// appendDistribution добавляет секцию распределения в документ
func appendDistribution(parent *etree.Element, name string, entries []DistributionEntry) {
	section := parent.CreateElement(name)
	for _, entry := range entries {
		el := section.CreateElement("entry")
		el.CreateAttr("name", entry.Name)
		el.SetText(fmt.Sprintf("%d", entry.Value))
	}
}
