package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/FrankLong1/eia-data/internal/analysis"
	"github.com/FrankLong1/eia-data/internal/timeseries"
)

// DemandHour is a persisted cleaned hourly observation.
type DemandHour struct {
	BA        string
	TS        time.Time
	DemandMW  decimal.Decimal
	CreatedAt time.Time
}

// DemandHourFromRecord converts an in-memory record for persistence.
func DemandHourFromRecord(r timeseries.HourlyRecord) DemandHour {
	return DemandHour{
		BA:       r.BA,
		TS:       r.Timestamp.UTC(),
		DemandMW: decimal.NewFromFloat(r.DemandMW),
	}
}

// Record converts a persisted row back to the in-memory shape.
func (d DemandHour) Record() timeseries.HourlyRecord {
	return timeseries.HourlyRecord{BA: d.BA, Timestamp: d.TS, DemandMW: d.DemandMW.InexactFloat64()}
}

// HeadroomResult is one persisted (BA, target rate) analysis outcome.
type HeadroomResult struct {
	ID                    int64
	BA                    string
	TargetRate            decimal.Decimal
	LoadAdditionMW        decimal.Decimal
	CurtailmentRate       decimal.Decimal
	TotalCurtailmentMWh   decimal.Decimal
	CurtailedHours        int
	AvgEventDurationHours decimal.Decimal
	MaxEventDurationHours int
	AvgLoadRetention      decimal.Decimal
	SummerCurtailedHours  int
	WinterCurtailedHours  int
	LoadFactor            decimal.Decimal
	SummerPeakMW          decimal.Decimal
	WinterPeakMW          decimal.Decimal
	CreatedAt             time.Time
}

// ResultFromMetrics converts an analysis row for persistence.
func ResultFromMetrics(m analysis.Metrics) HeadroomResult {
	return HeadroomResult{
		BA:                    m.BA,
		TargetRate:            decimal.NewFromFloat(m.TargetRate),
		LoadAdditionMW:        decimal.NewFromFloat(m.LoadAdditionMW),
		CurtailmentRate:       decimal.NewFromFloat(m.CurtailmentRate),
		TotalCurtailmentMWh:   decimal.NewFromFloat(m.TotalCurtailmentMWh),
		CurtailedHours:        m.CurtailedHours,
		AvgEventDurationHours: decimal.NewFromFloat(m.AvgEventDurationHours),
		MaxEventDurationHours: m.MaxEventDurationHours,
		AvgLoadRetention:      decimal.NewFromFloat(m.AvgLoadRetention),
		SummerCurtailedHours:  m.Seasonal.SummerHours,
		WinterCurtailedHours:  m.Seasonal.WinterHours,
		LoadFactor:            decimal.NewFromFloat(m.LoadFactor),
		SummerPeakMW:          decimal.NewFromFloat(m.SummerPeakMW),
		WinterPeakMW:          decimal.NewFromFloat(m.WinterPeakMW),
	}
}
