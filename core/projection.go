package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// StandardProjection projects a publisher's remaining-season points from
// the projections of held games plus system-wide averages for empty slots.
type StandardProjection struct{}

func (StandardProjection) ProjectedPoints(publisher *Publisher, league *LeagueYear, averages SystemWideValues, asOf time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, rg := range publisher.Roster {
		total = total.Add(rg.ProjectedPoints())
	}

	emptyStandard := decimal.NewFromInt(int64(publisher.AvailableSlots(false)))
	emptyCounterPick := decimal.NewFromInt(int64(publisher.AvailableSlots(true)))
	total = total.Add(emptyStandard.Mul(averages.AverageStandardGamePoints))
	total = total.Add(emptyCounterPick.Mul(averages.AverageCounterPickPoints))

	return total
}
