package reporting

import (
	"fmt"
	"strings"
	"time"

	"bagger-lab/internal/domain"
)

// RenderCSV renders flattened results as CSV string, one row per ticker in input order.
func RenderCSV(rows []*domain.ResultRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("ticker,start_date,final_date,start_price,final_price,total_days,")
	sb.WriteString("current_state,current_return_multiple,max_return_multiple,max_price,max_date,days_to_peak,")
	sb.WriteString("first_10x_date,first_100x_date,last_10x_date,last_100x_date,")
	sb.WriteString("max_drawdown,max_drawdown_date,")
	sb.WriteString("current_streak_state,current_streak_days,current_streak_start_date,")
	sb.WriteString("days_as_no_bagger,days_as_multibagger,days_as_hundred_bagger,days_as_fallen_multibagger,days_as_fallen_hundred_bagger,")
	sb.WriteString("milestones_hit,transitions_count,first_2x_date,first_5x_date,days_above_10x,days_above_100x\n")

	// Rows
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%.6f,%.6f,%d,",
			r.Ticker,
			formatDate(r.StartDate),
			formatDate(r.FinalDate),
			r.StartPrice,
			r.FinalPrice,
			r.TotalDays,
		))
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f,%s,%d,",
			r.CurrentState,
			r.CurrentReturnMultiple,
			r.MaxReturnMultiple,
			r.MaxPrice,
			formatDate(r.MaxDate),
			r.DaysToPeak,
		))
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,",
			formatDatePtr(r.First10xDate),
			formatDatePtr(r.First100xDate),
			formatDatePtr(r.Last10xDate),
			formatDatePtr(r.Last100xDate),
		))
		sb.WriteString(fmt.Sprintf("%.6f,%s,", r.MaxDrawdown, formatDate(r.MaxDrawdownDate)))
		sb.WriteString(fmt.Sprintf("%s,%d,%s,",
			r.CurrentStreakState,
			r.CurrentStreakDays,
			formatDate(r.CurrentStreakStartDate),
		))
		sb.WriteString(fmt.Sprintf("%d,%d,%d,%d,%d,",
			r.DaysAsNoBagger,
			r.DaysAsMultibagger,
			r.DaysAsHundredBagger,
			r.DaysAsFallenMultibagger,
			r.DaysAsFallenHundredBagger,
		))
		sb.WriteString(fmt.Sprintf("%d,%d,%s,%s,%d,%d\n",
			r.MilestonesHit,
			r.TransitionsCount,
			formatDatePtr(r.First2xDate),
			formatDatePtr(r.First5xDate),
			r.DaysAbove10x,
			r.DaysAbove100x,
		))
	}

	return sb.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

// formatDatePtr renders a nullable date as empty when nil.
func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}
