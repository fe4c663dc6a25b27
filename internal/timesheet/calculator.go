package timesheet

// ComputeDayHours turns one day's raw fields into a worked-hours value.
// Pure: identical inputs always yield identical output.
//
// A non-Regular day contributes the policy's fixed default regardless of any
// stray time values. For a Regular day, an end time earlier than the start
// models a shift crossing midnight and wraps by a full day. The lunch
// interval is subtracted without clamping; a negative lunch duration is a
// validation concern, not corrected here.
func ComputeDayHours(entry DayEntry, policy Policy) float64 {
	if !entry.DayType.IsRegular() {
		return policy.DefaultHoursFor(entry.DayType)
	}

	if entry.StartTime == nil || entry.EndTime == nil {
		return 0
	}

	worked := entry.EndTime.Minutes() - entry.StartTime.Minutes()
	if worked < 0 {
		worked += minutesPerDay
	}

	if entry.LunchStartTime != nil && entry.LunchEndTime != nil {
		worked -= entry.LunchEndTime.Minutes() - entry.LunchStartTime.Minutes()
	}

	if worked < 0 {
		worked = 0
	}
	return float64(worked) / 60
}

// RecalculateWeek recomputes each day's hours and the derived week total,
// which is the sum of day hours plus the manual extra-hours adjustment.
func RecalculateWeek(week *WeekEntry, policy Policy) {
	total := week.ExtraHours
	for i := range week.Days {
		week.Days[i].TotalHours = ComputeDayHours(week.Days[i], policy)
		total += week.Days[i].TotalHours
	}
	week.TotalHours = total
}
