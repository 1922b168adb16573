package marketcalendar

// Trading holidays for BSE/NSE. Static, versioned list refreshed out of band
// once the exchange publishes next year's calendar.
var holidayDates = []string{
	// 2025
	"2025-01-26", // Republic Day
	"2025-03-14", // Holi
	"2025-03-31", // Id-Ul-Fitr
	"2025-04-10", // Mahavir Jayanti
	"2025-04-14", // Dr. Ambedkar Jayanti
	"2025-04-18", // Good Friday
	"2025-05-01", // Maharashtra Day
	"2025-06-07", // Id-Ul-Adha (Bakri Id)
	"2025-07-07", // Muharram
	"2025-08-15", // Independence Day
	"2025-08-27", // Ganesh Chaturthi
	"2025-10-02", // Mahatma Gandhi Jayanti
	"2025-10-12", // Dussehra
	"2025-10-20", // Diwali Laxmi Pujan
	"2025-10-21", // Diwali Balipratipada
	"2025-11-05", // Guru Nanak Jayanti
	"2025-12-25", // Christmas
	// 2026
	"2026-01-26", // Republic Day
	"2026-03-03", // Holi
	"2026-03-21", // Id-Ul-Fitr
	"2026-03-31", // Mahavir Jayanti
	"2026-04-03", // Good Friday
	"2026-04-14", // Dr. Ambedkar Jayanti
	"2026-05-01", // Maharashtra Day
	"2026-05-27", // Id-Ul-Adha (Bakri Id)
	"2026-06-16", // Muharram
	"2026-08-15", // Independence Day
	"2026-09-14", // Ganesh Chaturthi
	"2026-10-02", // Mahatma Gandhi Jayanti
	"2026-10-20", // Dussehra
	"2026-11-08", // Diwali Laxmi Pujan
	"2026-11-09", // Diwali Balipratipada
	"2026-11-24", // Guru Nanak Jayanti
	"2026-12-25", // Christmas
}

func tradingHolidays() map[string]struct{} {
	set := make(map[string]struct{}, len(holidayDates))
	for _, d := range holidayDates {
		set[d] = struct{}{}
	}
	return set
}
