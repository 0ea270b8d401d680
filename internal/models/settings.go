package models

// Settings represents user-level settings stored alongside the data
type Settings struct {
	Timezone    string `json:"timezone"`      // IANA timezone name (e.g. "America/New_York", or "Local" for system timezone)
	StartOfWeek int    `json:"start_of_week"` // 0 = Sunday, 1 = Monday
}
