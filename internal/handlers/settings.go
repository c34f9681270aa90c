package handlers

import (
	"net/http"
	"time"

	"quillpress/internal/models"
)

// commonTimezones is the curated list offered by the timezone picker.
var commonTimezones = []string{
	"UTC",
	"Africa/Cairo", "Africa/Johannesburg", "Africa/Lagos", "Africa/Nairobi",
	"America/Anchorage", "America/Argentina/Buenos_Aires", "America/Bogota",
	"America/Chicago", "America/Denver", "America/Halifax", "America/Los_Angeles",
	"America/Mexico_City", "America/New_York", "America/Phoenix", "America/Sao_Paulo",
	"America/Toronto", "America/Vancouver",
	"Asia/Bangkok", "Asia/Dhaka", "Asia/Dubai", "Asia/Hong_Kong", "Asia/Jakarta",
	"Asia/Jerusalem", "Asia/Karachi", "Asia/Kolkata", "Asia/Manila", "Asia/Seoul",
	"Asia/Shanghai", "Asia/Singapore", "Asia/Taipei", "Asia/Tehran", "Asia/Tokyo",
	"Atlantic/Reykjavik",
	"Australia/Adelaide", "Australia/Brisbane", "Australia/Melbourne", "Australia/Perth",
	"Australia/Sydney",
	"Europe/Amsterdam", "Europe/Athens", "Europe/Berlin", "Europe/Brussels",
	"Europe/Bucharest", "Europe/Dublin", "Europe/Helsinki", "Europe/Istanbul",
	"Europe/Kyiv", "Europe/Lisbon", "Europe/London", "Europe/Madrid", "Europe/Moscow",
	"Europe/Paris", "Europe/Prague", "Europe/Rome", "Europe/Stockholm", "Europe/Vienna",
	"Europe/Warsaw", "Europe/Zurich",
	"Pacific/Auckland", "Pacific/Honolulu",
}

// Timezones returns the curated timezones this host can load.
func Timezones() []string {
	out := make([]string, 0, len(commonTimezones))
	for _, tz := range commonTimezones {
		if _, err := time.LoadLocation(tz); err == nil {
			out = append(out, tz)
		}
	}
	return out
}

// SettingsGet returns the site settings. The admin email is only shown to
// staff.
func (a *API) SettingsGet(w http.ResponseWriter, r *http.Request) {
	st, err := a.settings.Get(r.Context())
	if err != nil {
		writeStoreError(w, r, "get settings", err)
		return
	}
	if !isStaff(r) {
		st.AdminEmail = ""
	}
	writeData(w, http.StatusOK, st)
}

// SettingsUpdate applies a partial update after validation.
func (a *API) SettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var p models.SiteSettingsPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if errs := ValidateSettings(p); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	st, err := a.settings.Update(r.Context(), p)
	if err != nil {
		writeStoreError(w, r, "update settings", err)
		return
	}
	writeData(w, http.StatusOK, st)
}

// SettingsReset restores every setting to its default.
func (a *API) SettingsReset(w http.ResponseWriter, r *http.Request) {
	st, err := a.settings.Reset(r.Context())
	if err != nil {
		writeStoreError(w, r, "reset settings", err)
		return
	}
	writeData(w, http.StatusOK, st)
}

// SettingsValidate checks a patch without saving it.
func (a *API) SettingsValidate(w http.ResponseWriter, r *http.Request) {
	var p models.SiteSettingsPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	errs := ValidateSettings(p)
	writeData(w, http.StatusOK, map[string]any{"valid": len(errs) == 0, "errors": errs})
}

// SettingsTimezones lists the selectable timezones.
func (a *API) SettingsTimezones(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, Timezones())
}
