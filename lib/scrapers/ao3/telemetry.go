package ao3

import (
	"ao3-scraper/lib/telemetry"
)

const (
	report_session_new    = "session.new"
	report_session_login  = "session.login"
	report_session_fetch  = "session.fetch"
	report_work_fetch     = "work.fetch"
	report_work_field     = "work.field"
	report_pager_fetch    = "pager.fetch"
	report_pager_entry    = "pager.entry"
	report_user_bookmarks = "user.bookmarks"
)

const tracerName = "ao3-scraper/lib/scrapers/ao3"

var tracer = telemetry.Tracer(tracerName)
