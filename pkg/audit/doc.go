// Package audit records security-relevant account activity: logins, failed
// logins, logouts, registrations and administrative changes to users.
//
// Loggers compose. A typical production setup fans out to a JSON lines file
// and the audit_events table, behind an asynchronous queue:
//
//	file, _ := audit.NewFileLogger("/var/log/shopadmin/audit.log")
//	db, _ := audit.NewDBLogger(pool)
//	logger := audit.NewAsyncLogger(audit.NewMultiLogger(file, db), 2, 1024, log)
//	defer logger.Close()
//
// Handlers build events from the request:
//
//	event := audit.NewRequestEvent(r, audit.EventTypeAuthLogin, audit.EventStatusSuccess, false)
//	event.TargetID = user.ID
//	_ = logger.Log(r.Context(), event)
package audit
