package errcode

// Job notification codes:
// - 0: no error
// - 4xxx: recoverable/warning conditions (the job still completed)
// - 5xxx: system errors (the job failed)
const (
	OK              = 0
	ResourceMissing = 4004
	SystemError     = 5000
)
