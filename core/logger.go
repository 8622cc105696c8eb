package core

// Logger is any structured logger the app reports through.
// Args may hold an error, a map[string]interface{} of extra fields and the acting user.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
