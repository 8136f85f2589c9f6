package certificates

import "time"

const (
	DefaultLabel     = "certificado"
	DefaultTTL       = 600 * time.Second
	DefaultListLimit = 100
)

// allowedTypes maps accepted file extensions to the stored content type.
var allowedTypes = map[string]string{
	".pdf": "application/pdf",
}

const (
	uploadResultOK       = "ok"
	uploadResultRejected = "rejected"
	uploadResultConflict = "conflict"
	uploadResultFailed   = "failed"
)
