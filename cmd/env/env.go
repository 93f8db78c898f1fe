// Package env holds the shared environment variable naming scheme
package env

const (
	// Prefix is the common env variable prefix
	Prefix = "HARVEST"

	// DBURLSuffix is the Postgres connection string suffix
	DBURLSuffix = "_DB_URL"

	// SMTP notification settings
	SMTPHostSuffix     = "_SMTP_HOST"
	SMTPPortSuffix     = "_SMTP_PORT"
	SMTPUsernameSuffix = "_SMTP_USERNAME"
	SMTPPasswordSuffix = "_SMTP_PASSWORD" //nolint:gosec // env var name, not a credential
	MailFromSuffix     = "_MAIL_FROM"
	MailToSuffix       = "_MAIL_TO"
)
