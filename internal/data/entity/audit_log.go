package entity

type AuditAction string

const (
	AuditRegister       AuditAction = "register"
	AuditVerifyEmail    AuditAction = "verify_email"
	AuditLogin          AuditAction = "login"
	AuditForgotPassword AuditAction = "forgot_password"
	AuditResetPassword  AuditAction = "reset_password"
)

type AuditLog struct {
	BaseSimple
	AccountID string         `db:"account_id"`
	Role      AccountRole    `db:"role"`
	Action    AuditAction    `db:"action"`
	Resource  string         `db:"resource"`
	Meta      map[string]any `db:"meta"`
}
