package types

// AuditEventName identifies a lifecycle event on the audit stream
type AuditEventName string

const (
	AuditInvoiceSent            AuditEventName = "invoice.sent"
	AuditInvoicePaid            AuditEventName = "invoice.paid"
	AuditInvoicePaymentReverted AuditEventName = "invoice.payment_reverted"
	AuditInvoiceCancelled       AuditEventName = "invoice.cancelled"
	AuditPaymentRecorded        AuditEventName = "payment.recorded"
	AuditPaymentRemoved         AuditEventName = "payment.removed"
	AuditReminderSent           AuditEventName = "reminder.sent"
	AuditReminderFailed         AuditEventName = "reminder.failed"
	AuditReminderCancelled      AuditEventName = "reminder.cancelled"
)

func (n AuditEventName) String() string {
	return string(n)
}
