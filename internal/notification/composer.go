package notification

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"

	"github.com/flexprice/dunning/internal/config"
	"github.com/flexprice/dunning/internal/domain/account"
	"github.com/flexprice/dunning/internal/domain/invoice"
	"github.com/flexprice/dunning/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ReminderContent is everything a reminder message shows. Amounts must be computed
// at send time.
type ReminderContent struct {
	Kind             types.ReminderKind
	Invoice          *invoice.Invoice
	Account          *account.Account
	DaysOverdue      int
	RemainingBalance decimal.Decimal
	LateFee          decimal.Decimal
	TotalPayable     decimal.Decimal
}

var subjects = map[types.ReminderKind]string{
	types.ReminderKindFriendly: "Friendly reminder: invoice {{.Number}} is past due",
	types.ReminderKindPolite:   "Reminder: invoice {{.Number}} is {{.DaysOverdue}} days overdue",
	types.ReminderKindFirm:     "Action required: invoice {{.Number}} is {{.DaysOverdue}} days overdue",
	types.ReminderKindUrgent:   "Final notice: invoice {{.Number}} is {{.DaysOverdue}} days overdue",
}

var openings = map[types.ReminderKind]string{
	types.ReminderKindFriendly: "This is a friendly reminder that the invoice below is now past its due date.",
	types.ReminderKindPolite:   "We have not yet received full payment for the invoice below.",
	types.ReminderKindFirm:     "The invoice below remains unpaid. Please arrange payment as soon as possible.",
	types.ReminderKindUrgent:   "This is a final notice. The invoice below is seriously overdue and requires immediate payment.",
}

const textBody = `Hello {{.CustomerName}},

{{.Opening}}

Invoice: {{.Number}}
Due date: {{.DueDate}}
Days overdue: {{.DaysOverdue}}
Outstanding balance: {{.Remaining}}
{{- if .HasLateFee}}
Late fee: {{.LateFee}}
{{- end}}
Total payable: {{.TotalPayable}}

{{.AccountName}}
`

const htmlBody = `<p>Hello {{.CustomerName}},</p>
<p>{{.Opening}}</p>
<table>
<tr><td>Invoice</td><td>{{.Number}}</td></tr>
<tr><td>Due date</td><td>{{.DueDate}}</td></tr>
<tr><td>Days overdue</td><td>{{.DaysOverdue}}</td></tr>
<tr><td>Outstanding balance</td><td>{{.Remaining}}</td></tr>
{{- if .HasLateFee}}
<tr><td>Late fee</td><td>{{.LateFee}}</td></tr>
{{- end}}
<tr><td><strong>Total payable</strong></td><td><strong>{{.TotalPayable}}</strong></td></tr>
</table>
<p>{{.AccountName}}</p>
`

var (
	subjectTemplates = lo.MapValues(subjects, func(s string, k types.ReminderKind) *template.Template {
		return template.Must(template.New("subject_" + k.String()).Parse(s))
	})
	textTemplate = template.Must(template.New("text").Parse(textBody))
	htmlTemplate = htmltemplate.Must(htmltemplate.New("html").Parse(htmlBody))
)

type view struct {
	CustomerName string
	AccountName  string
	Opening      string
	Number       string
	DueDate      string
	DaysOverdue  int
	Remaining    string
	LateFee      string
	HasLateFee   bool
	TotalPayable string
}

// Composer renders reminder messages
type Composer struct {
	fromAddress string
	replyTo     string
}

func NewComposer(cfg *config.Configuration) *Composer {
	return &Composer{
		fromAddress: cfg.Email.FromAddress,
		replyTo:     cfg.Email.ReplyTo,
	}
}

// Compose renders the message for c. Account sender settings override the defaults.
func (c *Composer) Compose(content ReminderContent) (Message, error) {
	inv := content.Invoice
	v := view{
		CustomerName: lo.CoalesceOrEmpty(inv.CustomerName, "there"),
		Opening:      openings[content.Kind],
		Number:       lo.CoalesceOrEmpty(inv.InvoiceNumber, inv.ID),
		DueDate:      inv.DueDate.Format(types.DateLayout),
		DaysOverdue:  content.DaysOverdue,
		Remaining:    types.FormatAmount(content.RemainingBalance, inv.Currency),
		LateFee:      types.FormatAmount(content.LateFee, inv.Currency),
		HasLateFee:   content.LateFee.IsPositive(),
		TotalPayable: types.FormatAmount(content.TotalPayable, inv.Currency),
	}

	msg := Message{
		To:      inv.CustomerEmail,
		From:    c.fromAddress,
		ReplyTo: c.replyTo,
		Tags: map[string]string{
			"invoice_id": inv.ID,
			"kind":       content.Kind.String(),
		},
	}
	if content.Account != nil {
		v.AccountName = content.Account.Name
		msg.From = lo.CoalesceOrEmpty(lo.FromPtr(content.Account.ReminderFromAddress), msg.From)
		msg.ReplyTo = lo.CoalesceOrEmpty(lo.FromPtr(content.Account.ReminderReplyTo), msg.ReplyTo)
	}

	tmpl, ok := subjectTemplates[content.Kind]
	if !ok {
		return Message{}, content.Kind.Validate()
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return Message{}, err
	}
	msg.Subject = buf.String()

	buf.Reset()
	if err := textTemplate.Execute(&buf, v); err != nil {
		return Message{}, err
	}
	msg.Text = buf.String()

	buf.Reset()
	if err := htmlTemplate.Execute(&buf, v); err != nil {
		return Message{}, err
	}
	msg.HTML = buf.String()

	return msg, nil
}
