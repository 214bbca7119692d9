package email

import (
	"bytes"
	"html/template"
)

const reminderHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <p>Bonjour {{.CustomerName}},</p>
  {{if .Overdue}}
  <p>Votre crédit auprès de <strong>{{.MerchantName}}</strong> est en retard depuis le {{.DueDate}}.</p>
  {{else}}
  <p>Votre crédit auprès de <strong>{{.MerchantName}}</strong> arrive à échéance le {{.DueDate}}.</p>
  {{end}}
  <p>Montant restant dû : <strong>{{.Amount}}</strong></p>
  <p>Merci.</p>
</body>
</html>`

var reminderTmpl = template.Must(template.New("reminder").Parse(reminderHTML))

// ReminderData feeds the payment reminder template.
type ReminderData struct {
	CustomerName string
	MerchantName string
	DueDate      string
	Amount       string
	Overdue      bool
}

// RenderReminder renders the payment reminder email body.
func RenderReminder(data ReminderData) (string, error) {
	var buf bytes.Buffer
	if err := reminderTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
