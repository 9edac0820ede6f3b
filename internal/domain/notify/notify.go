package notify

import (
	"context"
	"fmt"
	"net/url"
)

// Mailer delivers plain-text mail. The SMTP implementation lives in the
// platform layer; a no-op stands in when mail is disabled.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

func PayslipSubject(periodLabel string) string {
	return fmt.Sprintf("Your payslip for %s", periodLabel)
}

func PayslipBody(name, periodLabel, currency string, netPay float64) string {
	return fmt.Sprintf(
		"Dear %s,\n\nYour payslip for %s has been published.\nNet pay: %.2f %s\n\nLog in to the employee portal to view the full breakdown.\n",
		name, periodLabel, netPay, currency)
}

// WhatsAppMessage is the share text offered next to each payslip row.
func WhatsAppMessage(name, periodLabel, currency string, netPay float64) string {
	return fmt.Sprintf("Hello %s, your payslip for %s is ready. Net pay: %.2f %s.",
		name, periodLabel, netPay, currency)
}

// WhatsAppLink builds a click-to-chat URL. The phone number is used as-is
// minus a leading plus sign; an empty number yields a share-only link.
func WhatsAppLink(phone, message string) string {
	if len(phone) > 0 && phone[0] == '+' {
		phone = phone[1:]
	}
	return "https://wa.me/" + phone + "?text=" + url.QueryEscape(message)
}
