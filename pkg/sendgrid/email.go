package sendgrid

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Message struct {
	To          string
	ToName      string
	Subject     string
	Content     string
	HTMLContent string
}

type EmailService interface {
	Send(ctx context.Context, msg *Message) error
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
	GetSendGridClient() *sendgrid.Client
}

type emailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey string, fromEmail string, fromName string) EmailService {
	return &emailService{client: sendgrid.NewSendClient(apiKey), fromEmail: fromEmail, fromName: fromName}
}

// Send implements EmailService.
func (e *emailService) Send(ctx context.Context, msg *Message) error {

	from := mail.NewEmail(e.fromName, e.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)

	message := mail.NewV3Mail()
	message.SetFrom(from)

	personalization := mail.NewPersonalization()
	personalization.AddTos(to)
	personalization.Subject = msg.Subject
	message.AddPersonalizations(personalization)

	message.AddContent(mail.NewContent("text/plain", msg.Content))
	if msg.HTMLContent != "" {
		message.AddContent(mail.NewContent("text/html", msg.HTMLContent))
	}

	// send the email
	response, err := e.client.SendWithContext(ctx, message)

	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	return nil
}

// SendOrderConfirmation mails the customer a summary of the placed order.
func (e *emailService) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	text, htmlBody := renderOrderConfirmation(order)

	return e.Send(ctx, &Message{
		To:          order.Customer.Email,
		ToName:      strings.TrimSpace(order.Customer.FirstName + " " + order.Customer.LastName),
		Subject:     "Your order " + order.OrderNumber + " is confirmed",
		Content:     text,
		HTMLContent: htmlBody,
	})
}

// GetSendGridClient provides access to the internal sendgrid.Client.
func (e *emailService) GetSendGridClient() *sendgrid.Client {
	return e.client
}

type summaryRow struct {
	label string
	value string
}

func renderOrderConfirmation(order *models.Order) (string, string) {
	currency := strings.ToUpper(order.Payment.Currency)

	var text, body strings.Builder

	fmt.Fprintf(&text, "Thank you for your order, %s!\n\nOrder number: %s\n\n", order.Customer.FirstName, order.OrderNumber)
	fmt.Fprintf(&body, "<p>Thank you for your order, %s!</p><p>Order number: <strong>%s</strong></p><table>",
		html.EscapeString(order.Customer.FirstName), html.EscapeString(order.OrderNumber))

	for _, line := range order.Lines {
		fmt.Fprintf(&text, "%d x %s  %s %s\n", line.Quantity, line.Name, line.LineTotal.StringFixed(2), currency)
		fmt.Fprintf(&body, "<tr><td>%d</td><td>%s</td><td>%s %s</td></tr>",
			line.Quantity, html.EscapeString(line.Name), line.LineTotal.StringFixed(2), currency)
	}
	body.WriteString("</table>")

	rows := []summaryRow{
		{"Subtotal", order.Payment.Subtotal.StringFixed(2)},
		{"Shipping", order.Payment.Shipping.StringFixed(2)},
		{"Tax", order.Payment.Tax.StringFixed(2)},
	}
	if order.Payment.Discount.IsPositive() {
		rows = append(rows, summaryRow{"Discount", "-" + order.Payment.Discount.StringFixed(2)})
	}
	rows = append(rows, summaryRow{"Total", order.Payment.Total.StringFixed(2)})

	text.WriteString("\n")
	body.WriteString("<p>")
	for _, row := range rows {
		fmt.Fprintf(&text, "%s: %s %s\n", row.label, row.value, currency)
		fmt.Fprintf(&body, "%s: %s %s<br>", row.label, row.value, currency)
	}
	body.WriteString("</p>")

	return text.String(), body.String()
}
