package utils

import (
	"fmt"

	"go-storefront/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService handles sending emails using SendGrid
type EmailService struct {
	client *sendgrid.Client
	sender string
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService(apiKey, sender string) *EmailService {
	return &EmailService{
		client: sendgrid.NewSendClient(apiKey),
		sender: sender,
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	from := mail.NewEmail("Storefront", es.sender)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, htmlContent, htmlContent)

	resp, err := es.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to send email: status %d", resp.StatusCode)
	}
	return nil
}

// SendOrderConfirmationEmail sends an order confirmation email to the user
func (es *EmailService) SendOrderConfirmationEmail(toEmail string, order models.Order) error {
	subject := "Order Confirmation"
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed successfully.<br><br>Total Amount: <strong>$%.2f</strong><br>Payment Method: <strong>%s</strong><br><br>Thank you for shopping with us!",
		order.ID.Hex(),
		order.TotalAmount,
		order.PaymentMethod,
	)

	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendOrderStatusEmail notifies the user that the order status changed
func (es *EmailService) SendOrderStatusEmail(toEmail string, order models.Order) error {
	subject := "Order Status Update"
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Your order (ID: %s) is now <strong>%s</strong>.<br><br>Thank you for shopping with us!",
		order.ID.Hex(),
		order.Status,
	)

	return es.SendEmail(toEmail, subject, htmlContent)
}
