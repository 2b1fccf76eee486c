package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/postalcodeworx/backend/internal/domain/enums"
)

// ContactMessage carries everything needed to forward an owner's
// message to the finder of a glove.
type ContactMessage struct {
	ListingID        int64
	FinderEmail      string
	FinderName       string
	RequesterEmail   string
	RequesterName    string
	Message          string
	GloveDescription string
}

// PaymentConfirmation carries the receipt details for an unlocked
// contact.
type PaymentConfirmation struct {
	ListingID      int64
	RequesterEmail string
	Amount         float64
	Currency       enums.FeeCurrency
	PlatformFee    float64
}

type Service struct {
	sender Sender
}

func NewService(sender Sender) *Service {
	return &Service{sender: sender}
}

// SendContactMessage forwards the owner's message and contact details
// to the finder.
func (s *Service) SendContactMessage(ctx context.Context, msg ContactMessage) error {
	subject := fmt.Sprintf("🧤 PostalCodeWorx: Someone is looking for their glove! (Listing #%d)", msg.ListingID)

	finderName := msg.FinderName
	if finderName == "" {
		finderName = "Glove Finder"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", finderName)
	b.WriteString("Great news! Someone believes they found their matching glove on PostalCodeWorx!\n\n")
	fmt.Fprintf(&b, "Glove Details:\n%s\n\n", msg.GloveDescription)
	fmt.Fprintf(&b, "Message from the owner:\n---\n%s\n---\n\n", msg.Message)
	fmt.Fprintf(&b, "Contact them at: %s\n", msg.RequesterEmail)
	if msg.RequesterName != "" {
		fmt.Fprintf(&b, "Name: %s\n", msg.RequesterName)
	}
	b.WriteString("\nThank you for helping reunite gloves with their owners! 🧤\n\n")
	b.WriteString("Best,\nThe PostalCodeWorx Team")

	return s.sender.Send(ctx, msg.FinderEmail, subject, b.String())
}

// SendPaymentConfirmation sends the receipt to the person who paid to
// unlock the contact.
func (s *Service) SendPaymentConfirmation(ctx context.Context, conf PaymentConfirmation) error {
	subject := fmt.Sprintf("🧤 PostalCodeWorx: Payment Confirmation (Listing #%d)", conf.ListingID)

	var totalText, feeText string
	if conf.Currency == enums.FeeCurrencyEUR {
		totalText = fmt.Sprintf("Total paid: €%.2f", conf.Amount)
		feeText = fmt.Sprintf("Platform fee (20%%): €%.2f", conf.PlatformFee)
	} else {
		totalText = fmt.Sprintf("Postaal coins used: %d", int(conf.Amount))
	}

	var b strings.Builder
	b.WriteString("Thank you for using PostalCodeWorx!\n\n")
	b.WriteString("Your payment has been processed and your message has been sent to the finder.\n\n")
	b.WriteString(totalText + "\n")
	if feeText != "" {
		b.WriteString(feeText + "\n")
	}
	fmt.Fprintf(&b, "\nListing ID: #%d\n\n", conf.ListingID)
	b.WriteString("The finder will receive your message and contact details.\n")
	b.WriteString("We hope you get your glove back soon! 🧤\n\n")
	b.WriteString("Best,\nThe PostalCodeWorx Team")

	return s.sender.Send(ctx, conf.RequesterEmail, subject, b.String())
}
