package order

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	invoiceSubject    = "Your Kimhut Café Invoice"
	contactAckSubject = "We received your message — Kimhut Café"
	signature         = "— Kimhut Café"
)

// money renders a quantized amount for display, e.g. "$9.00".
func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// orderPushText builds the operator-facing order summary. The push channel
// renders HTML, so customer-supplied fields are escaped.
func orderPushText(o *Order) string {
	var b strings.Builder
	b.WriteString("<b>New Order</b>\n")
	fmt.Fprintf(&b, "Name: %s\n", html.EscapeString(o.Customer.Name))
	fmt.Fprintf(&b, "Email: %s\n", html.EscapeString(o.Customer.Email))
	fmt.Fprintf(&b, "Phone: %s\n", html.EscapeString(o.Customer.Phone))
	fmt.Fprintf(&b, "Address: %s\n", html.EscapeString(o.Customer.Address))
	b.WriteString("\nItems:\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %d x %s (%s)\n", it.Quantity, html.EscapeString(it.Name), money(it.LineTotal))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s", money(o.Subtotal))
	return b.String()
}

// invoiceBody builds the plain-text invoice email sent to the customer.
func invoiceBody(o *Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nThanks for your order!\n\n", o.Customer.Name)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "%d x %s @ %s = %s\n", it.Quantity, it.Name, money(it.UnitPrice), money(it.LineTotal))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", money(o.Subtotal))
	fmt.Fprintf(&b, "Time: %s\n\n", o.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Delivery to:\n%s\n", o.Customer.Address)
	fmt.Fprintf(&b, "Phone: %s\n\n", o.Customer.Phone)
	b.WriteString(signature)
	return b.String()
}

// contactPushText builds the operator-facing contact notification.
func contactPushText(name, email, message string) string {
	return fmt.Sprintf("<b>Contact</b>\nFrom: %s &lt;%s&gt;\n\n%s",
		html.EscapeString(name),
		html.EscapeString(email),
		html.EscapeString(message),
	)
}

// contactAckBody builds the acknowledgment email quoting the original
// message back to the customer.
func contactAckBody(name, message string) string {
	return fmt.Sprintf(
		"Hi %s,\n\nThanks for reaching out to Kimhut Café. We’ve received your message:\n\n\"%s\"\n\nWe’ll get back to you as soon as possible.\n\n%s",
		name, message, signature,
	)
}
