package checkout

import (
	"bytes"
	"net/url"
	"strings"
	"text/template"
	"time"

	"github.com/perfura/storefront/internal/models"
	"github.com/shopspring/decimal"
)

var messageFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return "৳" + d.String() },
	"date":  func(t time.Time) string { return t.Format("Jan 2, 2006, 3:04:05 PM MST") },
}

var (
	emailBodyTmpl  = template.Must(template.New("email").Funcs(messageFuncs).Parse(emailBodyTemplate))
	mailtoBodyTmpl = template.Must(template.New("mailto").Funcs(messageFuncs).Parse(mailtoBodyTemplate))
	receiptTmpl    = template.Must(template.New("receipt").Funcs(messageFuncs).Parse(receiptTemplate))
)

func Subject(order models.OrderData) string {
	return "New Order #" + order.OrderID + " - Perfura"
}

// EmailBody is the plain-text order summary sent through the form API.
func EmailBody(order models.OrderData) (string, error) {
	return render(emailBodyTmpl, order)
}

func MailtoBody(order models.OrderData) (string, error) {
	body, err := render(mailtoBodyTmpl, order)
	return strings.TrimSpace(body), err
}

// MailtoURL builds a mailto link with subject and body percent-encoded the way
// browsers expect (spaces as %20).
func MailtoURL(recipient string, order models.OrderData) (string, error) {
	body, err := MailtoBody(order)
	if err != nil {
		return "", err
	}
	return "mailto:" + recipient +
		"?subject=" + encodeComponent(Subject(order)) +
		"&body=" + encodeComponent(body), nil
}

type receiptData struct {
	models.OrderData
	SupportEmail string
}

// Receipt renders the downloadable confirmation receipt.
func Receipt(order models.OrderData, supportEmail string) (string, error) {
	return render(receiptTmpl, receiptData{OrderData: order, SupportEmail: supportEmail})
}

func ReceiptFilename(order models.OrderData) string {
	return "Perfura_Order_" + order.OrderID + ".txt"
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

const emailBodyTemplate = `New Order Received - Perfura

Order ID: {{.OrderID}}
Order Date: {{date .OrderDate}}

Customer Information:
Name: {{.CustomerInfo.Name}}
Email: {{.CustomerInfo.Email}}
Phone: {{.CustomerInfo.Phone}}
Address: {{.CustomerInfo.Address}}
City: {{.CustomerInfo.City}}
Postal Code: {{.CustomerInfo.PostalCode}}

Order Details:
{{range $i, $item := .Items}}{{if $i}}

{{end}}• {{$item.Product.Name}} ({{$item.Product.Brand}})
    Quantity: {{$item.Quantity}}
    Price: {{money $item.Product.Price}} each
    Subtotal: {{money $item.Subtotal}}{{end}}

Total Amount: {{money .TotalPrice}}

Please process this order at your earliest convenience.

Best regards,
Perfura Website System
`

const mailtoBodyTemplate = `
New Order Received - Perfura

Order ID: {{.OrderID}}
Order Date: {{date .OrderDate}}

Customer Information:
Name: {{.CustomerInfo.Name}}
Email: {{.CustomerInfo.Email}}
Phone: {{.CustomerInfo.Phone}}
Address: {{.CustomerInfo.Address}}, {{.CustomerInfo.City}}, {{.CustomerInfo.PostalCode}}

Order Details:
{{range .Items}}{{.Product.Name}} ({{.Product.Brand}}) - Quantity: {{.Quantity}} - Price: {{money .Product.Price}} each
{{end}}
Total Amount: {{money .TotalPrice}}

Please process this order at your earliest convenience.
`

const receiptTemplate = `PERFURA - PREMIUM FRAGRANCE COLLECTION
=======================================

Order Confirmation Receipt

Order ID: {{.OrderID}}
Order Date: {{date .OrderDate}}

CUSTOMER INFORMATION
--------------------
Name: {{.CustomerInfo.Name}}
Email: {{.CustomerInfo.Email}}
Phone: {{.CustomerInfo.Phone}}
Address: {{.CustomerInfo.Address}}
         {{.CustomerInfo.City}}, {{.CustomerInfo.PostalCode}}

ORDERED ITEMS
-------------
{{range .Items}}{{.Product.Name}}
  Brand: {{.Product.Brand}}
  Volume: {{.Product.Volume}}
  Quantity: {{.Quantity}}
  Unit Price: {{money .Product.Price}}
  Subtotal: {{money .Subtotal}}

{{end}}
TOTAL AMOUNT: {{money .TotalPrice}}

Thank you for shopping with Perfura!
We will contact you within 24 hours to confirm your order.

For any queries, please contact us at {{.SupportEmail}}
`
