package fee

import (
	"bytes"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/divan/num2words"
	"github.com/skip2/go-qrcode"

	"github.com/anwesha-dev/campusflow-ai/core"
)

const (
	receiptTemplate = "payment_receipt"
	qrSize          = 256
)

// ReceiptView is a transaction as shown in the receipt preview.
type ReceiptView struct {
	Transaction
	AmountDisplay string `json:"amount_display"`
	AmountInWords string `json:"amount_in_words"`
}

func NewReceiptView(txn Transaction) ReceiptView {
	return ReceiptView{
		Transaction:   txn,
		AmountDisplay: "₹" + FormatAmount(txn.Amount),
		AmountInWords: AmountInWords(txn.Amount),
	}
}

// FormatAmount groups digits by thousands: 127000 -> "127,000".
func FormatAmount(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}

// AmountInWords spells out a rupee amount, e.g. "twelve thousand rupees only".
func AmountInWords(amount int64) string {
	return num2words.Convert(int(amount)) + " rupees only"
}

// ReceiptQRCode renders a PNG QR code identifying the transaction.
func ReceiptQRCode(txn Transaction) ([]byte, error) {
	content := strings.Join([]string{txn.TransactionID, strconv.FormatInt(txn.Amount, 10), txn.Method, txn.Date.String()}, "|")
	return qrcode.Encode(content, qrcode.Medium, qrSize)
}

type receiptMailData struct {
	PayerName        string
	InstallmentName  string
	TransactionID    string
	Amount           string
	AmountInWords    string
	Method           string
	Date             string
	Status           string
	RemainingBalance string
}

func (c *Controller) sendReceipt(payer Payer, rcpt Receipt) {
	if c.mailer == nil || payer.Email == "" {
		return
	}
	txn := rcpt.Transaction
	msg := core.NewEmailMessage(c.conf, receiptTemplate, receiptMailData{
		PayerName:        payer.Name,
		InstallmentName:  rcpt.Installment.Name,
		TransactionID:    txn.TransactionID,
		Amount:           FormatAmount(txn.Amount),
		AmountInWords:    AmountInWords(txn.Amount),
		Method:           txn.Method,
		Date:             txn.Date.String(),
		Status:           string(txn.Status),
		RemainingBalance: FormatAmount(rcpt.Summary.DisplayBalance),
	})
	msg.To = []mail.Address{{Name: payer.Name, Address: payer.Email}}
	msg.Subject = fmt.Sprintf("Payment receipt %s", txn.TransactionID)

	if png, err := ReceiptQRCode(txn); err != nil {
		c.logger.Warn(fmt.Sprintf("rendering receipt QR code: %v", err), err)
	} else if err = msg.Attach(bytes.NewReader(png), txn.TransactionID+".png", "image/png"); err != nil {
		c.logger.Warn(fmt.Sprintf("attaching receipt QR code: %v", err), err)
	}

	c.mailer.SendMessages(msg)
}
