package payments

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"time"

	"camping/models"
	"camping/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// receiptPayload returns the signed QR payload: paymentID|classID|timestamp|signature.
func (s *Service) receiptPayload(paymentID, classID string) string {
	data := fmt.Sprintf("%s|%s|%d", paymentID, classID, time.Now().Unix())
	h := hmac.New(sha256.New, s.receiptSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// GET /api/payments/:id/receipt: own payment receipt as a PDF with a signed
// QR code.
func (s *Service) Receipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	id := ps.ByName("id")

	var payment models.Payment
	err := s.store.Payments.FindOne(ctx, bson.M{"_id": id}).Decode(&payment)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "payment not found")
		return
	}
	if err != nil {
		log.Printf("Receipt: lookup %s: %v", id, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}
	if payment.Email != utils.GetEmailFromRequest(r) {
		utils.RespondWithError(w, http.StatusForbidden, "forbidden access")
		return
	}

	qrPNG, err := qrcode.Encode(s.receiptPayload(payment.ID, payment.ClassID), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Enrollment Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Payment ID: %s", payment.ID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Class: %s", payment.ClassName))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Email: %s", payment.Email))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Amount: %.2f %s", payment.Amount, payment.Currency))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Paid at: %s", payment.CreatedAt.Format(time.RFC1123)))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+payment.ID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
