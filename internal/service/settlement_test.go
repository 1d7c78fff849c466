package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/gateway"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/model"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/repository"
)

const testSecret = "test_secret"

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func pendingBooking(amount float64) *model.Booking {
	return &model.Booking{
		ID:            "bk-1",
		RequesterID:   testRequester.ID,
		Amount:        amount,
		PaidAmount:    0,
		PaymentStatus: model.PaymentPending,
		OrderType:     model.OrderRent,
	}
}

func confirmReq(orderID, paymentID string) model.ConfirmPaymentRequest {
	return model.ConfirmPaymentRequest{
		GatewayOrderID:   orderID,
		GatewayPaymentID: paymentID,
		Signature:        sign(orderID, paymentID),
	}
}

func newSettlement(bookings BookingStore, gw PaymentGateway, pub EventPublisher) *SettlementService {
	return NewSettlementService(bookings, gw, pub, "rzp_test_key", testSecret)
}

func TestConfirmPaymentInvalidSignature(t *testing.T) {
	bookings := newFakeBookingStore(pendingBooking(3000))
	gw := newFakeGateway()
	gw.addOrder("order_1", 60000)
	svc := newSettlement(bookings, gw, &fakePublisher{})

	req := confirmReq("order_1", "pay_1")
	req.Signature = "deadbeef"

	_, err := svc.ConfirmPayment(context.Background(), "bk-1", req)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("got %v, want ErrInvalidSignature", err)
	}
	if b, _ := bookings.GetByID(context.Background(), "bk-1"); b.PaidAmount != 0 {
		t.Errorf("paid amount changed on invalid signature: %v", b.PaidAmount)
	}
}

func TestConfirmPaymentOrderNotFound(t *testing.T) {
	bookings := newFakeBookingStore(pendingBooking(3000))
	svc := newSettlement(bookings, newFakeGateway(), &fakePublisher{})

	_, err := svc.ConfirmPayment(context.Background(), "bk-1", confirmReq("order_missing", "pay_1"))
	if !errors.Is(err, gateway.ErrOrderNotFound) {
		t.Fatalf("got %v, want ErrOrderNotFound", err)
	}
	if b, _ := bookings.GetByID(context.Background(), "bk-1"); b.PaidAmount != 0 {
		t.Errorf("paid amount changed on missing order: %v", b.PaidAmount)
	}
}

func TestConfirmPaymentBookingNotFound(t *testing.T) {
	gw := newFakeGateway()
	gw.addOrder("order_1", 60000)
	svc := newSettlement(newFakeBookingStore(), gw, &fakePublisher{})

	_, err := svc.ConfirmPayment(context.Background(), "bk-missing", confirmReq("order_1", "pay_1"))
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestConfirmPaymentPartialThenPaid(t *testing.T) {
	bookings := newFakeBookingStore(pendingBooking(3000))
	gw := newFakeGateway()
	gw.addOrder("order_1", 60000)  // 600.00 expressed in minor units
	gw.addOrder("order_2", 240000) // 2400.00
	pub := &fakePublisher{}
	svc := newSettlement(bookings, gw, pub)
	ctx := context.Background()

	resp, err := svc.ConfirmPayment(ctx, "bk-1", confirmReq("order_1", "pay_1"))
	if err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if resp.PaymentStatus != model.PaymentPartial {
		t.Errorf("status after 600 = %s, want partial", resp.PaymentStatus)
	}
	if b, _ := bookings.GetByID(ctx, "bk-1"); b.PaidAmount != 600 {
		t.Errorf("paid amount = %v, want 600 (gateway amount, minor units converted)", b.PaidAmount)
	}

	resp, err = svc.ConfirmPayment(ctx, "bk-1", confirmReq("order_2", "pay_2"))
	if err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	if resp.PaymentStatus != model.PaymentPaid {
		t.Errorf("status after 3000 = %s, want paid", resp.PaymentStatus)
	}
	if len(pub.keys) != 2 {
		t.Errorf("published events = %v, want two payment.settled", pub.keys)
	}
}

func TestConfirmPaymentIdempotentReplay(t *testing.T) {
	bookings := newFakeBookingStore(pendingBooking(3000))
	gw := newFakeGateway()
	gw.addOrder("order_1", 60000)
	pub := &fakePublisher{}
	svc := newSettlement(bookings, gw, pub)
	ctx := context.Background()

	if _, err := svc.ConfirmPayment(ctx, "bk-1", confirmReq("order_1", "pay_1")); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	// Webhook retry / double-click: same gateway payment id again.
	resp, err := svc.ConfirmPayment(ctx, "bk-1", confirmReq("order_1", "pay_1"))
	if err != nil {
		t.Fatalf("replayed confirm: %v", err)
	}
	if resp.PaymentStatus != model.PaymentPartial {
		t.Errorf("status after replay = %s, want partial", resp.PaymentStatus)
	}
	if b, _ := bookings.GetByID(ctx, "bk-1"); b.PaidAmount != 600 {
		t.Errorf("paid amount after replay = %v, want 600 (credited once)", b.PaidAmount)
	}
	if len(pub.keys) != 1 {
		t.Errorf("published events = %v, want one payment.settled (no event on replay)", pub.keys)
	}
}

func TestCreateOrderFull(t *testing.T) {
	bookings := newFakeBookingStore(pendingBooking(3000))
	gw := newFakeGateway()
	svc := newSettlement(bookings, gw, &fakePublisher{})

	resp, err := svc.CreateOrder(context.Background(), testRequester, "bk-1", model.CreateOrderRequest{Payment: model.PayFull})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if resp.Amount != 300000 {
		t.Errorf("order amount = %d minor units, want 300000", resp.Amount)
	}
	if resp.Currency != Currency {
		t.Errorf("currency = %s, want %s", resp.Currency, Currency)
	}
	if resp.KeyID != "rzp_test_key" {
		t.Errorf("key id = %s, want rzp_test_key", resp.KeyID)
	}
}

func TestCreateOrderPartialAndRemainder(t *testing.T) {
	booking := pendingBooking(3000)
	bookings := newFakeBookingStore(booking)
	gw := newFakeGateway()
	svc := newSettlement(bookings, gw, &fakePublisher{})
	ctx := context.Background()

	// 20% of 3000 = 600.00 = 60000 minor units.
	resp, err := svc.CreateOrder(ctx, testRequester, "bk-1", model.CreateOrderRequest{Payment: model.PayPartial})
	if err != nil {
		t.Fatalf("partial order: %v", err)
	}
	if resp.Amount != 60000 {
		t.Errorf("partial order amount = %d, want 60000", resp.Amount)
	}

	// After the deposit settles, a full order collects the remainder only.
	booking.PaidAmount, booking.PaymentStatus = booking.ApplyPayment(600)
	resp, err = svc.CreateOrder(ctx, testRequester, "bk-1", model.CreateOrderRequest{Payment: model.PayFull})
	if err != nil {
		t.Fatalf("remainder order: %v", err)
	}
	if resp.Amount != 240000 {
		t.Errorf("remainder order amount = %d, want 240000", resp.Amount)
	}
}

func TestCreateOrderRejectsForeignAndSettled(t *testing.T) {
	booking := pendingBooking(3000)
	booking.PaidAmount = 3000
	booking.PaymentStatus = model.PaymentPaid
	svc := newSettlement(newFakeBookingStore(booking), newFakeGateway(), &fakePublisher{})
	ctx := context.Background()

	if _, err := svc.CreateOrder(ctx, testRequester, "bk-1", model.CreateOrderRequest{Payment: model.PayFull}); !errors.Is(err, ErrValidation) {
		t.Errorf("fully paid booking: got %v, want ErrValidation", err)
	}

	other := model.Requester{ID: "intruder"}
	if _, err := svc.CreateOrder(ctx, other, "bk-1", model.CreateOrderRequest{Payment: model.PayFull}); !errors.Is(err, ErrValidation) {
		t.Errorf("foreign booking: got %v, want ErrValidation", err)
	}
}

func TestPayableNowRounding(t *testing.T) {
	// 20% of 1333 is 266.6: rounds to 267, and the epsilon in the status
	// machine absorbs the residue at the end of the schedule.
	if got := PayableNow(1333, model.PayPartial); got != 267 {
		t.Errorf("PayableNow(1333, partial) = %v, want 267", got)
	}
	if got := PayableNow(1333, model.PayFull); got != 1333 {
		t.Errorf("PayableNow(1333, full) = %v, want 1333", got)
	}
	if got := PayableNow(1333, model.PayDeferred); got != 0 {
		t.Errorf("PayableNow(1333, deferred) = %v, want 0", got)
	}
}
