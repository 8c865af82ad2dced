package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/agriconnect/internal/mercadopago"
	"github.com/Skotchmaster/agriconnect/internal/metrics"
	"github.com/Skotchmaster/agriconnect/internal/mykafka"
	"github.com/Skotchmaster/agriconnect/internal/transport"
	"github.com/Skotchmaster/agriconnect/pkg/logging"
)

const (
	orderRefPrefix = "pedido-"

	// DefaultSignatureTolerance bounds how far a notification ts may be from now.
	DefaultSignatureTolerance = 5 * time.Minute
)

type OrderPayer interface {
	MarkPaid(ctx context.Context, orderID uint, paymentRef string) error
}

// PaymentLookup reads a payment from the provider; satisfied by *mercadopago.Client.
type PaymentLookup interface {
	Payment(ctx context.Context, id string) (*mercadopago.Payment, error)
}

type PaymentService struct {
	Secret    []byte
	Orders    OrderPayer
	Lookup    PaymentLookup
	Events    EventPublisher
	Tolerance time.Duration
	Now       func() time.Time
}

func (s *PaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *PaymentService) tolerance() time.Duration {
	if s.Tolerance > 0 {
		return s.Tolerance
	}
	return DefaultSignatureTolerance
}

// signedAt reads ts as unix seconds, or milliseconds when it is that large.
func signedAt(ts string) (time.Time, error) {
	n, err := strconv.ParseInt(ts, 10, 64)
	if err != nil || n <= 0 {
		return time.Time{}, fmt.Errorf("ts is not a unix timestamp: %q", ts)
	}
	if n > 1e12 {
		return time.UnixMilli(n), nil
	}
	return time.Unix(n, 0), nil
}

// parseSignature splits "ts=<ts>,v1=<hex>".
func parseSignature(header string) (ts string, v1 []byte, err error) {
	var sig string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(k) {
		case "ts":
			ts = strings.TrimSpace(v)
		case "v1":
			sig = strings.TrimSpace(v)
		}
	}
	if ts == "" || sig == "" {
		return "", nil, errors.New("missing ts or v1")
	}
	v1, err = hex.DecodeString(sig)
	if err != nil {
		return "", nil, fmt.Errorf("v1 is not hex: %w", err)
	}
	return ts, v1, nil
}

// Manifest builds the signed string. The id part is present only when the
// notification carried a data.id query parameter.
func Manifest(dataID, requestID, ts string) string {
	var b strings.Builder
	if dataID != "" {
		b.WriteString("id:" + strings.ToLower(dataID) + ";")
	}
	b.WriteString("request-id:" + requestID + ";")
	b.WriteString("ts:" + ts + ";")
	return b.String()
}

func Sign(secret []byte, manifest string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(manifest))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *PaymentService) Verify(signature, requestID, dataID string) error {
	if signature == "" || requestID == "" {
		metrics.WebhookTotal.WithLabelValues("bad_request").Inc()
		return fail(ErrValidation, "Cabeçalhos x-signature e x-request-id são obrigatórios")
	}
	ts, got, err := parseSignature(signature)
	if err != nil {
		metrics.WebhookTotal.WithLabelValues("bad_request").Inc()
		return fail(ErrValidation, "x-signature malformado: %s", err.Error())
	}
	if len(s.Secret) == 0 {
		metrics.WebhookTotal.WithLabelValues("bad_signature").Inc()
		return fail(ErrInvalidSignature, "Assinatura inválida")
	}
	mac := hmac.New(sha256.New, s.Secret)
	mac.Write([]byte(Manifest(dataID, requestID, ts)))
	if !hmac.Equal(got, mac.Sum(nil)) {
		metrics.WebhookTotal.WithLabelValues("bad_signature").Inc()
		return fail(ErrInvalidSignature, "Assinatura inválida")
	}
	at, err := signedAt(ts)
	if err != nil {
		metrics.WebhookTotal.WithLabelValues("bad_request").Inc()
		return fail(ErrValidation, "x-signature malformado: %s", err.Error())
	}
	if skew := s.now().Sub(at); skew > s.tolerance() || skew < -s.tolerance() {
		metrics.WebhookTotal.WithLabelValues("stale").Inc()
		return fail(ErrInvalidSignature, "Assinatura expirada")
	}
	return nil
}

// OrderFromReference extracts the order id from "pedido-<id>".
func OrderFromReference(ref string) (uint, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(ref), orderRefPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Handle processes a notification whose signature covered signedID. The body
// only says which kind of event happened; status and order reference are read
// back from the provider by the signed id.
func (s *PaymentService) Handle(ctx context.Context, signedID string, n transport.WebhookNotification) error {
	l := logging.FromContext(ctx).With("svc", "payment.webhook", "type", n.Type, "action", n.Action)

	if n.Type != "payment" {
		l.Info("notification ignored")
		metrics.WebhookTotal.WithLabelValues("ok").Inc()
		return nil
	}

	signedID = strings.TrimSpace(signedID)
	if signedID == "" {
		metrics.WebhookTotal.WithLabelValues("bad_request").Inc()
		return fail(ErrValidation, "Parâmetro data.id é obrigatório")
	}
	if body := strings.TrimSpace(string(n.Data.ID)); body != "" && !strings.EqualFold(body, signedID) {
		l.Warn("body id differs from signed id", "body_id", body, "signed_id", signedID)
		metrics.WebhookTotal.WithLabelValues("bad_signature").Inc()
		return fail(ErrInvalidSignature, "data.id não confere com a assinatura")
	}
	if s.Lookup == nil {
		l.Warn("payment lookup not configured, notification acknowledged without effect", "payment_id", signedID)
		metrics.WebhookTotal.WithLabelValues("ok").Inc()
		return nil
	}

	p, err := s.Lookup.Payment(ctx, signedID)
	if errors.Is(err, mercadopago.ErrInvalidID) {
		metrics.WebhookTotal.WithLabelValues("bad_request").Inc()
		return fail(ErrValidation, "data.id inválido")
	}
	if err != nil {
		l.Error("payment lookup failed", "payment_id", signedID, "error", err)
		metrics.WebhookTotal.WithLabelValues("fail").Inc()
		return err
	}

	publish(ctx, s.Events, mykafka.TopicPaymentEvents, p.ID, "payment_notified", map[string]any{
		"payment_id":         p.ID,
		"action":             n.Action,
		"status":             p.Status,
		"status_detail":      p.StatusDetail,
		"external_reference": p.ExternalReference,
	})

	if !p.Approved() {
		metrics.WebhookTotal.WithLabelValues("ok").Inc()
		return nil
	}
	orderID, ok := OrderFromReference(p.ExternalReference)
	if !ok {
		l.Warn("approved payment without order reference", "payment_id", p.ID, "external_reference", p.ExternalReference)
		metrics.WebhookTotal.WithLabelValues("ok").Inc()
		return nil
	}

	err = s.Orders.MarkPaid(ctx, orderID, p.ID)
	if errors.Is(err, ErrNotFound) {
		l.Warn("payment for unknown order", "pedido_id", orderID, "payment_id", p.ID)
		metrics.WebhookTotal.WithLabelValues("ok").Inc()
		return nil
	}
	if err != nil {
		l.Error("mark paid failed", "pedido_id", orderID, "error", err)
		metrics.WebhookTotal.WithLabelValues("fail").Inc()
		return err
	}
	l.Info("order paid", "pedido_id", orderID, "payment_id", p.ID)
	metrics.WebhookTotal.WithLabelValues("ok").Inc()
	return nil
}
