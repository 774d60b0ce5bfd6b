package llm

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

var ErrInvalidModel = errors.New("model is required")

// Kind классифицирует неудачный вызов.
type Kind string

const (
	KindTimeout           Kind = "timeout"
	KindHTTP              Kind = "http_error"
	KindTransport         Kind = "transport_error"
	KindMalformedResponse Kind = "malformed_response"
)

// Error — результат неудачного вызова. Ни один вид не повторяется автоматически.
type Error struct {
	Kind Kind
	// Status и Body заполнены для KindHTTP. Payload — разобранное тело, если это JSON.
	Status  int
	Body    string
	Payload any
	// Reason — короткая причина для KindTransport: dns, connection refused, tls и т.п.
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("%s: status %d: %s", e.Kind, e.Status, e.Detail())
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail возвращает человекочитаемую причину: error.message из JSON-ответа
// провайдера, иначе сырое тело, иначе текст статуса.
func (e *Error) Detail() string {
	if e.Kind != KindHTTP {
		return e.Message
	}
	if msg := payloadMessage(e.Payload); msg != "" {
		return msg
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		return body
	}
	return http.StatusText(e.Status)
}

// AsError достает *Error из цепочки.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func newHTTPError(status int, body []byte) *Error {
	e := &Error{
		Kind:   KindHTTP,
		Status: status,
		Body:   string(body),
	}
	if json.Valid(body) {
		var payload any
		if err := json.Unmarshal(body, &payload); err == nil {
			e.Payload = payload
		}
	}
	e.Message = e.Detail()
	return e
}

func newMalformedError(message string, err error) *Error {
	return &Error{Kind: KindMalformedResponse, Message: message, Err: err}
}

// classifyTransport разделяет таймауты и прочие сетевые сбои.
func classifyTransport(err error, timeout time.Duration) *Error {
	if isTimeout(err) {
		return &Error{
			Kind:    KindTimeout,
			Reason:  "timeout",
			Message: fmt.Sprintf("request timed out after %s", timeout),
			Err:     err,
		}
	}
	return &Error{
		Kind:    KindTransport,
		Reason:  reasonForNetErr(err),
		Message: transportMessage(err),
		Err:     err,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func reasonForNetErr(err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns"
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "connection refused"
	}
	if errors.Is(err, syscall.ECONNRESET) || strings.Contains(strings.ToLower(err.Error()), "connection reset") {
		return "connection reset"
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "eof"
	}
	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var recordErr tls.RecordHeaderError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) || errors.As(err, &hostnameErr) || errors.As(err, &recordErr) {
		return "tls"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "network error"
}

// transportMessage снимает обертку *url.Error, чтобы не дублировать URL в сообщении.
func transportMessage(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}

func payloadMessage(payload any) string {
	obj, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	if nested, ok := obj["error"].(map[string]any); ok {
		if msg, ok := nested["message"].(string); ok {
			return msg
		}
	}
	if msg, ok := obj["error"].(string); ok {
		return msg
	}
	if msg, ok := obj["message"].(string); ok {
		return msg
	}
	return ""
}
