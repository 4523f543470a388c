package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func TestRender_AllTemplatesExecute(t *testing.T) {
	data := map[string]any{
		"Name":    "Taro",
		"Email":   "taro@example.com",
		"Link":    "https://example.com/verify",
		"OrderID": 1,
		"Axis":    "delivery",
		"Status":  "Shipped",
		"Title":   "Sale",
		"Message": "hello",
		"Total":   "25.00",
		"Items":   []map[string]any{{"Name": "P1", "Quantity": 2, "UnitPrice": "10.00"}},
	}
	for name := range templates {
		html, err := Render(name, data)
		require.NoError(t, err, name)
		assert.Contains(t, html, "UpTech", name)
	}
}

func TestRender_EscapesValues(t *testing.T) {
	html, err := Render("contactForm", map[string]any{
		"Name":    "<script>x</script>",
		"Email":   "a@example.com",
		"Message": "hi",
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render("nope", nil)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
	assert.False(t, Has("nope"))
	assert.True(t, Has("newsletter"))
}

func TestSMTPSender_Send(t *testing.T) {
	d := &fakeDialer{}
	s := &SMTPSender{from: "no-reply@example.com", dialer: d}

	err := s.Send(context.Background(), Message{To: "a@example.com", Subject: "Hi", HTML: "<p>x</p>"})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"a@example.com"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"no-reply@example.com"}, d.sent[0].GetHeader("From"))
}

func TestSMTPSender_Send_Errors(t *testing.T) {
	s := &SMTPSender{from: "no-reply@example.com", dialer: &fakeDialer{err: errors.New("conn refused")}}

	err := s.Send(context.Background(), Message{To: "a@example.com", Subject: "Hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conn refused")

	err = s.Send(context.Background(), Message{Subject: "Hi"})
	assert.Error(t, err)
}

func TestLogSender_Send(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(zerolog.New(&buf))

	require.NoError(t, s.Send(context.Background(), Message{To: "a@example.com", Subject: "Hi"}))
	assert.Contains(t, buf.String(), `"to":"a@example.com"`)
}
