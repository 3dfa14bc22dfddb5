package notifications_test

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/wneessen/go-mail"

	"skknicheck/internal/notifications"
)

func plainMessage(t *testing.T, from string, to ...string) *mail.Msg {
	t.Helper()
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		t.Fatalf("From: %v", err)
	}
	if err := msg.To(to...); err != nil {
		t.Fatalf("To: %v", err)
	}
	msg.Subject("hi")
	msg.SetBodyString(mail.TypeTextPlain, "body line")
	return msg
}

// fakeSMTP accepts a single plaintext session and records the DATA payload.
func fakeSMTP(t *testing.T) (addr string, result <-chan []string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	out := make(chan []string, 1)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
		r := bufio.NewReader(conn)
		reply := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
		var transcript []string

		reply("220 fake ESMTP")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				out <- transcript
				return
			}
			line = strings.TrimRight(line, "\r\n")
			transcript = append(transcript, line)
			cmd := strings.ToUpper(line)
			switch {
			case strings.HasPrefix(cmd, "EHLO"):
				reply("250-fake")
				reply("250 AUTH PLAIN")
			case strings.HasPrefix(cmd, "AUTH"):
				reply("235 ok")
			case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
				reply("250 ok")
			case cmd == "DATA":
				reply("354 go ahead")
				for {
					dl, err := r.ReadString('\n')
					if err != nil {
						out <- transcript
						return
					}
					if dl == ".\r\n" {
						break
					}
					transcript = append(transcript, strings.TrimRight(dl, "\r\n"))
				}
				reply("250 queued")
			case cmd == "QUIT":
				reply("221 bye")
				out <- transcript
				return
			default:
				reply("250 ok")
			}
		}
	}()
	return ln.Addr().String(), out
}

func TestSMTPTransportPlainSession(t *testing.T) {
	addr, result := fakeSMTP(t)
	host, portStr, _ := net.SplitHostPort(addr)
	port, _ := strconv.Atoi(portStr)

	transport := notifications.NewSMTPTransport(notifications.SMTPConfig{
		Host:     host,
		Port:     port,
		Username: "monitor@example.com",
		Password: "secret",
		Timeout:  5 * time.Second,
	})
	msg := plainMessage(t, "monitor@example.com", "a@example.com", "b@example.com")
	if err := transport.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}

	var transcript []string
	select {
	case transcript = <-result:
	case <-time.After(5 * time.Second):
		t.Fatal("fake server did not finish")
	}
	joined := strings.Join(transcript, "\n")
	for _, want := range []string{
		"AUTH PLAIN",
		"MAIL FROM:<monitor@example.com>",
		"RCPT TO:<a@example.com>",
		"RCPT TO:<b@example.com>",
		"Subject: hi",
		"body line",
		"QUIT",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("transcript missing %q:\n%s", want, joined)
		}
	}
}

func TestSMTPTransportDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()

	transport := notifications.NewSMTPTransport(notifications.SMTPConfig{Host: "127.0.0.1", Port: addr.Port, Timeout: time.Second})
	if err := transport.Send(context.Background(), plainMessage(t, "a@example.com", "b@example.com")); err == nil {
		t.Fatal("expected dial error")
	}
}
