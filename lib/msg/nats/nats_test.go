package nats

import (
	"bufio"
	"encoding/json"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/tarancss/dwallet/lib/msg"
)

type pub struct {
	subject string
	data    []byte
}

// server speaks enough of the NATS protocol for a client to connect, publish and flush.
func server(t *testing.T) (string, <-chan pub) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen err:%v", err)
	}

	t.Cleanup(func() { ln.Close() })

	pubs := make(chan pub, 10)

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}

			go serve(conn, pubs)
		}
	}()

	return "nats://" + ln.Addr().String(), pubs
}

func serve(conn net.Conn, pubs chan<- pub) {
	defer conn.Close()

	info := `INFO {"server_id":"test","version":"2.10.0","proto":1,"max_payload":1048576}` + "\r\n"
	if _, err := io.WriteString(conn, info); err != nil {
		return
	}

	r := bufio.NewReader(conn)

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}

		f := strings.Fields(line)
		if len(f) == 0 {
			continue
		}

		switch strings.ToUpper(f[0]) {
		case "PING":
			if _, err = io.WriteString(conn, "PONG\r\n"); err != nil {
				return
			}
		case "PUB":
			size, err := strconv.Atoi(f[len(f)-1])
			if err != nil {
				return
			}

			data := make([]byte, size+2)
			if _, err = io.ReadFull(r, data); err != nil {
				return
			}

			pubs <- pub{subject: f[1], data: data[:size]}
		}
	}
}

func TestNats(t *testing.T) {
	url, pubs := server(t)

	n, err := New(url)
	if err != nil {
		t.Fatalf("New err:%v", err)
	}

	if err = n.Setup(); err != nil {
		t.Errorf("Setup err:%v", err)
	}

	sent := msg.NewEvent("testnet", msg.SPLIT, "abcd", "GSOURCE")
	sent.Destinations = []string{"G1", "G2"}

	if err = n.SendEvent(sent); err != nil {
		t.Fatalf("SendEvent err:%v", err)
	}

	select {
	case p := <-pubs:
		var got msg.Event
		if err = json.Unmarshal(p.data, &got); err != nil || got.ID != sent.ID || len(got.Destinations) != 2 ||
			p.subject != "wallet.testnet.split" {
			t.Errorf("unexpected publication on %s: %s err:%v", p.subject, p.data, err)
		}
	case <-time.After(5 * time.Second):
		t.Errorf("event not published")
	}

	if err = n.Close(); err != nil {
		t.Errorf("Close err:%v", err)
	}
}

func TestNewUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen err:%v", err)
	}

	addr := ln.Addr().String()
	ln.Close()

	if n, err := New("nats://" + addr); err == nil {
		n.Close()
		t.Errorf("expected an error connecting to a closed port")
	}
}

func TestSubject(t *testing.T) {
	e := msg.NewEvent("pubnet", msg.OFFER, "ff", "GSRC")
	if s := Subject(e); s != "wallet.pubnet.offer" {
		t.Errorf("subject:%s", s)
	}
}
