// Package main sends one echo message to a running server and prints the reply.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/louisbranch/echowire/internal/wire"
)

var (
	addr    = flag.String("addr", "127.0.0.1:7400", "server address")
	timeout = flag.Duration("timeout", 5*time.Second, "dial and read timeout")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: client [-addr host:port] <message>")
	}
	content := flag.Arg(0)

	conn, err := net.DialTimeout("tcp", *addr, *timeout)
	if err != nil {
		log.Fatalf("failed to dial %s: %v", *addr, err)
	}
	defer conn.Close()

	payload := wire.Encode(&wire.EchoMessage{Content: content})
	if _, err := conn.Write(payload); err != nil {
		log.Fatalf("failed to send message: %v", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(*timeout)); err != nil {
		log.Fatalf("failed to set read deadline: %v", err)
	}
	buf := make([]byte, 512)
	n, err := conn.Read(buf)
	if err != nil {
		log.Fatalf("failed to read echo: %v", err)
	}

	msg, err := wire.Decode(buf[:n])
	if err != nil {
		log.Fatalf("failed to decode echo: %v", err)
	}
	fmt.Println(msg.Content)
}
