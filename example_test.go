package rcon_test

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"log"

	"github.com/srcds-tools/rcon"
)

func ExamplePacket_WriteTo() {
	var buf bytes.Buffer

	p := rcon.Packet{
		ID:   42,
		Type: rcon.PacketTypeExecCommand,
		Body: []byte("info"),
	}
	n, err := p.WriteTo(&buf)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Wrote %d bytes: %0x\n", n, buf.Bytes())

	// Output:
	// Wrote 18 bytes: 0e0000002a00000002000000696e666f0000
}

func ExamplePacket_ReadFrom() {
	bs, err := hex.DecodeString("0e0000002a00000002000000696e666f0000")
	if err != nil {
		log.Fatal(err)
	}

	var p rcon.Packet
	n, err := p.ReadFrom(bytes.NewReader(bs))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Read %d bytes: id=%d type=%d body=%q\n", n, p.ID, p.Type, p.Body)

	// Output:
	// Read 18 bytes: id=42 type=2 body="info"
}

func ExampleDial() {
	client, err := rcon.Dial(rcon.ClientConfig{
		Host:     "203.0.113.7",
		Port:     27015,
		Password: "super secret password",
	})
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	if err := client.Authenticate(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func ExampleClient_Command() {
	client, err := rcon.Dial(rcon.ClientConfig{
		Host:     "203.0.113.7",
		Port:     27015,
		Password: "super secret password",
	})
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	ctx := context.Background()
	if err := client.Authenticate(ctx); err != nil {
		log.Fatal(err)
	}

	out, err := client.Command(ctx, "status")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out)
}
