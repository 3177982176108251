/*
Package rcon implements the client side of the Source RCON protocol as
described by Valve Software at
https://developer.valvesoftware.com/wiki/Source_RCON_Protocol.

A session is established with [Dial], authenticated with
[Client.Authenticate], and then used to run commands with [Client.Command]:

	client, err := rcon.Dial(rcon.ClientConfig{
		Host:     "203.0.113.7",
		Port:     27015,
		Password: "hunter2",
	})
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	if err := client.Authenticate(context.Background()); err != nil {
		log.Fatal(err)
	}
	out, err := client.Command(context.Background(), "status")

Callers who need a transport other than plain TCP (TLS, Unix sockets, test
pipes) can construct a session around any [net.Conn] with [NewClient].
*/
package rcon
