package network

import (
	"context"
	"fmt"
	"net"

	"github.com/pion/stun"
	"github.com/sirupsen/logrus"
)

// STUNProber considers the network available when a STUN binding request
// to Server gets an answer carrying a mapped address.
type STUNProber struct {
	// Server is a host:port UDP address, e.g. "stun.l.google.com:19302".
	Server string
}

// NewSTUNProber creates a prober for server.
func NewSTUNProber(server string) *STUNProber {
	return &STUNProber{Server: server}
}

// Probe implements Prober.
func (p *STUNProber) Probe(ctx context.Context) error {
	if p.Server == "" {
		return ErrNoServer
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "udp", p.Server)
	if err != nil {
		return fmt.Errorf("dial stun server %s: %w", p.Server, err)
	}

	client, err := stun.NewClient(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("create stun client: %w", err)
	}
	defer client.Close()

	result := make(chan error, 1)
	go func() {
		result <- p.bind(client)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-result:
		return err
	}
}

func (p *STUNProber) bind(client *stun.Client) error {
	message := stun.MustBuild(stun.TransactionID, stun.BindingRequest)

	var bindErr error
	err := client.Do(message, func(event stun.Event) {
		if event.Error != nil {
			bindErr = event.Error
			return
		}
		var mapped stun.XORMappedAddress
		if err := mapped.GetFrom(event.Message); err != nil {
			bindErr = fmt.Errorf("%w: %v", ErrNoMappedAddress, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"function": "STUNProber.bind",
			"server":   p.Server,
			"mapped":   mapped.String(),
		}).Debug("STUN binding succeeded")
	})
	if err != nil {
		return fmt.Errorf("stun binding request: %w", err)
	}
	return bindErr
}
