package realtime

import (
	"errors"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	goTokenGate "github.com/MrEthical07/goTokenGate"
)

const identityLocal = "tokengate_identity"

// UpgradeGuard returns a fiber handler that authenticates the WebSocket
// handshake request through the gate. The token is read from the query
// parameter named by the gate's realtime configuration. On failure the
// upgrade is refused with 401 and a JSON body; on success the identity is
// stored in the request locals for the upgraded connection.
func UpgradeGuard(gate *goTokenGate.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if gate == nil {
			return refuse(c, goTokenGate.ErrGateNotReady)
		}

		ctx := goTokenGate.WithClientIP(c.UserContext(), c.IP())
		identity, err := gate.Authenticate(ctx, c.Query(gate.RealtimeTokenParam()))
		if err != nil {
			gate.RecordUpgrade(ctx, "", false)
			return refuse(c, err)
		}

		gate.RecordUpgrade(ctx, identity.UserID, true)
		c.Locals(identityLocal, identity)
		return c.Next()
	}
}

// Handler wraps a connection handler with registry bookkeeping: the
// connection is registered under the authenticated user on entry and
// unregistered on exit. registry may be nil.
func Handler(registry *Registry, inner func(*websocket.Conn, *goTokenGate.Identity)) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		identity, ok := IdentityFromConn(c)
		if !ok {
			_ = c.Close()
			return
		}

		if registry != nil {
			unregister := registry.Register(identity.UserID, c)
			defer unregister()
		}

		inner(c, identity)
	})
}

// IdentityFromConn returns the identity the upgrade guard attached to the
// handshake, or false when the connection did not pass through [UpgradeGuard].
func IdentityFromConn(c *websocket.Conn) (*goTokenGate.Identity, bool) {
	identity, ok := c.Locals(identityLocal).(*goTokenGate.Identity)
	return identity, ok
}

func refuse(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": errorMessage(err),
	})
}

func errorMessage(err error) string {
	for _, sentinel := range []error{
		goTokenGate.ErrMissingCredential,
		goTokenGate.ErrTokenExpired,
		goTokenGate.ErrTokenInvalidated,
		goTokenGate.ErrTokenInvalid,
		goTokenGate.ErrUserLookup,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "unauthorized"
}
