package api

import (
	"context"
	"net"

	"github.com/rs/zerolog/log"
	"github.com/saeidalz13/battleship-engine/db/sqlc"
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
	"github.com/sqlc-dev/pqtype"
)

// Analytics counts games per server. Failures are logged and never stop
// a game.
type Analytics interface {
	IncrementGamesCreatedCount(ctx context.Context, serverIpNet pqtype.Inet) error
	RecordGameFinished(ctx context.Context, serverIpNet pqtype.Inet, aiWon bool) error
}

var _ Analytics = (*sqlc.AnalyticsManager)(nil)

// gameRecorder binds the analytics to the address of this server. A nil
// analytics records nothing.
type gameRecorder struct {
	analytics Analytics
	serverIp  pqtype.Inet
}

func newGameRecorder(analytics Analytics) gameRecorder {
	return gameRecorder{
		analytics: analytics,
		serverIp:  pqtype.Inet{IPNet: getServerIpNet(), Valid: true},
	}
}

func (g gameRecorder) gameCreated(ctx context.Context) {
	if g.analytics == nil {
		return
	}
	if err := g.analytics.IncrementGamesCreatedCount(ctx, g.serverIp); err != nil {
		log.Warn().Err(err).Msg("failed to count created game")
	}
}

func (g gameRecorder) gameFinished(ctx context.Context, winner string) {
	if g.analytics == nil {
		return
	}
	if err := g.analytics.RecordGameFinished(ctx, g.serverIp, winner == mb.SideAI); err != nil {
		log.Warn().Err(err).Msg("failed to count finished game")
	}
}

// getServerIpNet picks the first IPv4 address of an interface that is up
// and not a loopback. Without one the loopback address is used.
func getServerIpNet() net.IPNet {
	loopback := net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(32, 32)}

	ifaces, err := net.Interfaces()
	if err != nil {
		log.Warn().Err(err).Msg("failed to list network interfaces")
		return loopback
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip := ipnet.IP.To4(); ip != nil && !ip.IsLoopback() {
				return net.IPNet{IP: ip, Mask: net.CIDRMask(32, 32)}
			}
		}
	}

	log.Warn().Msg("no external IPv4 address found; using loopback")
	return loopback
}
