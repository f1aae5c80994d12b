// Package fantasy shows the private league standings of the UEFA fantasy
// and match predictor games.
package fantasy

import (
	"context"

	"butler/internal/cache"
	"butler/internal/chatfmt"
	"butler/internal/plugins"
	"butler/internal/providers/uefa"
	"butler/internal/ranking"
	"butler/internal/transport"
)

const (
	fantasyPrefix   = "[EURO FANTASY] "
	predictorPrefix = "[EURO PREDICTOR] "
)

var (
	fantasyTriggers   = plugins.NewTriggers("fantasy", "ufpl", "uefafantasy", "fantasyuefa", "efpl")
	predictorTriggers = plugins.NewTriggers("predict", "predictor", "uefapredict", "uefapredictor")
)

// Plugin is the fantasy command. Either leaderboard may be nil when it is
// not configured; its commands are then ignored.
type Plugin struct {
	fantasy   *cache.Refresher[[]uefa.FantasyEntry]
	predictor *cache.Refresher[[]uefa.PredictorEntry]
	top       int
}

// New creates the plugin listing the top entries of each leaderboard.
func New(fantasy *cache.Refresher[[]uefa.FantasyEntry], predictor *cache.Refresher[[]uefa.PredictorEntry], top int) *Plugin {
	if top <= 0 {
		top = 15
	}
	return &Plugin{fantasy: fantasy, predictor: predictor, top: top}
}

func (p *Plugin) Name() string { return "fantasy" }

func (p *Plugin) Help() []plugins.HelpEntry {
	var help []plugins.HelpEntry
	if p.fantasy != nil {
		help = append(help, plugins.HelpEntry{Command: "!fantasy", Description: "Return ranking in the EURO fantasy competition"})
	}
	if p.predictor != nil {
		help = append(help, plugins.HelpEntry{Command: "!predict", Description: "Return ranking in the EURO match predictor competition"})
	}
	return help
}

func (p *Plugin) Handle(ctx context.Context, msg transport.Message) (*plugins.Reply, error) {
	if _, _, ok := fantasyTriggers.Match(msg); ok && p.fantasy != nil {
		return leaderboard(ctx, p.fantasy, fantasyPrefix, p.top), nil
	}
	if _, _, ok := predictorTriggers.Match(msg); ok && p.predictor != nil {
		return leaderboard(ctx, p.predictor, predictorPrefix, p.top), nil
	}
	return nil, nil
}

type entry interface {
	ranking.Entry
	String() string
}

func leaderboard[E entry](ctx context.Context, data *cache.Refresher[[]E], prefix string, top int) *plugins.Reply {
	entries, ok := data.Get(ctx)
	if !ok {
		return plugins.Text(prefix + plugins.NoDataMessage)
	}
	return plugins.Text(chatfmt.JoinItems(prefix, plugins.Strings(ranking.Top(entries, top))))
}
