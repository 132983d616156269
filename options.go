package pipcore

import (
	"github.com/opd-ai/pipcore/config"
	"github.com/opd-ai/pipcore/metrics"
	"github.com/opd-ai/pipcore/network"
	"github.com/opd-ai/pipcore/video"
)

// Options configures a PictureInPicture instance.
type Options struct {
	// Config holds the tunables; NewOptions fills in config.Default().
	Config config.Config

	// Host is the platform floating-window host. Nil disables the
	// controller; the window is then driven only through HostDidChangeActive.
	Host Host

	// Network reports local network availability. Nil means always
	// available.
	Network network.Observer

	// Sink receives display-ready frames of the shown track.
	Sink video.Sink

	// Metrics is optional instrumentation.
	Metrics *metrics.Metrics
}

// NewOptions returns options with the default configuration.
func NewOptions() *Options {
	return &Options{
		Config: config.Default(),
	}
}
