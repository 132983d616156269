// Package rtc adapts pion/webrtc remote video tracks to call.VideoTrack.
//
// A RemoteVideoTrack keeps reading RTP from the remote side but forwards
// packets to its destination only while enabled, so a disabled track costs
// no decoding downstream. Re-enabling requests a key frame from the sender.
package rtc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/pion/interceptor"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3"
	"github.com/sirupsen/logrus"
)

// ErrNotVideo is returned when a non-video track is wrapped.
var ErrNotVideo = errors.New("remote track is not a video track")

// PacketReader is the read side of a remote track.
type PacketReader interface {
	ReadRTP() (*rtp.Packet, interceptor.Attributes, error)
}

// PacketWriter receives forwarded packets, e.g. a *webrtc.TrackLocalStaticRTP
// feeding a decoder.
type PacketWriter interface {
	WriteRTP(p *rtp.Packet) error
}

// RTCPWriter sends feedback to the sender, e.g. a *webrtc.PeerConnection.
type RTCPWriter interface {
	WriteRTCP(pkts []rtcp.Packet) error
}

// RemoteVideoTrack is a call.VideoTrack backed by a remote RTP stream.
type RemoteVideoTrack struct {
	id       string
	ssrc     uint32
	source   PacketReader
	feedback RTCPWriter

	enabled   atomic.Bool
	forwarded atomic.Uint64
	discarded atomic.Uint64
}

// NewRemoteVideoTrack wraps track. feedback may be nil, in which case no key
// frame is requested on re-enable. The track starts enabled.
func NewRemoteVideoTrack(track *webrtc.TrackRemote, feedback RTCPWriter) (*RemoteVideoTrack, error) {
	if track.Kind() != webrtc.RTPCodecTypeVideo {
		return nil, fmt.Errorf("%w: %s", ErrNotVideo, track.Kind())
	}
	return newRemoteVideoTrack(track.ID(), uint32(track.SSRC()), track, feedback), nil
}

func newRemoteVideoTrack(id string, ssrc uint32, source PacketReader, feedback RTCPWriter) *RemoteVideoTrack {
	t := &RemoteVideoTrack{
		id:       id,
		ssrc:     ssrc,
		source:   source,
		feedback: feedback,
	}
	t.enabled.Store(true)
	return t
}

// HandleTracks calls fn for every remote video track pc receives.
func HandleTracks(pc *webrtc.PeerConnection, fn func(*RemoteVideoTrack)) {
	pc.OnTrack(func(remote *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		track, err := NewRemoteVideoTrack(remote, pc)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "HandleTracks",
				"track_id": remote.ID(),
				"kind":     remote.Kind().String(),
			}).Debug("Ignoring non-video track")
			return
		}
		fn(track)
	})
}

// ID returns the remote track ID.
func (t *RemoteVideoTrack) ID() string {
	return t.id
}

// IsEnabled reports whether packets are forwarded.
func (t *RemoteVideoTrack) IsEnabled() bool {
	return t.enabled.Load()
}

// SetEnabled starts or stops forwarding.
func (t *RemoteVideoTrack) SetEnabled(enabled bool) {
	if t.enabled.Swap(enabled) == enabled || !enabled {
		return
	}
	t.requestKeyFrame()
}

// Stats returns the number of packets forwarded and discarded so far.
func (t *RemoteVideoTrack) Stats() (forwarded, discarded uint64) {
	return t.forwarded.Load(), t.discarded.Load()
}

// Forward copies packets to dst until the remote side ends the stream, dst
// fails or ctx is done. ctx is checked between packets; closing the peer
// connection unblocks a pending read. A clean end of stream returns nil.
func (t *RemoteVideoTrack) Forward(ctx context.Context, dst PacketWriter) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		packet, _, err := t.source.ReadRTP()
		if err != nil {
			if errors.Is(err, io.EOF) {
				logrus.WithFields(logrus.Fields{
					"function": "RemoteVideoTrack.Forward",
					"track_id": t.id,
				}).Debug("Remote track ended")
				return nil
			}
			return fmt.Errorf("read rtp from track %s: %w", t.id, err)
		}

		if !t.enabled.Load() {
			t.discarded.Add(1)
			continue
		}

		if err := dst.WriteRTP(packet); err != nil {
			return fmt.Errorf("forward rtp from track %s: %w", t.id, err)
		}
		t.forwarded.Add(1)
	}
}

func (t *RemoteVideoTrack) requestKeyFrame() {
	if t.feedback == nil {
		return
	}
	err := t.feedback.WriteRTCP([]rtcp.Packet{
		&rtcp.PictureLossIndication{MediaSSRC: t.ssrc},
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "RemoteVideoTrack.requestKeyFrame",
			"track_id": t.id,
			"error":    err.Error(),
		}).Warn("Failed to request key frame")
	}
}
