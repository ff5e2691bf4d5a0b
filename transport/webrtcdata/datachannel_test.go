package webrtcdata

import (
	"context"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"
)

// loopbackAnswerer completes an SDP exchange entirely in-process: it
// builds a second PeerConnection that answers whatever offer it is
// given, and echoes back any data channel message it receives.
func loopbackAnswerer(t *testing.T) Exchange {
	t.Helper()
	return func(ctx context.Context, offerSDP string) (string, error) {
		answerPC, err := webrtc.NewPeerConnection(webrtc.Configuration{})
		require.NoError(t, err)
		t.Cleanup(func() { _ = answerPC.Close() })

		answerPC.OnDataChannel(func(dc *webrtc.DataChannel) {
			dc.OnMessage(func(msg webrtc.DataChannelMessage) {
				_ = dc.Send(msg.Data)
			})
		})

		gatherComplete := webrtc.GatheringCompletePromise(answerPC)
		require.NoError(t, answerPC.SetRemoteDescription(webrtc.SessionDescription{
			Type: webrtc.SDPTypeOffer,
			SDP:  offerSDP,
		}))

		answer, err := answerPC.CreateAnswer(nil)
		require.NoError(t, err)
		require.NoError(t, answerPC.SetLocalDescription(answer))

		select {
		case <-gatherComplete:
		case <-ctx.Done():
			return "", ctx.Err()
		}

		return answerPC.LocalDescription().SDP, nil
	}
}

func TestDialEstablishesDataChannel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	src, err := Dial(ctx, Options{}, loopbackAnswerer(t))
	require.NoError(t, err)
	defer src.Close()

	require.NoError(t, src.Send([]byte("hello")))

	recvCtx, recvCancel := context.WithTimeout(ctx, 5*time.Second)
	defer recvCancel()
	got, err := src.Recv(recvCtx)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)
}

func TestDialContextCancelDuringGatherReturnsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Dial(ctx, Options{}, loopbackAnswerer(t))
	require.Error(t, err)
}
