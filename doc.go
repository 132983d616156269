// Package pipcore coordinates a picture-in-picture window for a video call.
//
// A PictureInPicture instance bundles four cooperating parts around one
// store:
//
//   - the store (package store) holds the window state and serializes every
//     change to it;
//   - the content provider (package content) follows the current call and
//     decides what the window shows;
//   - the track state adapter (package tracks) keeps only the shown video
//     track enabled while the window is active and restores all tracks
//     afterwards;
//   - the controller connects the store to the platform window host.
//
// Frames of the shown track go through a video.Renderer, which downsamples
// and converts them for display, dropping frames rather than queueing them.
//
// # Getting Started
//
//	options := pipcore.NewOptions()
//	options.Host = myHost
//	options.Sink = func(trackID string, buf *video.PixelBuffer) { display(buf) }
//
//	pip, err := pipcore.New(options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pip.Close()
//
//	pip.SetCall(activeCall)
//	pip.SetSourceView(inlineView)
//
//	// From the platform host:
//	pip.HostDidChangeActive(true)
//
//	// From the media pipeline, for every decoded frame:
//	pip.RenderFrame(trackID, frame)
//
// Closing the instance closes the store, which cascades to every part:
// subscriptions are cancelled, track enablement is restored and the host is
// released.
package pipcore
