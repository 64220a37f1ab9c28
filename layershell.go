// Package layershell builds desktop-shell components on Wayland compositors
// implementing the zwlr_layer_shell_v1 protocol: bars, docks, launchers,
// notification layers and wallpapers.
//
// The package wraps the configure/ack handshake, output tracking, seat input
// routing and shared-memory presentation behind a small surface API:
//
//	client, err := layershell.Connect()
//	if err != nil { ... }
//	defer client.Close()
//
//	bar, err := client.CreateLayerSurface(layershell.DefaultConfig())
//	if err != nil { ... }
//	bar.SetRenderer(layershell.RendererFunc(draw))
//	if err := bar.WaitForConfigure(); err != nil { ... }
//	err = client.Run()
//
// Everything is single-threaded: callbacks fire on the goroutine running
// Run (or Dispatch), and all surface methods must be called from it.
package layershell

// Version is the library version.
const Version = "0.3.1"
